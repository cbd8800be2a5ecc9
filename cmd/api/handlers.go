package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"quickcart/pkg/apperr"
	"quickcart/pkg/cart"
	"quickcart/pkg/catalog"
	"quickcart/pkg/events"
	"quickcart/pkg/idempotency"
	"quickcart/pkg/logger"
	"quickcart/pkg/order"
	"quickcart/pkg/otel"
	"quickcart/pkg/storage"
)

type api struct {
	store  storage.Storage
	log    *logger.Logger
	events events.Publisher
	// idem is nil when no redis is configured.
	idem *idempotency.Store
	// ping is nil for the memory backing.
	ping func(context.Context) error
	now  func() time.Time
}

func (a *api) routes(tracer trace.Tracer) http.Handler {
	r := mux.NewRouter()
	r.Use(traceMiddleware(tracer))
	r.Use(a.logMiddleware)

	r.HandleFunc("/healthz", a.healthHandler).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api").Subrouter()
	v1.HandleFunc("/stores", a.listStoresHandler).Methods(http.MethodGet)
	v1.HandleFunc("/stores/{id}", a.getStoreHandler).Methods(http.MethodGet)
	v1.HandleFunc("/stores/{id}/products", a.storeProductsHandler).Methods(http.MethodGet)
	v1.HandleFunc("/products", a.listProductsHandler).Methods(http.MethodGet)
	v1.HandleFunc("/products/{id}", a.getProductHandler).Methods(http.MethodGet)

	v1.HandleFunc("/orders", a.listOrdersHandler).Methods(http.MethodGet)
	v1.HandleFunc("/orders", a.createOrderHandler).Methods(http.MethodPost)
	v1.HandleFunc("/orders/{id}", a.getOrderHandler).Methods(http.MethodGet)
	v1.HandleFunc("/orders/{id}/status", a.updateOrderStatusHandler).Methods(http.MethodPatch)

	v1.HandleFunc("/cart", a.getCartHandler).Methods(http.MethodGet)
	v1.HandleFunc("/cart", a.addToCartHandler).Methods(http.MethodPost)
	v1.HandleFunc("/cart", a.clearCartHandler).Methods(http.MethodDelete)
	v1.HandleFunc("/cart/{id}", a.updateCartItemHandler).Methods(http.MethodPatch)
	v1.HandleFunc("/cart/{id}", a.removeCartItemHandler).Methods(http.MethodDelete)
	v1.HandleFunc("/checkout", a.checkoutHandler).Methods(http.MethodPost)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
	return r
}

// healthHandler reports whether the storage backing is reachable.
// @Summary Health check
// @Success 200 {object} messageResponse
// @Failure 503 {object} messageResponse
// @Router /healthz [get]
func (a *api) healthHandler(w http.ResponseWriter, r *http.Request) {
	if a.ping != nil {
		if err := a.ping(r.Context()); err != nil {
			a.log.Warn(r.Context(), "health check", "error", err)
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

// listStoresHandler lists stores.
// @Summary List stores
// @Produce json
// @Success 200 {array} catalog.Store
// @Router /api/stores [get]
func (a *api) listStoresHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listStoresHandler")
	defer span.End()

	stores, err := a.store.ListStores(ctx)
	if err != nil {
		a.fail(ctx, w, "list stores", err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

// getStoreHandler retrieves a store by ID.
// @Summary Get store
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {object} catalog.Store
// @Failure 404 {object} messageResponse
// @Router /api/stores/{id} [get]
func (a *api) getStoreHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getStoreHandler")
	defer span.End()

	st, ok, err := a.store.GetStore(ctx, mux.Vars(r)["id"])
	if err != nil {
		a.fail(ctx, w, "get store", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Store not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// storeProductsHandler lists the products of one store.
// @Summary List store products
// @Produce json
// @Param id path string true "Store ID"
// @Success 200 {array} catalog.Product
// @Router /api/stores/{id}/products [get]
func (a *api) storeProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "storeProductsHandler")
	defer span.End()

	products, err := a.store.ProductsByStore(ctx, mux.Vars(r)["id"])
	if err != nil {
		a.fail(ctx, w, "products by store", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// listProductsHandler lists products. search takes precedence over storeId.
// @Summary List products
// @Produce json
// @Param storeId query string false "Only products of this store"
// @Param search query string false "Case-insensitive match on name, description or category"
// @Success 200 {array} catalog.Product
// @Router /api/products [get]
func (a *api) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listProductsHandler")
	defer span.End()

	q := r.URL.Query()
	var (
		products []catalog.Product
		err      error
	)
	switch {
	case q.Get("search") != "":
		span.SetAttributes(attribute.String("search", q.Get("search")))
		products, err = a.store.SearchProducts(ctx, q.Get("search"))
	case q.Get("storeId") != "":
		products, err = a.store.ProductsByStore(ctx, q.Get("storeId"))
	default:
		products, err = a.store.ListProducts(ctx)
	}
	if err != nil {
		a.fail(ctx, w, "list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// getProductHandler retrieves a product by ID.
// @Summary Get product
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} catalog.Product
// @Failure 404 {object} messageResponse
// @Router /api/products/{id} [get]
func (a *api) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getProductHandler")
	defer span.End()

	p, ok, err := a.store.GetProduct(ctx, mux.Vars(r)["id"])
	if err != nil {
		a.fail(ctx, w, "get product", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// listOrdersHandler lists orders, newest first.
// @Summary List orders
// @Produce json
// @Success 200 {array} order.Order
// @Router /api/orders [get]
func (a *api) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()

	orders, err := a.store.ListOrders(ctx)
	if err != nil {
		a.fail(ctx, w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// getOrderHandler retrieves an order by ID.
// @Summary Get order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} order.Order
// @Failure 404 {object} messageResponse
// @Router /api/orders/{id} [get]
func (a *api) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()

	o, ok, err := a.store.GetOrder(ctx, mux.Vars(r)["id"])
	if err != nil {
		a.fail(ctx, w, "get order", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// createOrderHandler creates an order from a caller-built snapshot.
// @Summary Create order
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param order body order.NewOrder true "Order"
// @Success 201 {object} order.Order
// @Failure 400 {object} messageResponse
// @Failure 409 {object} messageResponse
// @Router /api/orders [post]
func (a *api) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createOrderHandler")
	defer span.End()

	var no order.NewOrder
	if err := json.NewDecoder(r.Body).Decode(&no); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order data")
		return
	}
	a.idempotent(ctx, w, r, "orders:"+sessionID(r), func(ctx context.Context) (order.Order, error) {
		return a.store.CreateOrder(ctx, no)
	})
}

// updateOrderStatusHandler overwrites an order's status.
// @Summary Update order status
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param status body statusRequest true "New status"
// @Success 200 {object} order.Order
// @Failure 400 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/orders/{id}/status [patch]
func (a *api) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateOrderStatusHandler")
	defer span.End()

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Status is required")
		return
	}
	id := mux.Vars(r)["id"]
	span.SetAttributes(attribute.String("order.id", id), attribute.String("order.status", string(req.Status)))

	o, ok, err := a.store.UpdateOrderStatus(ctx, id, req.Status)
	if err != nil {
		a.fail(ctx, w, "update order status", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if !req.Status.Known() {
		a.log.Warn(ctx, "unrecognised order status stored", "orderId", id, "status", req.Status)
	}
	a.publish(ctx, events.OrderStatusChanged(o, a.now()))
	writeJSON(w, http.StatusOK, o)
}

// getCartHandler returns the session's cart with product details.
// @Summary Get cart
// @Produce json
// @Param sessionId query string false "Session ID"
// @Success 200 {array} storage.CartEntry
// @Router /api/cart [get]
func (a *api) getCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getCartHandler")
	defer span.End()

	entries, err := a.store.CartView(ctx, sessionID(r))
	if err != nil {
		a.fail(ctx, w, "get cart", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// addToCartHandler adds a product, merging with an existing line.
// @Summary Add to cart
// @Accept json
// @Produce json
// @Param sessionId query string false "Session ID"
// @Param item body addCartRequest true "Product and quantity"
// @Success 201 {object} cart.Item
// @Failure 400 {object} messageResponse
// @Router /api/cart [post]
func (a *api) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addToCartHandler")
	defer span.End()

	var req addCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cart item data")
		return
	}
	it, err := a.store.AddToCart(ctx, req.ProductID, req.Quantity, sessionID(r))
	if err != nil {
		a.fail(ctx, w, "add to cart", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// updateCartItemHandler sets a line's quantity. Zero removes the line.
// @Summary Update cart item
// @Accept json
// @Produce json
// @Param id path string true "Cart item ID"
// @Param quantity body quantityRequest true "New quantity"
// @Success 200 {object} cart.Item
// @Success 204
// @Failure 400 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/cart/{id} [patch]
func (a *api) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateCartItemHandler")
	defer span.End()

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil || *req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "Valid quantity is required")
		return
	}
	it, ok, err := a.store.UpdateCartItemQuantity(ctx, mux.Vars(r)["id"], *req.Quantity)
	if err != nil {
		a.fail(ctx, w, "update cart item", err)
		return
	}
	switch {
	case ok:
		writeJSON(w, http.StatusOK, it)
	case *req.Quantity == 0:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusNotFound, "Cart item not found")
	}
}

// removeCartItemHandler deletes one cart line.
// @Summary Remove cart item
// @Param id path string true "Cart item ID"
// @Success 204
// @Failure 404 {object} messageResponse
// @Router /api/cart/{id} [delete]
func (a *api) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "removeCartItemHandler")
	defer span.End()

	removed, err := a.store.RemoveFromCart(ctx, mux.Vars(r)["id"])
	if err != nil {
		a.fail(ctx, w, "remove cart item", err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Cart item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clearCartHandler empties the session's cart.
// @Summary Clear cart
// @Param sessionId query string false "Session ID"
// @Success 204
// @Router /api/cart [delete]
func (a *api) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "clearCartHandler")
	defer span.End()

	if _, err := a.store.ClearCart(ctx, sessionID(r)); err != nil {
		a.fail(ctx, w, "clear cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkoutHandler turns the session's cart into a pending order.
// @Summary Checkout
// @Accept json
// @Produce json
// @Param sessionId query string false "Session ID"
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param checkout body checkoutRequest true "Delivery address"
// @Success 201 {object} order.Order
// @Failure 400 {object} messageResponse
// @Failure 409 {object} messageResponse
// @Router /api/checkout [post]
func (a *api) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "checkoutHandler")
	defer span.End()

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid checkout data")
		return
	}
	session := sessionID(r)
	a.idempotent(ctx, w, r, "checkout:"+session, func(ctx context.Context) (order.Order, error) {
		o, err := a.store.Checkout(ctx, session, req.DeliveryAddress)
		if err != nil && o.ID != "" {
			// the order stands; only emptying the cart failed
			a.log.Error(ctx, "checkout", "orderId", o.ID, "error", err)
			return o, nil
		}
		return o, err
	})
}

// idempotent runs create once per Idempotency-Key and publishes order.created.
// Without a key or without redis every call creates.
func (a *api) idempotent(ctx context.Context, w http.ResponseWriter, r *http.Request, scope string, create func(context.Context) (order.Order, error)) {
	clientKey := r.Header.Get("Idempotency-Key")
	if clientKey == "" || a.idem == nil {
		o, err := create(ctx)
		if err != nil {
			a.fail(ctx, w, "create order", err)
			return
		}
		a.publish(ctx, events.OrderCreated(o, a.now()))
		writeJSON(w, http.StatusCreated, o)
		return
	}

	key := a.idem.Key(scope, clientKey)
	state, resp, err := a.idem.Reserve(ctx, key)
	if err != nil {
		a.fail(ctx, w, "reserve idempotency key", apperr.Unavailable("idempotency", err))
		return
	}
	switch state {
	case idempotency.InProgress:
		writeError(w, http.StatusConflict, "A request with this Idempotency-Key is in progress")
		return
	case idempotency.Replay:
		w.Header().Set("Idempotent-Replayed", "true")
		writeRaw(w, resp.Status, resp.Body)
		return
	}

	o, err := create(ctx)
	if err != nil {
		if rerr := a.idem.Release(ctx, key); rerr != nil {
			a.log.Warn(ctx, "release idempotency key", "key", key, "error", rerr)
		}
		a.fail(ctx, w, "create order", err)
		return
	}
	a.publish(ctx, events.OrderCreated(o, a.now()))

	body, err := json.Marshal(o)
	if err != nil {
		a.fail(ctx, w, "encode order", err)
		return
	}
	if err := a.idem.Complete(ctx, key, idempotency.Response{Status: http.StatusCreated, Body: body}); err != nil {
		a.log.Warn(ctx, "complete idempotency key", "key", key, "error", err)
	}
	writeRaw(w, http.StatusCreated, body)
}

// publish sends e and logs a failure; events never fail the request.
func (a *api) publish(ctx context.Context, e events.Event) {
	ctx, span := otel.AddSpan(ctx, "publishEvent", attribute.String("event.type", e.Type))
	defer span.End()

	if err := a.events.Publish(ctx, e); err != nil {
		a.log.Error(ctx, "publish event", "type", e.Type, "orderId", e.OrderID, "error", err)
	}
}

// sessionID resolves the caller's cart session: the sessionId query parameter,
// then the X-Session-ID header, then the session_id cookie.
func sessionID(r *http.Request) string {
	if s := r.URL.Query().Get("sessionId"); s != "" {
		return s
	}
	if s := r.Header.Get("X-Session-ID"); s != "" {
		return s
	}
	if c, err := r.Cookie("session_id"); err == nil && c.Value != "" {
		return c.Value
	}
	return cart.DefaultSession
}
