package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"quickcart/pkg/apperr"
	"quickcart/pkg/cart"
	"quickcart/pkg/catalog"
	"quickcart/pkg/events"
	"quickcart/pkg/idempotency"
	"quickcart/pkg/logger"
	"quickcart/pkg/order"
	"quickcart/pkg/storage"
)

type recordedEvents struct {
	mu  sync.Mutex
	all []events.Event
	err error
}

func (r *recordedEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, e)
	return r.err
}

func (r *recordedEvents) Close() error { return nil }

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.all {
		out = append(out, e.Type)
	}
	return out
}

type testServer struct {
	handler http.Handler
	store   storage.Storage
	events  *recordedEvents
	logs    *bytes.Buffer
	redis   *miniredis.Miniredis
}

func newTestServer(t *testing.T, store storage.Storage) *testServer {
	t.Helper()
	if store == nil {
		mem := storage.NewMemory()
		_, err := mem.Seed(context.Background(), storage.DefaultFixture(order.Now()))
		require.NoError(t, err)
		store = mem
	}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var logs bytes.Buffer
	rec := &recordedEvents{}
	a := &api{
		store:  store,
		log:    logger.New(&logs, logger.LevelDebug, "test", nil),
		events: rec,
		idem:   idempotency.NewStore(rdb, time.Hour),
		now:    time.Now,
	}
	return &testServer{
		handler: a.routes(noop.NewTracerProvider().Tracer("test")),
		store:   store,
		events:  rec,
		logs:    &logs,
		redis:   mr,
	}
}

func (s *testServer) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodGet, "/api/stores", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]catalog.Store](t, rr), 2)

	rr = s.do(t, http.MethodGet, "/api/stores/store-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	st := decode[catalog.Store](t, rr)
	assert.Equal(t, "FreshMart Grocery", st.Name)
	assert.Equal(t, "35.00", st.FreeDeliveryMinimum.Decimal.StringFixed(2))

	rr = s.do(t, http.MethodGet, "/api/stores/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Store not found", decode[messageResponse](t, rr).Message)

	rr = s.do(t, http.MethodGet, "/api/stores/store-1/products", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	products := decode[[]catalog.Product](t, rr)
	assert.Len(t, products, 5)
	for _, p := range products {
		assert.Equal(t, "store-1", p.StoreID)
	}

	rr = s.do(t, http.MethodGet, "/api/products?storeId=store-2", nil)
	assert.Len(t, decode[[]catalog.Product](t, rr), 7)

	rr = s.do(t, http.MethodGet, "/api/products?search=COFFEE&storeId=store-1", nil)
	found := decode[[]catalog.Product](t, rr)
	require.Len(t, found, 1, "search wins over storeId")
	assert.Equal(t, "product-11", found[0].ID)

	rr = s.do(t, http.MethodGet, "/api/products", nil)
	assert.Len(t, decode[[]catalog.Product](t, rr), 12)

	rr = s.do(t, http.MethodGet, "/api/products/product-2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "4.49", decode[catalog.Product](t, rr).Price.StringFixed(2))

	rr = s.do(t, http.MethodGet, "/api/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCartRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodPost, "/api/cart?sessionId=s1", addCartRequest{ProductID: "product-1", Quantity: 2})
	require.Equal(t, http.StatusCreated, rr.Code)
	first := decode[cart.Item](t, rr)
	assert.Equal(t, "s1", first.SessionID)

	rr = s.do(t, http.MethodPost, "/api/cart", map[string]any{"productId": "product-1"}, "X-Session-ID", "s1")
	require.Equal(t, http.StatusCreated, rr.Code)
	merged := decode[cart.Item](t, rr)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)

	rr = s.do(t, http.MethodGet, "/api/cart?sessionId=s1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[[]storage.CartEntry](t, rr)
	require.Len(t, view, 1)
	require.NotNil(t, view[0].Product)
	assert.Equal(t, "Organic Bananas", view[0].Product.Name)

	rr = s.do(t, http.MethodPatch, "/api/cart/"+first.ID, map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, decode[cart.Item](t, rr).Quantity)

	rr = s.do(t, http.MethodPatch, "/api/cart/"+first.ID, map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = s.do(t, http.MethodPatch, "/api/cart/"+first.ID, map[string]int{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodDelete, "/api/cart/"+first.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/cart?sessionId=s1", addCartRequest{ProductID: "product-2", Quantity: 1})
	require.Equal(t, http.StatusCreated, rr.Code)
	second := decode[cart.Item](t, rr)
	rr = s.do(t, http.MethodDelete, "/api/cart/"+second.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	for i := 0; i < 2; i++ {
		rr = s.do(t, http.MethodDelete, "/api/cart?sessionId=s1", nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	}
}

func TestCartRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodPost, "/api/cart", addCartRequest{ProductID: "product-1", Quantity: -1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/api/cart", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPatch, "/api/cart/anything", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Valid quantity is required", decode[messageResponse](t, rr).Message)

	rr = s.do(t, http.MethodPatch, "/api/cart/anything", map[string]int{"quantity": -2})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDefaultSession(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodPost, "/api/cart", addCartRequest{ProductID: "product-3"})
	require.Equal(t, http.StatusCreated, rr.Code)
	it := decode[cart.Item](t, rr)
	assert.Equal(t, cart.DefaultSession, it.SessionID)
	assert.Equal(t, 1, it.Quantity)
}

func TestSessionIDPrecedence(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/cart?sessionId=query", nil)
	r.Header.Set("X-Session-ID", "header")
	r.AddCookie(&http.Cookie{Name: "session_id", Value: "cookie"})
	assert.Equal(t, "query", sessionID(r))

	r = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	r.Header.Set("X-Session-ID", "header")
	r.AddCookie(&http.Cookie{Name: "session_id", Value: "cookie"})
	assert.Equal(t, "header", sessionID(r))

	r = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	r.AddCookie(&http.Cookie{Name: "session_id", Value: "cookie"})
	assert.Equal(t, "cookie", sessionID(r))

	r = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	assert.Equal(t, cart.DefaultSession, sessionID(r))
}

func TestOrderRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	orders := decode[[]order.Order](t, rr)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-2", orders[0].ID)

	body := map[string]any{
		"storeId":         "store-1",
		"storeName":       "FreshMart Grocery",
		"items":           []map[string]any{{"productId": "product-1", "name": "Organic Bananas", "quantity": 1, "price": "2.99"}},
		"total":           "6.98",
		"deliveryAddress": "123 Main St",
	}
	rr = s.do(t, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[order.Order](t, rr)
	assert.Equal(t, order.StatusPending, created.Status)
	assert.Equal(t, "6.98", created.Total.StringFixed(2))

	rr = s.do(t, http.MethodGet, "/api/orders/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, http.MethodPatch, "/api/orders/"+created.ID+"/status", statusRequest{Status: order.StatusDelivered})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, order.StatusDelivered, decode[order.Order](t, rr).Status)

	rr = s.do(t, http.MethodPatch, "/api/orders/"+created.ID+"/status", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Status is required", decode[messageResponse](t, rr).Message)

	rr = s.do(t, http.MethodPatch, "/api/orders/nope/status", statusRequest{Status: order.StatusCancelled})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/orders/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, []string{events.TypeOrderCreated, events.TypeOrderStatusChanged}, s.events.types())
}

func TestCreateOrderRejectsInvalid(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodPost, "/api/orders", map[string]any{"storeId": "store-1"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, s.events.types())
}

func TestCheckout(t *testing.T) {
	s := newTestServer(t, nil)

	for _, p := range []addCartRequest{{ProductID: "product-1", Quantity: 1}, {ProductID: "product-2", Quantity: 2}} {
		rr := s.do(t, http.MethodPost, "/api/cart?sessionId=s1", p)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := s.do(t, http.MethodPost, "/api/checkout?sessionId=s1", checkoutRequest{DeliveryAddress: "123 Main St"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	o := decode[order.Order](t, rr)
	assert.Equal(t, "store-1", o.StoreID)
	assert.Equal(t, "15.96", o.Total.StringFixed(2))
	assert.Len(t, o.Items, 2)

	rr = s.do(t, http.MethodGet, "/api/cart?sessionId=s1", nil)
	assert.Empty(t, decode[[]storage.CartEntry](t, rr))

	rr = s.do(t, http.MethodPost, "/api/checkout?sessionId=s1", checkoutRequest{DeliveryAddress: "123 Main St"})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "empty cart")

	assert.Equal(t, []string{events.TypeOrderCreated}, s.events.types())
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	s := newTestServer(t, nil)

	rr := s.do(t, http.MethodPost, "/api/cart?sessionId=s1", addCartRequest{ProductID: "product-6", Quantity: 1})
	require.Equal(t, http.StatusCreated, rr.Code)

	first := s.do(t, http.MethodPost, "/api/checkout?sessionId=s1", checkoutRequest{DeliveryAddress: "1 Side St"}, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, first.Code)
	second := s.do(t, http.MethodPost, "/api/checkout?sessionId=s1", checkoutRequest{DeliveryAddress: "1 Side St"}, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, decode[order.Order](t, first).ID, decode[order.Order](t, second).ID)

	orders, err := s.store.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, orders, 3)
	assert.Equal(t, []string{events.TypeOrderCreated}, s.events.types())

	// a failed attempt releases its key
	failed := s.do(t, http.MethodPost, "/api/checkout?sessionId=s1", checkoutRequest{DeliveryAddress: "1 Side St"}, "Idempotency-Key", "k-2")
	require.Equal(t, http.StatusBadRequest, failed.Code)
	rr = s.do(t, http.MethodPost, "/api/cart?sessionId=s1", addCartRequest{ProductID: "product-6", Quantity: 1})
	require.Equal(t, http.StatusCreated, rr.Code)
	retried := s.do(t, http.MethodPost, "/api/checkout?sessionId=s1", checkoutRequest{DeliveryAddress: "1 Side St"}, "Idempotency-Key", "k-2")
	assert.Equal(t, http.StatusCreated, retried.Code)
}

func TestIdempotencyKeyExpires(t *testing.T) {
	s := newTestServer(t, nil)
	checkout := func() *httptest.ResponseRecorder {
		rr := s.do(t, http.MethodPost, "/api/cart?sessionId=s1", addCartRequest{ProductID: "product-6", Quantity: 1})
		require.Equal(t, http.StatusCreated, rr.Code)
		return s.do(t, http.MethodPost, "/api/checkout?sessionId=s1", checkoutRequest{DeliveryAddress: "1 Side St"}, "Idempotency-Key", "k-1")
	}

	first := checkout()
	require.Equal(t, http.StatusCreated, first.Code)

	s.redis.FastForward(time.Hour)
	second := checkout()
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Empty(t, second.Header().Get("Idempotent-Replayed"))
	assert.NotEqual(t, decode[order.Order](t, first).ID, decode[order.Order](t, second).ID)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	s := newTestServer(t, nil)
	s.events.err = errors.New("broker down")

	rr := s.do(t, http.MethodPatch, "/api/orders/order-1/status", statusRequest{Status: order.StatusCancelled})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, s.logs.String(), "broker down")
}

type unavailableStorage struct {
	storage.Storage
}

func (unavailableStorage) ListStores(context.Context) ([]catalog.Store, error) {
	return nil, apperr.Unavailable("list stores", errors.New("connection refused"))
}

func (unavailableStorage) ListOrders(context.Context) ([]order.Order, error) {
	return nil, errors.New("unexpected")
}

func TestBackendErrors(t *testing.T) {
	s := newTestServer(t, unavailableStorage{Storage: storage.NewMemory()})

	rr := s.do(t, http.MethodGet, "/api/stores", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = s.do(t, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", decode[messageResponse](t, rr).Message)
	assert.Contains(t, s.logs.String(), "connection refused")
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rr := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
