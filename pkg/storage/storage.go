// Package storage composes the catalog, cart and order repositories behind one
// interface consumed by the HTTP adapter.
//
// Two backings exist with identical behaviour: NewMemory keeps everything in
// process maps and NewPostgres persists to PostgreSQL. Which one runs is a
// deployment choice made once at start-up.
package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"quickcart/pkg/cart"
	cartmem "quickcart/pkg/cart/memory"
	cartpg "quickcart/pkg/cart/postgres"
	"quickcart/pkg/catalog"
	catalogmem "quickcart/pkg/catalog/memory"
	catalogpg "quickcart/pkg/catalog/postgres"
	"quickcart/pkg/id"
	"quickcart/pkg/order"
	ordermem "quickcart/pkg/order/memory"
	orderpg "quickcart/pkg/order/postgres"
)

// Storage is every operation the adapter layer may call.
type Storage interface {
	ListStores(ctx context.Context) ([]catalog.Store, error)
	GetStore(ctx context.Context, id string) (catalog.Store, bool, error)
	CreateStore(ctx context.Context, ns catalog.NewStore) (catalog.Store, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ProductsByStore(ctx context.Context, storeID string) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, bool, error)
	SearchProducts(ctx context.Context, query string) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, np catalog.NewProduct) (catalog.Product, error)
	ReplaceProduct(ctx context.Context, p catalog.Product) (catalog.Product, bool, error)

	CartItems(ctx context.Context, sessionID string) ([]cart.Item, error)
	AddToCart(ctx context.Context, productID string, quantity int, sessionID string) (cart.Item, error)
	UpdateCartItemQuantity(ctx context.Context, id string, quantity int) (cart.Item, bool, error)
	RemoveFromCart(ctx context.Context, id string) (bool, error)
	ClearCart(ctx context.Context, sessionID string) (bool, error)
	CartView(ctx context.Context, sessionID string) ([]CartEntry, error)
	CartTotal(ctx context.Context, sessionID string) (decimal.Decimal, error)

	ListOrders(ctx context.Context) ([]order.Order, error)
	GetOrder(ctx context.Context, id string) (order.Order, bool, error)
	CreateOrder(ctx context.Context, no order.NewOrder) (order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, bool, error)
	Checkout(ctx context.Context, sessionID, deliveryAddress string) (order.Order, error)

	Seed(ctx context.Context, fx Fixture) (bool, error)
}

// CartEntry is a cart item joined with its product. Product is nil when the
// product no longer exists.
type CartEntry struct {
	cart.Item
	Product *catalog.Product `json:"product,omitempty"`
}

// Facade implements Storage by delegating to one repository per entity kind.
// The repositories never call each other; joins happen here.
type Facade struct {
	Catalog catalog.Repository
	Cart    cart.Repository
	Orders  order.Repository
}

var _ Storage = (*Facade)(nil)

type options struct {
	newID id.Generator
	now   func() time.Time
}

// Option configures the repositories built by NewMemory and NewPostgres.
type Option func(*options)

// WithIDs replaces the identifier generator.
func WithIDs(g id.Generator) Option {
	return func(o *options) { o.newID = g }
}

// WithClock replaces the source of order creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{newID: id.New, now: order.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewMemory returns a Facade over in-process maps. Its state lives as long as
// the returned value.
func NewMemory(opts ...Option) *Facade {
	o := buildOptions(opts)
	return &Facade{
		Catalog: catalogmem.New(o.newID),
		Cart:    cartmem.New(o.newID),
		Orders:  ordermem.New(o.newID, o.now),
	}
}

// NewPostgres returns a Facade over db. The tables of database.Schema must exist.
func NewPostgres(db *sql.DB, opts ...Option) *Facade {
	o := buildOptions(opts)
	return &Facade{
		Catalog: catalogpg.New(db, o.newID),
		Cart:    cartpg.New(db, o.newID),
		Orders:  orderpg.New(db, o.newID, o.now),
	}
}

func (f *Facade) ListStores(ctx context.Context) ([]catalog.Store, error) {
	return f.Catalog.ListStores(ctx)
}

func (f *Facade) GetStore(ctx context.Context, id string) (catalog.Store, bool, error) {
	return f.Catalog.GetStore(ctx, id)
}

func (f *Facade) CreateStore(ctx context.Context, ns catalog.NewStore) (catalog.Store, error) {
	return f.Catalog.CreateStore(ctx, ns)
}

func (f *Facade) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return f.Catalog.ListProducts(ctx)
}

func (f *Facade) ProductsByStore(ctx context.Context, storeID string) ([]catalog.Product, error) {
	return f.Catalog.ProductsByStore(ctx, storeID)
}

func (f *Facade) GetProduct(ctx context.Context, id string) (catalog.Product, bool, error) {
	return f.Catalog.GetProduct(ctx, id)
}

func (f *Facade) SearchProducts(ctx context.Context, query string) ([]catalog.Product, error) {
	return f.Catalog.SearchProducts(ctx, query)
}

func (f *Facade) CreateProduct(ctx context.Context, np catalog.NewProduct) (catalog.Product, error) {
	return f.Catalog.CreateProduct(ctx, np)
}

func (f *Facade) ReplaceProduct(ctx context.Context, p catalog.Product) (catalog.Product, bool, error) {
	return f.Catalog.ReplaceProduct(ctx, p)
}

func (f *Facade) CartItems(ctx context.Context, sessionID string) ([]cart.Item, error) {
	return f.Cart.Items(ctx, sessionID)
}

func (f *Facade) AddToCart(ctx context.Context, productID string, quantity int, sessionID string) (cart.Item, error) {
	return f.Cart.Add(ctx, productID, quantity, sessionID)
}

func (f *Facade) UpdateCartItemQuantity(ctx context.Context, id string, quantity int) (cart.Item, bool, error) {
	return f.Cart.UpdateQuantity(ctx, id, quantity)
}

func (f *Facade) RemoveFromCart(ctx context.Context, id string) (bool, error) {
	return f.Cart.Remove(ctx, id)
}

func (f *Facade) ClearCart(ctx context.Context, sessionID string) (bool, error) {
	return f.Cart.Clear(ctx, sessionID)
}

func (f *Facade) ListOrders(ctx context.Context) ([]order.Order, error) {
	return f.Orders.List(ctx)
}

func (f *Facade) GetOrder(ctx context.Context, id string) (order.Order, bool, error) {
	return f.Orders.Get(ctx, id)
}

func (f *Facade) CreateOrder(ctx context.Context, no order.NewOrder) (order.Order, error) {
	return f.Orders.Create(ctx, no)
}

func (f *Facade) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, bool, error) {
	return f.Orders.UpdateStatus(ctx, id, status)
}

// CartView returns the session's items, each with its product attached when
// the product still exists.
func (f *Facade) CartView(ctx context.Context, sessionID string) ([]CartEntry, error) {
	items, err := f.Cart.Items(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entries := make([]CartEntry, 0, len(items))
	for _, it := range items {
		e := CartEntry{Item: it}
		p, ok, err := f.Catalog.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if ok {
			e.Product = &p
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// CartTotal sums price times quantity over the session's items whose product exists.
func (f *Facade) CartTotal(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	entries, err := f.CartView(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range entries {
		if e.Product != nil {
			total = total.Add(e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity))))
		}
	}
	return total, nil
}
