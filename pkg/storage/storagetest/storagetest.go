// Package storagetest is a behavioural test suite every storage.Storage
// backing must pass.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickcart/pkg/apperr"
	"quickcart/pkg/catalog"
	"quickcart/pkg/numeric"
	"quickcart/pkg/order"
	"quickcart/pkg/storage"
)

// Factory returns an empty Storage built with opts.
type Factory func(t *testing.T, opts ...storage.Option) storage.Storage

// Run executes the suite, giving each case its own Storage.
func Run(t *testing.T, newStorage Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, newStorage Factory)
	}{
		{"StoreDefaults", testStoreDefaults},
		{"ProductLookups", testProductLookups},
		{"SearchProducts", testSearchProducts},
		{"RejectsInvalidInput", testRejectsInvalidInput},
		{"NumericLimits", testNumericLimits},
		{"CartMergesSameProduct", testCartMerge},
		{"CartConcurrentAdds", testCartConcurrentAdds},
		{"CartZeroQuantityDeletes", testCartZeroQuantityDeletes},
		{"CartRemove", testCartRemove},
		{"ClearCartIdempotent", testClearCart},
		{"CartView", testCartView},
		{"OrderSnapshotImmutable", testOrderSnapshot},
		{"OrdersNewestFirst", testOrdersNewestFirst},
		{"OrderStatusPermissive", testOrderStatus},
		{"ExampleScenario", testExampleScenario},
		{"Checkout", testCheckout},
		{"CheckoutRejects", testCheckoutRejects},
		{"Seed", testSeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.fn(t, newStorage) })
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

// tickingClock returns strictly increasing timestamps one second apart.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		at = at.Add(time.Second)
		return at
	}
}

func mustStore(t *testing.T, s storage.Storage, name string) catalog.Store {
	t.Helper()
	st, err := s.CreateStore(context.Background(), catalog.NewStore{
		Name:        name,
		Rating:      money("4.5"),
		DeliveryFee: money("3.99"),
		Category:    "grocery",
	})
	require.NoError(t, err)
	return st
}

func mustProduct(t *testing.T, s storage.Storage, storeID, name, price, category string) catalog.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), catalog.NewProduct{
		StoreID:     storeID,
		Name:        name,
		Description: name + " description",
		Price:       money(price),
		Category:    category,
	})
	require.NoError(t, err)
	return p
}

func testStoreDefaults(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)

	st := mustStore(t, s, "FreshMart")
	assert.NotEmpty(t, st.ID)
	assert.True(t, st.IsOpen)
	assert.False(t, st.FreeDeliveryMinimum.Valid)

	got, ok, err := s.GetStore(ctx, st.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, st.Name, got.Name)
	assertMoney(t, "3.99", got.DeliveryFee)
	assert.Equal(t, "4.5", got.Rating.StringFixed(1))
	assert.True(t, got.IsOpen)
	assert.False(t, got.FreeDeliveryMinimum.Valid)

	_, ok, err = s.GetStore(ctx, "no-such-store")
	require.NoError(t, err)
	assert.False(t, ok)

	closed := false
	other, err := s.CreateStore(ctx, catalog.NewStore{
		Name:                "Night Owl",
		FreeDeliveryMinimum: decimal.NewNullDecimal(money("20")),
		IsOpen:              &closed,
	})
	require.NoError(t, err)
	assert.False(t, other.IsOpen)
	assert.NotEqual(t, st.ID, other.ID)

	first, err := s.ListStores(ctx)
	require.NoError(t, err)
	second, err := s.ListStores(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "listing order is stable")
	}
}

func testProductLookups(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	a := mustStore(t, s, "A")
	b := mustStore(t, s, "B")
	milk := mustProduct(t, s, a.ID, "Milk", "4.49", "dairy")
	bread := mustProduct(t, s, a.ID, "Bread", "3.79", "bakery")
	chips := mustProduct(t, s, b.ID, "Chips", "4.29", "snacks")
	assert.True(t, milk.InStock)

	out, err := s.CreateProduct(ctx, catalog.NewProduct{StoreID: b.ID, Name: "Gone", Price: money("1"), InStock: new(bool)})
	require.NoError(t, err)
	assert.False(t, out.InStock)

	got, ok, err := s.GetProduct(ctx, milk.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a.ID, got.StoreID)
	assertMoney(t, "4.49", got.Price)

	_, ok, err = s.GetProduct(ctx, "no-such-product")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	byA, err := s.ProductsByStore(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{milk.ID, bread.ID}, productIDs(byA))

	byB, err := s.ProductsByStore(ctx, b.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{chips.ID, out.ID}, productIDs(byB))

	none, err := s.ProductsByStore(ctx, "no-such-store")
	require.NoError(t, err)
	assert.Empty(t, none)

	milk.Price = money("5.25")
	replaced, ok, err := s.ReplaceProduct(ctx, milk)
	require.NoError(t, err)
	require.True(t, ok)
	assertMoney(t, "5.25", replaced.Price)
	got, _, err = s.GetProduct(ctx, milk.ID)
	require.NoError(t, err)
	assertMoney(t, "5.25", got.Price)

	_, ok, err = s.ReplaceProduct(ctx, catalog.Product{ID: "no-such-product", StoreID: a.ID, Name: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func testSearchProducts(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")

	byName := mustProduct(t, s, st.ID, "Instant COFFEE", "6.99", "pantry")
	byCategory := mustProduct(t, s, st.ID, "Espresso Beans", "9.99", "Coffee")
	mustProduct(t, s, st.ID, "Green Tea", "3.49", "pantry")
	mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")
	byDescription, err := s.CreateProduct(ctx, catalog.NewProduct{
		StoreID:     st.ID,
		Name:        "Mug",
		Description: "Holds your morning coffee",
		Price:       money("7.00"),
		Category:    "kitchen",
	})
	require.NoError(t, err)

	found, err := s.SearchProducts(ctx, "coffee")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{byName.ID, byCategory.ID, byDescription.ID}, productIDs(found))

	found, err = s.SearchProducts(ctx, "CoFfEe")
	require.NoError(t, err)
	assert.Len(t, found, 3)

	found, err = s.SearchProducts(ctx, "100%")
	require.NoError(t, err)
	assert.Empty(t, found, "wildcard characters are matched literally")

	found, err = s.SearchProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, found, 5, "an empty query matches everything")
}

func testRejectsInvalidInput(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")

	_, err := s.CreateStore(ctx, catalog.NewStore{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.CreateProduct(ctx, catalog.NewProduct{StoreID: st.ID, Name: "x", Price: money("-1")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.AddToCart(ctx, "p", -1, "s1")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.CreateOrder(ctx, order.NewOrder{StoreID: st.ID, StoreName: st.Name, DeliveryAddress: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// testNumericLimits checks that values a backing could not keep exactly are
// rejected up front, so every backing accepts the same inputs.
func testNumericLimits(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")
	p := mustProduct(t, s, st.ID, "Bananas", "2.99", "produce")

	_, err := s.CreateStore(ctx, catalog.NewStore{Name: "B", DeliveryFee: money("123456.789")})
	assert.ErrorIs(t, err, apperr.ErrValidation, "fee")
	_, err = s.CreateStore(ctx, catalog.NewStore{Name: "B", DeliveryFee: money("10000")})
	assert.ErrorIs(t, err, apperr.ErrValidation, "fee range")

	_, err = s.CreateProduct(ctx, catalog.NewProduct{StoreID: st.ID, Name: "X", Price: money("2.999")})
	assert.ErrorIs(t, err, apperr.ErrValidation, "price scale")
	_, err = s.CreateProduct(ctx, catalog.NewProduct{StoreID: st.ID, Name: "X", Price: money("1000000")})
	assert.ErrorIs(t, err, apperr.ErrValidation, "price range")

	newOrder := func(total string, qty int) order.NewOrder {
		return order.NewOrder{
			StoreID:         st.ID,
			StoreName:       st.Name,
			Items:           []order.Line{{ProductID: p.ID, Name: p.Name, Quantity: qty, Price: p.Price}},
			Total:           money(total),
			DeliveryAddress: "1 Test Lane",
		}
	}
	_, err = s.CreateOrder(ctx, newOrder("11.975", 1))
	assert.ErrorIs(t, err, apperr.ErrValidation, "total scale")
	_, err = s.CreateOrder(ctx, newOrder("1.00", numeric.MaxQuantity+1))
	assert.ErrorIs(t, err, apperr.ErrValidation, "line quantity")

	o, err := s.CreateOrder(ctx, newOrder("99999999.99", numeric.MaxQuantity))
	require.NoError(t, err)
	got, ok, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assertMoney(t, "99999999.99", got.Total)
	assert.Equal(t, numeric.MaxQuantity, got.Items[0].Quantity)

	_, err = s.AddToCart(ctx, p.ID, numeric.MaxQuantity+1, "s1")
	assert.ErrorIs(t, err, apperr.ErrValidation, "add quantity")

	it, err := s.AddToCart(ctx, p.ID, numeric.MaxQuantity, "s1")
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, p.ID, 1, "s1")
	assert.ErrorIs(t, err, apperr.ErrValidation, "merged quantity")
	_, _, err = s.UpdateCartItemQuantity(ctx, it.ID, numeric.MaxQuantity+1)
	assert.ErrorIs(t, err, apperr.ErrValidation, "updated quantity")

	items, err := s.CartItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, numeric.MaxQuantity, items[0].Quantity)
}

func testCartMerge(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")
	p := mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")

	first, err := s.AddToCart(ctx, p.ID, 2, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)
	second, err := s.AddToCart(ctx, p.ID, 3, "s1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	defaulted, err := s.AddToCart(ctx, p.ID, 0, "s1")
	require.NoError(t, err)
	assert.Equal(t, 6, defaulted.Quantity, "unspecified quantity adds one")

	items, err := s.CartItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity)
	assert.Equal(t, "s1", items[0].SessionID)

	other, err := s.AddToCart(ctx, p.ID, 1, "s2")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
	items, err = s.CartItems(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func testCartConcurrentAdds(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")
	p := mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddToCart(ctx, p.ID, 1, "busy")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := s.CartItems(ctx, "busy")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, workers, items[0].Quantity)
}

func testCartZeroQuantityDeletes(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")
	p1 := mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")
	p2 := mustProduct(t, s, st.ID, "Bread", "3.79", "bakery")
	a, err := s.AddToCart(ctx, p1.ID, 1, "s1")
	require.NoError(t, err)
	b, err := s.AddToCart(ctx, p2.ID, 1, "s1")
	require.NoError(t, err)

	updated, ok, err := s.UpdateCartItemQuantity(ctx, a.ID, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, updated.Quantity)

	_, ok, err = s.UpdateCartItemQuantity(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.UpdateCartItemQuantity(ctx, b.ID, -3)
	require.NoError(t, err)
	assert.False(t, ok)

	items, err := s.CartItems(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, ok, err = s.UpdateCartItemQuantity(ctx, "no-such-item", 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testCartRemove(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")
	p := mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")
	it, err := s.AddToCart(ctx, p.ID, 1, "s1")
	require.NoError(t, err)

	removed, err := s.RemoveFromCart(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveFromCart(ctx, it.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func testClearCart(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")
	p1 := mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")
	p2 := mustProduct(t, s, st.ID, "Bread", "3.79", "bakery")
	for _, p := range []catalog.Product{p1, p2} {
		_, err := s.AddToCart(ctx, p.ID, 1, "s1")
		require.NoError(t, err)
	}
	_, err := s.AddToCart(ctx, p1.ID, 1, "s2")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := s.ClearCart(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, ok)
		items, err := s.CartItems(ctx, "s1")
		require.NoError(t, err)
		assert.Empty(t, items)
	}

	ok, err := s.ClearCart(ctx, "never-used")
	require.NoError(t, err)
	assert.True(t, ok)

	untouched, err := s.CartItems(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, untouched, 1, "other sessions keep their items")
}

func testCartView(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")
	p1 := mustProduct(t, s, st.ID, "Bananas", "2.99", "produce")
	p2 := mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")
	_, err := s.AddToCart(ctx, p1.ID, 1, "s1")
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, p2.ID, 2, "s1")
	require.NoError(t, err)

	view, err := s.CartView(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view, 2)
	for _, e := range view {
		require.NotNil(t, e.Product)
		assert.Equal(t, e.ProductID, e.Product.ID)
	}

	total, err := s.CartTotal(ctx, "s1")
	require.NoError(t, err)
	assertMoney(t, "11.97", total)

	empty, err := s.CartView(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testOrderSnapshot(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")
	p := mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")

	o, err := s.CreateOrder(ctx, order.NewOrder{
		StoreID:         st.ID,
		StoreName:       st.Name,
		Items:           []order.Line{{ProductID: p.ID, Name: p.Name, Quantity: 2, Price: p.Price}},
		Total:           money("8.98"),
		Status:          order.StatusPending,
		DeliveryAddress: "1 Test Lane",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())

	p.Price = money("9.99")
	p.Name = "Renamed Milk"
	_, ok, err := s.ReplaceProduct(ctx, p)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Items, 1)
	assertMoney(t, "4.49", got.Items[0].Price)
	assert.Equal(t, "Milk", got.Items[0].Name)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assertMoney(t, "8.98", got.Total)
	assert.Equal(t, st.Name, got.StoreName)
	assert.True(t, o.CreatedAt.Equal(got.CreatedAt))

	_, ok, err = s.GetOrder(ctx, "no-such-order")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testOrdersNewestFirst(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t, storage.WithClock(tickingClock()))
	st := mustStore(t, s, "A")

	var created []order.Order
	for i := 0; i < 3; i++ {
		o, err := s.CreateOrder(ctx, order.NewOrder{
			StoreID:         st.ID,
			StoreName:       st.Name,
			Items:           []order.Line{{Name: "Thing", Quantity: i + 1, Price: money("1.00")}},
			Total:           decimal.NewFromInt(int64(i + 1)),
			DeliveryAddress: "1 Test Lane",
		})
		require.NoError(t, err)
		created = append(created, o)
	}
	require.True(t, created[0].CreatedAt.Before(created[1].CreatedAt))
	require.True(t, created[1].CreatedAt.Before(created[2].CreatedAt))

	list, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{created[2].ID, created[1].ID, created[0].ID},
		[]string{list[0].ID, list[1].ID, list[2].ID})
}

func testOrderStatus(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "A")
	o, err := s.CreateOrder(ctx, order.NewOrder{
		StoreID:         st.ID,
		StoreName:       st.Name,
		Items:           []order.Line{{Name: "Thing", Quantity: 1, Price: money("1.00")}},
		Total:           money("1.00"),
		DeliveryAddress: "1 Test Lane",
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)

	// delivered -> pending, unknown and empty values are stored as given
	for _, status := range []order.Status{order.StatusDelivered, order.StatusPending, "teleported", ""} {
		got, ok, err := s.UpdateOrderStatus(ctx, o.ID, status)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, status, got.Status)
		assertMoney(t, "1.00", got.Total)
		require.Len(t, got.Items, 1)
	}

	_, ok, err := s.UpdateOrderStatus(ctx, "no-such-order", order.StatusConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testExampleScenario(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st := mustStore(t, s, "FreshMart")
	p1 := mustProduct(t, s, st.ID, "Bananas", "2.99", "produce")
	p2 := mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")

	_, err := s.AddToCart(ctx, p1.ID, 1, "s1")
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, p2.ID, 2, "s1")
	require.NoError(t, err)

	items, err := s.CartItems(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	var lines []order.Line
	total := decimal.Zero
	for _, it := range items {
		p, ok, err := s.GetProduct(ctx, it.ProductID)
		require.NoError(t, err)
		require.True(t, ok)
		l := order.Line{ProductID: p.ID, Name: p.Name, Quantity: it.Quantity, Price: p.Price}
		lines = append(lines, l)
		total = total.Add(l.Subtotal())
	}
	assertMoney(t, "11.97", total)

	o, err := s.CreateOrder(ctx, order.NewOrder{
		StoreID:         st.ID,
		StoreName:       st.Name,
		Items:           lines,
		Total:           total,
		Status:          order.StatusPending,
		DeliveryAddress: "123 Main St, City",
	})
	require.NoError(t, err)

	_, ok, err := s.UpdateOrderStatus(ctx, o.ID, order.StatusDelivered)
	require.NoError(t, err)
	require.True(t, ok)

	got, ok, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, order.StatusDelivered, got.Status)
	assertMoney(t, "11.97", got.Total)
}

func testCheckout(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	st, err := s.CreateStore(ctx, catalog.NewStore{
		Name:                "FreshMart",
		DeliveryFee:         money("3.99"),
		FreeDeliveryMinimum: decimal.NewNullDecimal(money("35.00")),
	})
	require.NoError(t, err)
	bananas := mustProduct(t, s, st.ID, "Bananas", "2.99", "produce")
	milk := mustProduct(t, s, st.ID, "Milk", "4.49", "dairy")

	_, err = s.AddToCart(ctx, bananas.ID, 1, "s1")
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, milk.ID, 2, "s1")
	require.NoError(t, err)

	o, err := s.Checkout(ctx, "s1", "123 Main St")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, st.ID, o.StoreID)
	assert.Equal(t, "FreshMart", o.StoreName)
	assertMoney(t, "15.96", o.Total)
	require.Len(t, o.Items, 2)

	items, err := s.CartItems(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, items, "checkout empties the cart")

	// free delivery once the subtotal reaches the minimum
	_, err = s.AddToCart(ctx, milk.ID, 8, "s1")
	require.NoError(t, err)
	o, err = s.Checkout(ctx, "s1", "123 Main St")
	require.NoError(t, err)
	assertMoney(t, "35.92", o.Total)

	stored, ok, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assertMoney(t, "35.92", stored.Total)
}

func testCheckoutRejects(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	a := mustStore(t, s, "A")
	b := mustStore(t, s, "B")
	pa := mustProduct(t, s, a.ID, "Milk", "4.49", "dairy")
	pb := mustProduct(t, s, b.ID, "Chips", "4.29", "snacks")

	_, err := s.Checkout(ctx, "empty", "123 Main St")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.AddToCart(ctx, pa.ID, 1, "s1")
	require.NoError(t, err)
	_, err = s.Checkout(ctx, "s1", "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.AddToCart(ctx, pb.ID, 1, "s1")
	require.NoError(t, err)
	_, err = s.Checkout(ctx, "s1", "123 Main St")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	items, err := s.CartItems(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, items, 2, "a rejected checkout leaves the cart alone")

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func testSeed(t *testing.T, newStorage Factory) {
	ctx := context.Background()
	s := newStorage(t)
	fx := storage.DefaultFixture(time.Now())

	seeded, err := s.Seed(ctx, fx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.Seed(ctx, fx)
	require.NoError(t, err)
	assert.False(t, seeded)

	stores, err := s.ListStores(ctx)
	require.NoError(t, err)
	assert.Len(t, stores, 2)

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 12)

	st, ok, err := s.GetStore(ctx, "store-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, st.FreeDeliveryMinimum.Valid)

	coffee, err := s.SearchProducts(ctx, "coffee")
	require.NoError(t, err)
	assert.Equal(t, []string{"product-11"}, productIDs(coffee))

	orders, err := s.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order-2", orders[0].ID)
	assert.Equal(t, "order-1", orders[1].ID)
	assert.Equal(t, order.StatusInTransit, orders[0].Status)
}

func productIDs(ps []catalog.Product) []string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}
