package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickcart/pkg/apperr"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusPreparing, true},
		{StatusPreparing, StatusInTransit, true},
		{StatusInTransit, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusInTransit, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusCancelled, false},
		{"bogus", StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestKnown(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusInTransit, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Known(), s)
	}
	assert.False(t, Status("shipped").Known())
}

func TestBuild(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	no := NewOrder{
		StoreID:         "store-1",
		StoreName:       "FreshMart Grocery",
		Items:           []Line{{Name: "Bananas", Quantity: 1, Price: decimal.RequireFromString("2.99")}},
		Total:           decimal.RequireFromString("6.98"),
		DeliveryAddress: "123 Main St",
	}

	o, err := no.Build("o1", at)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, at, o.CreatedAt)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("6.98")), "total is stored as given")

	no.Items[0].Name = "mutated"
	assert.Equal(t, "Bananas", o.Items[0].Name)
}

func TestValidate(t *testing.T) {
	good := func() NewOrder {
		return NewOrder{
			StoreID:         "s",
			StoreName:       "S",
			Items:           []Line{{Name: "x", Quantity: 1, Price: decimal.NewFromInt(1)}},
			DeliveryAddress: "addr",
		}
	}
	tests := []struct {
		name   string
		mutate func(*NewOrder)
		field  string
	}{
		{"no store", func(n *NewOrder) { n.StoreID = "" }, "storeId"},
		{"no store name", func(n *NewOrder) { n.StoreName = "" }, "storeName"},
		{"no address", func(n *NewOrder) { n.DeliveryAddress = " " }, "deliveryAddress"},
		{"no items", func(n *NewOrder) { n.Items = nil }, "items"},
		{"negative total", func(n *NewOrder) { n.Total = decimal.NewFromInt(-1) }, "total"},
		{"zero quantity", func(n *NewOrder) { n.Items[0].Quantity = 0 }, "items.quantity"},
		{"negative price", func(n *NewOrder) { n.Items[0].Price = decimal.NewFromInt(-1) }, "items.price"},
		{"unnamed line", func(n *NewOrder) { n.Items[0].Name = "" }, "items.name"},
		{"total below a cent", func(n *NewOrder) { n.Total = decimal.RequireFromString("11.975") }, "total"},
		{"total too large", func(n *NewOrder) { n.Total = decimal.New(1, 8) }, "total"},
		{"price below a cent", func(n *NewOrder) { n.Items[0].Price = decimal.RequireFromString("2.999") }, "items.price"},
		{"quantity too large", func(n *NewOrder) { n.Items[0].Quantity = 3000000000 }, "items.quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			no := good()
			tt.mutate(&no)
			_, err := no.Build("id", time.Now())
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLineSubtotal(t *testing.T) {
	l := Line{Name: "Milk", Quantity: 2, Price: decimal.RequireFromString("4.49")}
	assert.Equal(t, "8.98", l.Subtotal().StringFixed(2))
}
