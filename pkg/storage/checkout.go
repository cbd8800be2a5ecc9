package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"quickcart/pkg/apperr"
	"quickcart/pkg/order"
)

// Checkout turns the session's cart into a pending order and removes the
// ordered lines from the cart.
//
// The order belongs to the store of the first cart line and every line must
// come from that store. Lines are snapshotted with the product's current name
// and price. The total is the line subtotal plus the store's delivery fee,
// waived once the subtotal reaches the store's free-delivery minimum.
//
// Only the lines read for the order are removed, so a line added while the
// order is being placed stays in the cart. Order creation and line removal are
// separate steps: if removal fails the order stands and the error is returned
// with it.
func (f *Facade) Checkout(ctx context.Context, sessionID, deliveryAddress string) (order.Order, error) {
	if strings.TrimSpace(deliveryAddress) == "" {
		return order.Order{}, apperr.Invalid("deliveryAddress", "is required")
	}
	entries, err := f.CartView(ctx, sessionID)
	if err != nil {
		return order.Order{}, err
	}
	if len(entries) == 0 {
		return order.Order{}, apperr.Invalid("cart", "is empty")
	}

	lines := make([]order.Line, 0, len(entries))
	subtotal := decimal.Zero
	var storeID string
	for _, e := range entries {
		p := e.Product
		switch {
		case p == nil:
			return order.Order{}, apperr.Invalid("cart", fmt.Sprintf("product %s no longer exists", e.ProductID))
		case !p.InStock:
			return order.Order{}, apperr.Invalid("cart", fmt.Sprintf("%s is out of stock", p.Name))
		case storeID == "":
			storeID = p.StoreID
		case p.StoreID != storeID:
			return order.Order{}, apperr.Invalid("cart", "items come from more than one store")
		}
		l := order.Line{ProductID: p.ID, Name: p.Name, Quantity: e.Quantity, Price: p.Price}
		lines = append(lines, l)
		subtotal = subtotal.Add(l.Subtotal())
	}

	store, ok, err := f.Catalog.GetStore(ctx, storeID)
	if err != nil {
		return order.Order{}, err
	}
	if !ok {
		return order.Order{}, apperr.Invalid("cart", fmt.Sprintf("store %s no longer exists", storeID))
	}

	o, err := f.Orders.Create(ctx, order.NewOrder{
		StoreID:         store.ID,
		StoreName:       store.Name,
		Items:           lines,
		Total:           subtotal.Add(store.DeliveryFeeFor(subtotal)),
		Status:          order.StatusPending,
		DeliveryAddress: deliveryAddress,
	})
	if err != nil {
		return order.Order{}, err
	}
	for _, e := range entries {
		if _, err := f.Cart.Remove(ctx, e.ID); err != nil {
			return o, fmt.Errorf("clear cart after order %s: %w", o.ID, err)
		}
	}
	return o, nil
}
