// Package cart holds the items of per-session shopping carts.
package cart

import (
	"context"
	"strings"

	"quickcart/pkg/apperr"
	"quickcart/pkg/numeric"
)

// DefaultSession groups cart items of callers that send no session id. Every
// anonymous caller shares this one cart, so it only suits single-user demos.
const DefaultSession = "default-session"

// Item is one product line in a session's cart. A session holds at most one
// Item per product.
type Item struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	SessionID string `json:"sessionId"`
}

// Repository stores cart items.
type Repository interface {
	// Items returns every item of a session.
	Items(ctx context.Context, sessionID string) ([]Item, error)
	// Add puts quantity of a product in the session's cart, merging with an
	// existing line for that product. A zero quantity adds one.
	Add(ctx context.Context, productID string, quantity int, sessionID string) (Item, error)
	// UpdateQuantity replaces an item's quantity. Zero or less deletes the item
	// and reports it as absent. Neither Add nor UpdateQuantity lets a quantity
	// exceed numeric.MaxQuantity.
	UpdateQuantity(ctx context.Context, id string, quantity int) (Item, bool, error)
	// Remove deletes an item and reports whether it existed.
	Remove(ctx context.Context, id string) (bool, error)
	// Clear deletes every item of a session. It reports true even when the
	// cart was already empty.
	Clear(ctx context.Context, sessionID string) (bool, error)
}

// NormalizeAdd validates the arguments of Repository.Add and applies the
// default quantity.
func NormalizeAdd(productID string, quantity int, sessionID string) (int, error) {
	switch {
	case strings.TrimSpace(productID) == "":
		return 0, apperr.Invalid("productId", "is required")
	case strings.TrimSpace(sessionID) == "":
		return 0, apperr.Invalid("sessionId", "is required")
	case quantity < 0:
		return 0, apperr.Invalid("quantity", "must not be negative")
	case quantity == 0:
		return 1, nil
	}
	return quantity, numeric.Quantity("quantity", quantity)
}
