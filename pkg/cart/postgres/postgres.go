package postgres

import (
	"context"
	"database/sql"

	"quickcart/pkg/cart"
	"quickcart/pkg/database"
	"quickcart/pkg/id"
	"quickcart/pkg/numeric"
)

// Repository persists cart items in PostgreSQL. The unique (session_id,
// product_id) constraint backs the one-line-per-product rule.
type Repository struct {
	db    *sql.DB
	newID id.Generator
}

// New creates a PostgreSQL repository.
func New(db *sql.DB, newID id.Generator) *Repository {
	return &Repository{db: db, newID: newID}
}

// Items fetches the items of a session.
func (r *Repository) Items(ctx context.Context, sessionID string) ([]cart.Item, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id,product_id,quantity,session_id FROM cart_items WHERE session_id=$1 ORDER BY seq", sessionID)
	if err != nil {
		return nil, database.Classify("cart items", err)
	}
	defer rows.Close()
	items := make([]cart.Item, 0)
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.SessionID); err != nil {
			return nil, database.Classify("scan cart item", err)
		}
		items = append(items, it)
	}
	return items, database.Classify("cart items", rows.Err())
}

// Add inserts a line or merges into the existing one in a single statement. A
// merge past the INT column range fails with SQLSTATE 22003, which
// database.Classify reports as a validation error.
func (r *Repository) Add(ctx context.Context, productID string, quantity int, sessionID string) (cart.Item, error) {
	quantity, err := cart.NormalizeAdd(productID, quantity, sessionID)
	if err != nil {
		return cart.Item{}, err
	}
	var it cart.Item
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id,product_id,quantity,session_id) VALUES ($1,$2,$3,$4)
		ON CONFLICT (session_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id,product_id,quantity,session_id`,
		r.newID(), productID, quantity, sessionID).
		Scan(&it.ID, &it.ProductID, &it.Quantity, &it.SessionID)
	if err != nil {
		return cart.Item{}, database.Classify("add to cart", err)
	}
	return it, nil
}

// UpdateQuantity replaces the quantity, or deletes the item when quantity <= 0.
func (r *Repository) UpdateQuantity(ctx context.Context, id string, quantity int) (cart.Item, bool, error) {
	if quantity > numeric.MaxQuantity {
		return cart.Item{}, false, numeric.Quantity("quantity", quantity)
	}
	if quantity <= 0 {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id=$1", id); err != nil {
			return cart.Item{}, false, database.Classify("update cart item", err)
		}
		return cart.Item{}, false, nil
	}
	var it cart.Item
	err := r.db.QueryRowContext(ctx,
		"UPDATE cart_items SET quantity=$2 WHERE id=$1 RETURNING id,product_id,quantity,session_id", id, quantity).
		Scan(&it.ID, &it.ProductID, &it.Quantity, &it.SessionID)
	if err == sql.ErrNoRows {
		return cart.Item{}, false, nil
	}
	if err != nil {
		return cart.Item{}, false, database.Classify("update cart item", err)
	}
	return it, true, nil
}

// Remove deletes an item by ID.
func (r *Repository) Remove(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE id=$1", id)
	if err != nil {
		return false, database.Classify("remove from cart", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Clear deletes all items of a session.
func (r *Repository) Clear(ctx context.Context, sessionID string) (bool, error) {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM cart_items WHERE session_id=$1", sessionID); err != nil {
		return false, database.Classify("clear cart", err)
	}
	return true, nil
}
