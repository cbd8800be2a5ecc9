// Package memory implements an in-memory cart repository.
package memory

import (
	"context"
	"sync"

	"quickcart/pkg/cart"
	"quickcart/pkg/id"
	"quickcart/pkg/numeric"
)

type lineKey struct {
	sessionID string
	productID string
}

// Repository provides an in-memory implementation of cart.Repository. Each
// mutation runs entirely under the write lock, so concurrent adds of the same
// product to one session merge into a single item.
type Repository struct {
	newID id.Generator

	mu     sync.RWMutex
	items  map[string]cart.Item
	byLine map[lineKey]string
	order  []string
}

// New creates a new in-memory repository.
func New(newID id.Generator) *Repository {
	return &Repository{
		newID:  newID,
		items:  make(map[string]cart.Item),
		byLine: make(map[lineKey]string),
	}
}

// Items returns the session's items in the order they were first added.
func (r *Repository) Items(ctx context.Context, sessionID string) ([]cart.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]cart.Item, 0)
	for _, id := range r.order {
		if it := r.items[id]; it.SessionID == sessionID {
			out = append(out, it)
		}
	}
	return out, nil
}

// Add creates an item or increases the quantity of the existing one.
func (r *Repository) Add(ctx context.Context, productID string, quantity int, sessionID string) (cart.Item, error) {
	quantity, err := cart.NormalizeAdd(productID, quantity, sessionID)
	if err != nil {
		return cart.Item{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := lineKey{sessionID: sessionID, productID: productID}
	if id, ok := r.byLine[key]; ok {
		it := r.items[id]
		if err := numeric.Quantity("quantity", it.Quantity+quantity); err != nil {
			return cart.Item{}, err
		}
		it.Quantity += quantity
		r.items[id] = it
		return it, nil
	}

	it := cart.Item{ID: r.newID(), ProductID: productID, Quantity: quantity, SessionID: sessionID}
	r.items[it.ID] = it
	r.byLine[key] = it.ID
	r.order = append(r.order, it.ID)
	return it, nil
}

// UpdateQuantity replaces the quantity or deletes the item when quantity <= 0.
func (r *Repository) UpdateQuantity(ctx context.Context, id string, quantity int) (cart.Item, bool, error) {
	if quantity > numeric.MaxQuantity {
		return cart.Item{}, false, numeric.Quantity("quantity", quantity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return cart.Item{}, false, nil
	}
	if quantity <= 0 {
		r.delete(it)
		return cart.Item{}, false, nil
	}
	it.Quantity = quantity
	r.items[id] = it
	return it, true, nil
}

// Remove deletes an item by ID.
func (r *Repository) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return false, nil
	}
	r.delete(it)
	return true, nil
}

// Clear deletes all items of a session.
func (r *Repository) Clear(ctx context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if it := r.items[id]; it.SessionID == sessionID {
			delete(r.items, id)
			delete(r.byLine, lineKey{sessionID: it.SessionID, productID: it.ProductID})
		}
	}
	r.compact()
	return true, nil
}

// delete expects r.mu to be held for writing.
func (r *Repository) delete(it cart.Item) {
	delete(r.items, it.ID)
	delete(r.byLine, lineKey{sessionID: it.SessionID, productID: it.ProductID})
	r.compact()
}

// compact drops ids of deleted items from r.order.
func (r *Repository) compact() {
	kept := r.order[:0]
	for _, id := range r.order {
		if _, ok := r.items[id]; ok {
			kept = append(kept, id)
		}
	}
	r.order = kept
}
