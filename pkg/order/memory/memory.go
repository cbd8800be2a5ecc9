// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quickcart/pkg/id"
	"quickcart/pkg/order"
)

type entry struct {
	order order.Order
	seq   int
}

// Repository provides an in-memory implementation of order.Repository.
type Repository struct {
	newID id.Generator
	now   func() time.Time

	mu     sync.RWMutex
	orders map[string]entry
	seq    int
}

// New creates a new in-memory repository. now supplies creation timestamps.
func New(newID id.Generator, now func() time.Time) *Repository {
	return &Repository{newID: newID, now: now, orders: make(map[string]entry)}
}

// Create stores the order.
func (r *Repository) Create(ctx context.Context, no order.NewOrder) (order.Order, error) {
	o, err := no.Build(r.newID(), r.now())
	if err != nil {
		return order.Order{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(o)
	return o.Clone(), nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.orders[id]
	if !ok {
		return order.Order{}, false, nil
	}
	return e.order.Clone(), true, nil
}

// List returns all orders, newest first. Orders created in the same instant
// keep their creation order reversed.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	r.mu.RLock()
	entries := make([]entry, 0, len(r.orders))
	for _, e := range r.orders {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.order.CreatedAt.Equal(b.order.CreatedAt) {
			return a.order.CreatedAt.After(b.order.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]order.Order, len(entries))
	for i, e := range entries {
		out[i] = e.order.Clone()
	}
	return out, nil
}

// UpdateStatus replaces the status of an existing order with status as given.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.orders[id]
	if !ok {
		return order.Order{}, false, nil
	}
	e.order.Status = status
	r.orders[id] = e
	return e.order.Clone(), true, nil
}

// Seed stores historical orders as given.
func (r *Repository) Seed(ctx context.Context, orders []order.Order) error {
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range orders {
		if _, ok := r.orders[o.ID]; !ok {
			r.put(o.Clone())
		}
	}
	return nil
}

// put expects r.mu to be held for writing.
func (r *Repository) put(o order.Order) {
	r.seq++
	r.orders[o.ID] = entry{order: o, seq: r.seq}
}
