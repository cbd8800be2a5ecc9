// Package memory implements an in-memory catalog repository.
package memory

import (
	"context"
	"sync"

	"quickcart/pkg/catalog"
	"quickcart/pkg/id"
)

// Repository provides an in-memory implementation of catalog.Repository.
// Listings come back in insertion order. Product store ids are not checked
// against the stored stores.
type Repository struct {
	newID id.Generator

	mu           sync.RWMutex
	stores       map[string]catalog.Store
	storeOrder   []string
	products     map[string]catalog.Product
	productOrder []string
}

// New creates a new in-memory repository.
func New(newID id.Generator) *Repository {
	return &Repository{
		newID:    newID,
		stores:   make(map[string]catalog.Store),
		products: make(map[string]catalog.Product),
	}
}

// ListStores returns all stores.
func (r *Repository) ListStores(ctx context.Context) ([]catalog.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Store, 0, len(r.storeOrder))
	for _, id := range r.storeOrder {
		out = append(out, r.stores[id])
	}
	return out, nil
}

// GetStore retrieves a store by ID.
func (r *Repository) GetStore(ctx context.Context, id string) (catalog.Store, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	return s, ok, nil
}

// CreateStore stores a new store under a fresh id.
func (r *Repository) CreateStore(ctx context.Context, ns catalog.NewStore) (catalog.Store, error) {
	s, err := ns.Build(r.newID())
	if err != nil {
		return catalog.Store{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putStore(s)
	return s, nil
}

// ListProducts returns all products.
func (r *Repository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return r.filterProducts(func(catalog.Product) bool { return true }), nil
}

// ProductsByStore returns the products of one store.
func (r *Repository) ProductsByStore(ctx context.Context, storeID string) ([]catalog.Product, error) {
	return r.filterProducts(func(p catalog.Product) bool { return p.StoreID == storeID }), nil
}

// SearchProducts returns the products whose name, description or category
// contain query, ignoring case.
func (r *Repository) SearchProducts(ctx context.Context, query string) ([]catalog.Product, error) {
	return r.filterProducts(func(p catalog.Product) bool { return p.Matches(query) }), nil
}

// GetProduct retrieves a product by ID.
func (r *Repository) GetProduct(ctx context.Context, id string) (catalog.Product, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	return p, ok, nil
}

// CreateProduct stores a new product under a fresh id.
func (r *Repository) CreateProduct(ctx context.Context, np catalog.NewProduct) (catalog.Product, error) {
	p, err := np.Build(r.newID())
	if err != nil {
		return catalog.Product{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putProduct(p)
	return p, nil
}

// ReplaceProduct overwrites an existing product.
func (r *Repository) ReplaceProduct(ctx context.Context, p catalog.Product) (catalog.Product, bool, error) {
	if err := p.Validate(); err != nil {
		return catalog.Product{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return catalog.Product{}, false, nil
	}
	r.products[p.ID] = p
	return p, true, nil
}

// Seed loads fixed records into an empty repository.
func (r *Repository) Seed(ctx context.Context, stores []catalog.Store, products []catalog.Product) (bool, error) {
	for _, s := range stores {
		if err := s.Validate(); err != nil {
			return false, err
		}
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return false, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stores) > 0 || len(r.products) > 0 {
		return false, nil
	}
	for _, s := range stores {
		r.putStore(s)
	}
	for _, p := range products {
		r.putProduct(p)
	}
	return true, nil
}

func (r *Repository) filterProducts(keep func(catalog.Product) bool) []catalog.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Product, 0)
	for _, id := range r.productOrder {
		if p := r.products[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// putStore and putProduct expect r.mu to be held for writing.
func (r *Repository) putStore(s catalog.Store) {
	if _, ok := r.stores[s.ID]; !ok {
		r.storeOrder = append(r.storeOrder, s.ID)
	}
	r.stores[s.ID] = s
}

func (r *Repository) putProduct(p catalog.Product) {
	if _, ok := r.products[p.ID]; !ok {
		r.productOrder = append(r.productOrder, p.ID)
	}
	r.products[p.ID] = p
}
