// Package catalog holds the stores and products customers browse.
package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"quickcart/pkg/apperr"
	"quickcart/pkg/numeric"
)

// Store is a shop that delivers products.
type Store struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	Image               string              `json:"image"`
	Rating              decimal.Decimal     `json:"rating"`
	DeliveryTime        string              `json:"deliveryTime"`
	DeliveryFee         decimal.Decimal     `json:"deliveryFee"`
	FreeDeliveryMinimum decimal.NullDecimal `json:"freeDeliveryMinimum"`
	IsOpen              bool                `json:"isOpen"`
	Category            string              `json:"category"`
}

// Product is an item sold by a single store.
type Product struct {
	ID          string          `json:"id"`
	StoreID     string          `json:"storeId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	InStock     bool            `json:"inStock"`
}

// NewStore is the input for creating a store. A nil IsOpen means open.
type NewStore struct {
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	Image               string              `json:"image"`
	Rating              decimal.Decimal     `json:"rating"`
	DeliveryTime        string              `json:"deliveryTime"`
	DeliveryFee         decimal.Decimal     `json:"deliveryFee"`
	FreeDeliveryMinimum decimal.NullDecimal `json:"freeDeliveryMinimum"`
	IsOpen              *bool               `json:"isOpen,omitempty"`
	Category            string              `json:"category"`
}

// NewProduct is the input for creating a product. A nil InStock means in stock.
type NewProduct struct {
	StoreID     string          `json:"storeId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	InStock     *bool           `json:"inStock,omitempty"`
}

// Repository stores the catalog. Lookups report absence through the boolean
// result, never through the error.
type Repository interface {
	ListStores(ctx context.Context) ([]Store, error)
	GetStore(ctx context.Context, id string) (Store, bool, error)
	CreateStore(ctx context.Context, ns NewStore) (Store, error)

	ListProducts(ctx context.Context) ([]Product, error)
	ProductsByStore(ctx context.Context, storeID string) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, bool, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	CreateProduct(ctx context.Context, np NewProduct) (Product, error)
	// ReplaceProduct overwrites every field of an existing product.
	ReplaceProduct(ctx context.Context, p Product) (Product, bool, error)

	// Seed inserts records with their ids as given, but only into an empty
	// catalog. It reports whether anything was inserted.
	Seed(ctx context.Context, stores []Store, products []Product) (bool, error)
}

var maxRating = decimal.NewFromInt(5)

// Build validates ns and returns the Store it describes under id.
func (ns NewStore) Build(id string) (Store, error) {
	s := Store{
		ID:                  id,
		Name:                ns.Name,
		Description:         ns.Description,
		Image:               ns.Image,
		Rating:              ns.Rating.Round(1),
		DeliveryTime:        ns.DeliveryTime,
		DeliveryFee:         ns.DeliveryFee,
		FreeDeliveryMinimum: ns.FreeDeliveryMinimum,
		IsOpen:              true,
		Category:            ns.Category,
	}
	if ns.IsOpen != nil {
		s.IsOpen = *ns.IsOpen
	}
	return s, s.Validate()
}

// Validate checks the field constraints of a store.
func (s Store) Validate() error {
	switch {
	case strings.TrimSpace(s.ID) == "":
		return apperr.Invalid("id", "is required")
	case strings.TrimSpace(s.Name) == "":
		return apperr.Invalid("name", "is required")
	case s.Rating.IsNegative() || s.Rating.GreaterThan(maxRating):
		return apperr.Invalid("rating", "must be between 0 and 5")
	}
	if err := numeric.Amount("deliveryFee", s.DeliveryFee, numeric.MaxFee); err != nil {
		return err
	}
	if s.FreeDeliveryMinimum.Valid {
		return numeric.Amount("freeDeliveryMinimum", s.FreeDeliveryMinimum.Decimal, numeric.MaxFee)
	}
	return nil
}

// Build validates np and returns the Product it describes under id.
func (np NewProduct) Build(id string) (Product, error) {
	p := Product{
		ID:          id,
		StoreID:     np.StoreID,
		Name:        np.Name,
		Description: np.Description,
		Image:       np.Image,
		Price:       np.Price,
		Category:    np.Category,
		InStock:     true,
	}
	if np.InStock != nil {
		p.InStock = *np.InStock
	}
	return p, p.Validate()
}

// Validate checks the field constraints of a product.
func (p Product) Validate() error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return apperr.Invalid("id", "is required")
	case strings.TrimSpace(p.StoreID) == "":
		return apperr.Invalid("storeId", "is required")
	case strings.TrimSpace(p.Name) == "":
		return apperr.Invalid("name", "is required")
	}
	return numeric.Amount("price", p.Price, numeric.MaxPrice)
}

// Matches reports whether query occurs, ignoring case, in the product's name,
// description or category.
func (p Product) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}

// DeliveryFeeFor returns the fee charged on an order of subtotal: the store's
// delivery fee, or zero once subtotal reaches the free-delivery minimum.
func (s Store) DeliveryFeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if s.FreeDeliveryMinimum.Valid && subtotal.GreaterThanOrEqual(s.FreeDeliveryMinimum.Decimal) {
		return decimal.Zero
	}
	return s.DeliveryFee
}
