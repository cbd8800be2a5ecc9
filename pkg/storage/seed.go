package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"quickcart/pkg/catalog"
	"quickcart/pkg/order"
)

// Fixture is a set of records loaded with fixed ids.
type Fixture struct {
	Stores   []catalog.Store
	Products []catalog.Product
	Orders   []order.Order
}

// Seed loads fx when the catalog is empty and reports whether it did. Orders
// are only loaded together with the catalog they reference.
func (f *Facade) Seed(ctx context.Context, fx Fixture) (bool, error) {
	seeded, err := f.Catalog.Seed(ctx, fx.Stores, fx.Products)
	if err != nil || !seeded {
		return false, err
	}
	if err := f.Orders.Seed(ctx, fx.Orders); err != nil {
		return true, err
	}
	return true, nil
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

const imageBase = "https://images.unsplash.com/"

// DefaultFixture is the demo catalog: two stores, twelve products and two past
// orders placed relative to now.
func DefaultFixture(now time.Time) Fixture {
	product := func(id, storeID, name, description, image, price, category string) catalog.Product {
		return catalog.Product{
			ID:          id,
			StoreID:     storeID,
			Name:        name,
			Description: description,
			Image:       imageBase + image + "?ixlib=rb-4.0.3&auto=format&fit=crop&w=300&h=160",
			Price:       money(price),
			Category:    category,
			InStock:     true,
		}
	}
	line := func(name, price string) order.Line {
		return order.Line{Name: name, Quantity: 1, Price: money(price)}
	}
	now = now.UTC().Truncate(time.Microsecond)

	return Fixture{
		Stores: []catalog.Store{
			{
				ID:                  "store-1",
				Name:                "FreshMart Grocery",
				Description:         "Fresh produce, pantry essentials & more",
				Image:               imageBase + "photo-1578662996442-48f60103fc96?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=200",
				Rating:              money("4.8"),
				DeliveryTime:        "15-25 min",
				DeliveryFee:         money("3.99"),
				FreeDeliveryMinimum: decimal.NewNullDecimal(money("35.00")),
				IsOpen:              true,
				Category:            "grocery",
			},
			{
				ID:           "store-2",
				Name:         "QuickStop Market",
				Description:  "Convenience store essentials & snacks",
				Image:        imageBase + "photo-1556909114-f6e7ad7d3136?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=200",
				Rating:       money("4.6"),
				DeliveryTime: "25-35 min",
				DeliveryFee:  money("2.99"),
				IsOpen:       true,
				Category:     "convenience",
			},
		},
		Products: []catalog.Product{
			product("product-1", "store-1", "Organic Bananas", "1 bunch (6-8 pieces)", "photo-1571771894821-ce9b6c11b08e", "2.99", "produce"),
			product("product-2", "store-1", "Whole Milk", "1 gallon", "photo-1550583724-b2692b85b150", "4.49", "dairy"),
			product("product-3", "store-1", "Whole Grain Bread", "1 loaf", "photo-1586444248902-2f64eddc13df", "3.79", "bakery"),
			product("product-4", "store-1", "Farm Fresh Eggs", "12 count", "photo-1482049016688-2d3e1b311543", "5.99", "dairy"),
			product("product-5", "store-1", "Fresh Apples", "1 lb bag", "photo-1560806887-1e4cd0b6cbd6", "3.49", "produce"),
			product("product-6", "store-2", "Bananas", "1 bunch (6-8 pieces)", "photo-1571771894821-ce9b6c11b08e", "3.29", "produce"),
			product("product-7", "store-2", "Milk", "1 gallon", "photo-1550583724-b2692b85b150", "4.79", "dairy"),
			product("product-8", "store-2", "White Bread", "1 loaf", "photo-1586444248902-2f64eddc13df", "2.99", "bakery"),
			product("product-9", "store-2", "Large Eggs", "12 count", "photo-1482049016688-2d3e1b311543", "5.49", "dairy"),
			product("product-10", "store-2", "Red Apples", "1 lb bag", "photo-1560806887-1e4cd0b6cbd6", "3.99", "produce"),
			product("product-11", "store-2", "Instant Coffee", "8 oz jar", "photo-1497935586351-b67a49e012bf", "6.99", "pantry"),
			product("product-12", "store-2", "Potato Chips", "Family size bag", "photo-1566478989037-eec170784d0b", "4.29", "snacks"),
		},
		Orders: []order.Order{
			{
				ID:        "order-1",
				StoreID:   "store-1",
				StoreName: "FreshMart Grocery",
				Items: []order.Line{
					line("Bananas", "2.99"),
					line("Milk", "4.49"),
					line("Bread", "3.79"),
					line("Eggs", "5.99"),
				},
				Total:           money("21.25"),
				Status:          order.StatusDelivered,
				DeliveryAddress: "123 Main St, City",
				CreatedAt:       now.Add(-24 * time.Hour),
			},
			{
				ID:        "order-2",
				StoreID:   "store-2",
				StoreName: "QuickStop Market",
				Items: []order.Line{
					line("Coffee", "3.99"),
					line("Chips", "2.49"),
					line("Sandwich", "6.99"),
				},
				Total:           money("16.46"),
				Status:          order.StatusInTransit,
				DeliveryAddress: "123 Main St, City",
				CreatedAt:       now.Add(-2 * time.Hour),
			},
		},
	}
}
