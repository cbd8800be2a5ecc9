package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"quickcart/pkg/apperr"
	"quickcart/pkg/numeric"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// next lists the forward step of every non-terminal status.
var next = map[Status]Status{
	StatusPending:   StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusInTransit,
	StatusInTransit: StatusDelivered,
}

// Known reports whether s is one of the recognised statuses.
func (s Status) Known() bool {
	_, ok := next[s]
	return ok || s == StatusDelivered || s == StatusCancelled
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether the usual progression allows moving from one
// status to another: one step forward, or cancellation of a non-terminal order.
// Repository.UpdateStatus does not consult it.
func CanTransition(from, to Status) bool {
	if !from.Known() || from.Terminal() {
		return false
	}
	return to == StatusCancelled || next[from] == to
}

// Line is a snapshot of one purchased product taken when the order was placed.
type Line struct {
	ProductID string          `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order represents a customer purchase order. Only Status changes after creation.
type Order struct {
	ID              string          `json:"id"`
	StoreID         string          `json:"storeId"`
	StoreName       string          `json:"storeName"`
	Items           []Line          `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	DeliveryAddress string          `json:"deliveryAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// NewOrder is the input for creating an order. Total is stored as given; the
// caller has already added line subtotals and fees. An empty Status means pending.
type NewOrder struct {
	StoreID         string          `json:"storeId"`
	StoreName       string          `json:"storeName"`
	Items           []Line          `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          Status          `json:"status"`
	DeliveryAddress string          `json:"deliveryAddress"`
}

// Repository defines behavior for persisting orders.
type Repository interface {
	// List returns all orders, most recent first.
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, bool, error)
	Create(ctx context.Context, no NewOrder) (Order, error)
	// UpdateStatus overwrites the status with any value, empty included.
	UpdateStatus(ctx context.Context, id string, status Status) (Order, bool, error)
	// Seed inserts historical orders with their ids and timestamps as given,
	// skipping ids that already exist.
	Seed(ctx context.Context, orders []Order) error
}

// Build validates no and returns the Order it describes.
func (no NewOrder) Build(id string, createdAt time.Time) (Order, error) {
	o := Order{
		ID:              id,
		StoreID:         no.StoreID,
		StoreName:       no.StoreName,
		Items:           CloneLines(no.Items),
		Total:           no.Total,
		Status:          no.Status,
		DeliveryAddress: no.DeliveryAddress,
		CreatedAt:       createdAt,
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	return o, o.Validate()
}

// Validate checks the field constraints of an order.
func (o Order) Validate() error {
	switch {
	case strings.TrimSpace(o.ID) == "":
		return apperr.Invalid("id", "is required")
	case strings.TrimSpace(o.StoreID) == "":
		return apperr.Invalid("storeId", "is required")
	case strings.TrimSpace(o.StoreName) == "":
		return apperr.Invalid("storeName", "is required")
	case strings.TrimSpace(o.DeliveryAddress) == "":
		return apperr.Invalid("deliveryAddress", "is required")
	case len(o.Items) == 0:
		return apperr.Invalid("items", "must contain at least one line")
	case o.Status == "":
		return apperr.Invalid("status", "is required")
	}
	if err := numeric.Amount("total", o.Total, numeric.MaxTotal); err != nil {
		return err
	}
	for _, l := range o.Items {
		if strings.TrimSpace(l.Name) == "" {
			return apperr.Invalid("items.name", "is required")
		}
		if err := numeric.Quantity("items.quantity", l.Quantity); err != nil {
			return err
		}
		if err := numeric.Amount("items.price", l.Price, numeric.MaxPrice); err != nil {
			return err
		}
	}
	return nil
}

// CloneLines copies lines so the caller's slice cannot alter a stored snapshot.
func CloneLines(lines []Line) []Line {
	if lines == nil {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// Clone returns a copy of o that shares no memory with it.
func (o Order) Clone() Order {
	o.Items = CloneLines(o.Items)
	return o
}

// Now is the timestamp source used for new orders. Postgres keeps microsecond
// precision, so both backends truncate to it.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
