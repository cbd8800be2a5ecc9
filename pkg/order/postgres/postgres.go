package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"quickcart/pkg/database"
	"quickcart/pkg/id"
	"quickcart/pkg/order"
)

const columns = "id,store_id,store_name,items,total,status,delivery_address,created_at"

// Repository persists orders in PostgreSQL. Line snapshots are stored as JSONB
// in the order row.
type Repository struct {
	db    *sql.DB
	newID id.Generator
	now   func() time.Time
}

// New creates a PostgreSQL repository.
func New(db *sql.DB, newID id.Generator, now func() time.Time) *Repository {
	return &Repository{db: db, newID: newID, now: now}
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, no order.NewOrder) (order.Order, error) {
	o, err := no.Build(r.newID(), r.now())
	if err != nil {
		return order.Order{}, err
	}
	if err := insert(ctx, r.db, o, false); err != nil {
		return order.Order{}, database.Classify("create order", err)
	}
	return o, nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (order.Order, bool, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, "SELECT "+columns+" FROM orders WHERE id=$1", id).Scan)
	if err == sql.ErrNoRows {
		return order.Order{}, false, nil
	}
	if err != nil {
		return order.Order{}, false, database.Classify("get order", err)
	}
	return o, true, nil
}

// List fetches all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+columns+" FROM orders ORDER BY created_at DESC, seq DESC")
	if err != nil {
		return nil, database.Classify("list orders", err)
	}
	defer rows.Close()
	orders := make([]order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, database.Classify("scan order", err)
		}
		orders = append(orders, o)
	}
	return orders, database.Classify("list orders", rows.Err())
}

// UpdateStatus updates the status of an existing order.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, bool, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		"UPDATE orders SET status=$2 WHERE id=$1 RETURNING "+columns, id, string(status)).Scan)
	if err == sql.ErrNoRows {
		return order.Order{}, false, nil
	}
	if err != nil {
		return order.Order{}, false, database.Classify("update order status", err)
	}
	return o, true, nil
}

// Seed inserts historical orders, leaving existing ids untouched.
func (r *Repository) Seed(ctx context.Context, orders []order.Order) error {
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return err
		}
		if err := insert(ctx, r.db, o, true); err != nil {
			return database.Classify("seed order "+o.ID, err)
		}
	}
	return nil
}

func insert(ctx context.Context, db *sql.DB, o order.Order, skipExisting bool) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	query := `INSERT INTO orders (` + columns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	if skipExisting {
		query += ` ON CONFLICT (id) DO NOTHING`
	}
	_, err = db.ExecContext(ctx, query,
		o.ID, o.StoreID, o.StoreName, string(items), o.Total, string(o.Status), o.DeliveryAddress, o.CreatedAt)
	return err
}

func scanOrder(scan func(...any) error) (order.Order, error) {
	var (
		o      order.Order
		items  []byte
		status string
	)
	if err := scan(&o.ID, &o.StoreID, &o.StoreName, &items, &o.Total, &status, &o.DeliveryAddress, &o.CreatedAt); err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	o.Status = order.Status(status)
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}
