package postgres

import (
	"context"
	"database/sql"

	"quickcart/pkg/catalog"
	"quickcart/pkg/database"
	"quickcart/pkg/id"
)

const (
	storeColumns   = "id,name,description,image,rating,delivery_time,delivery_fee,free_delivery_minimum,is_open,category"
	productColumns = "id,store_id,name,description,image,price,category,in_stock"
)

// Repository persists the catalog in PostgreSQL.
type Repository struct {
	db    *sql.DB
	newID id.Generator
}

// New creates a PostgreSQL repository. The schema in database.Schema must exist.
func New(db *sql.DB, newID id.Generator) *Repository {
	return &Repository{db: db, newID: newID}
}

// ListStores fetches all stores.
func (r *Repository) ListStores(ctx context.Context) ([]catalog.Store, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+storeColumns+" FROM stores ORDER BY seq")
	if err != nil {
		return nil, database.Classify("list stores", err)
	}
	defer rows.Close()
	stores := make([]catalog.Store, 0)
	for rows.Next() {
		s, err := scanStore(rows.Scan)
		if err != nil {
			return nil, database.Classify("scan store", err)
		}
		stores = append(stores, s)
	}
	return stores, database.Classify("list stores", rows.Err())
}

// GetStore retrieves a store by ID.
func (r *Repository) GetStore(ctx context.Context, id string) (catalog.Store, bool, error) {
	s, err := scanStore(r.db.QueryRowContext(ctx, "SELECT "+storeColumns+" FROM stores WHERE id=$1", id).Scan)
	if err == sql.ErrNoRows {
		return catalog.Store{}, false, nil
	}
	if err != nil {
		return catalog.Store{}, false, database.Classify("get store", err)
	}
	return s, true, nil
}

// CreateStore inserts a new store.
func (r *Repository) CreateStore(ctx context.Context, ns catalog.NewStore) (catalog.Store, error) {
	s, err := ns.Build(r.newID())
	if err != nil {
		return catalog.Store{}, err
	}
	if err := insertStore(ctx, r.db, s); err != nil {
		return catalog.Store{}, database.Classify("create store", err)
	}
	return s, nil
}

// ListProducts fetches all products.
func (r *Repository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return r.queryProducts(ctx, "list products", "SELECT "+productColumns+" FROM products ORDER BY seq")
}

// ProductsByStore fetches the products of one store.
func (r *Repository) ProductsByStore(ctx context.Context, storeID string) ([]catalog.Product, error) {
	return r.queryProducts(ctx, "products by store",
		"SELECT "+productColumns+" FROM products WHERE store_id=$1 ORDER BY seq", storeID)
}

// SearchProducts matches query against name, description and category,
// ignoring case. strpos keeps % and _ in the query literal.
func (r *Repository) SearchProducts(ctx context.Context, query string) ([]catalog.Product, error) {
	return r.queryProducts(ctx, "search products", `
		SELECT `+productColumns+` FROM products
		WHERE strpos(lower(name), lower($1)) > 0
		   OR strpos(lower(description), lower($1)) > 0
		   OR strpos(lower(category), lower($1)) > 0
		ORDER BY seq`, query)
}

// GetProduct retrieves a product by ID.
func (r *Repository) GetProduct(ctx context.Context, id string) (catalog.Product, bool, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id=$1", id).Scan)
	if err == sql.ErrNoRows {
		return catalog.Product{}, false, nil
	}
	if err != nil {
		return catalog.Product{}, false, database.Classify("get product", err)
	}
	return p, true, nil
}

// CreateProduct inserts a new product. An unknown store id is rejected by the
// foreign key and surfaces as a validation error.
func (r *Repository) CreateProduct(ctx context.Context, np catalog.NewProduct) (catalog.Product, error) {
	p, err := np.Build(r.newID())
	if err != nil {
		return catalog.Product{}, err
	}
	if err := insertProduct(ctx, r.db, p); err != nil {
		return catalog.Product{}, database.Classify("create product", err)
	}
	return p, nil
}

// ReplaceProduct overwrites an existing product.
func (r *Repository) ReplaceProduct(ctx context.Context, p catalog.Product) (catalog.Product, bool, error) {
	if err := p.Validate(); err != nil {
		return catalog.Product{}, false, err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET store_id=$2, name=$3, description=$4, image=$5, price=$6, category=$7, in_stock=$8
		WHERE id=$1`,
		p.ID, p.StoreID, p.Name, p.Description, p.Image, p.Price, p.Category, p.InStock)
	if err != nil {
		return catalog.Product{}, false, database.Classify("replace product", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return catalog.Product{}, false, nil
	}
	return p, true, nil
}

// Seed inserts the given records in one transaction when the stores table is empty.
func (r *Repository) Seed(ctx context.Context, stores []catalog.Store, products []catalog.Product) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, database.Classify("seed catalog", err)
	}
	defer tx.Rollback()

	// Serialises concurrent seeders on a fresh database.
	if _, err := tx.ExecContext(ctx, "LOCK TABLE stores IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return false, database.Classify("seed catalog", err)
	}
	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM stores").Scan(&count); err != nil {
		return false, database.Classify("seed catalog", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, s := range stores {
		if err := s.Validate(); err != nil {
			return false, err
		}
		if err := insertStore(ctx, tx, s); err != nil {
			return false, database.Classify("seed store "+s.ID, err)
		}
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return false, err
		}
		if err := insertProduct(ctx, tx, p); err != nil {
			return false, database.Classify("seed product "+p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, database.Classify("seed catalog", err)
	}
	return true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertStore(ctx context.Context, db execer, s catalog.Store) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO stores (`+storeColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.Name, s.Description, s.Image, s.Rating, s.DeliveryTime,
		s.DeliveryFee, s.FreeDeliveryMinimum, s.IsOpen, s.Category)
	return err
}

func insertProduct(ctx context.Context, db execer, p catalog.Product) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.StoreID, p.Name, p.Description, p.Image, p.Price, p.Category, p.InStock)
	return err
}

func (r *Repository) queryProducts(ctx context.Context, op, query string, args ...any) ([]catalog.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.Classify(op, err)
	}
	defer rows.Close()
	products := make([]catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, database.Classify(op, err)
		}
		products = append(products, p)
	}
	return products, database.Classify(op, rows.Err())
}

func scanStore(scan func(...any) error) (catalog.Store, error) {
	var s catalog.Store
	err := scan(&s.ID, &s.Name, &s.Description, &s.Image, &s.Rating, &s.DeliveryTime,
		&s.DeliveryFee, &s.FreeDeliveryMinimum, &s.IsOpen, &s.Category)
	return s, err
}

func scanProduct(scan func(...any) error) (catalog.Product, error) {
	var p catalog.Product
	err := scan(&p.ID, &p.StoreID, &p.Name, &p.Description, &p.Image, &p.Price, &p.Category, &p.InStock)
	return p, err
}
