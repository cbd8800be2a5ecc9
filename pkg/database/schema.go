package database

// Schema mirrors the four commerce entities. The seq columns keep listings in
// insertion order; ids are generated by the application.
const Schema = `
CREATE TABLE IF NOT EXISTS stores (
	id                    TEXT PRIMARY KEY,
	seq                   BIGSERIAL,
	name                  TEXT NOT NULL,
	description           TEXT NOT NULL DEFAULT '',
	image                 TEXT NOT NULL DEFAULT '',
	rating                NUMERIC(2,1) NOT NULL DEFAULT 0,
	delivery_time         TEXT NOT NULL DEFAULT '',
	delivery_fee          NUMERIC(6,2) NOT NULL DEFAULT 0,
	free_delivery_minimum NUMERIC(6,2),
	is_open               BOOLEAN NOT NULL DEFAULT TRUE,
	category              TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	seq         BIGSERIAL,
	store_id    TEXT NOT NULL REFERENCES stores(id),
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image       TEXT NOT NULL DEFAULT '',
	price       NUMERIC(8,2) NOT NULL CHECK (price >= 0),
	category    TEXT NOT NULL DEFAULT '',
	in_stock    BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS products_store_id_idx ON products (store_id);

CREATE TABLE IF NOT EXISTS orders (
	id               TEXT PRIMARY KEY,
	seq              BIGSERIAL,
	store_id         TEXT NOT NULL REFERENCES stores(id),
	store_name       TEXT NOT NULL,
	items            JSONB NOT NULL,
	total            NUMERIC(10,2) NOT NULL,
	status           TEXT NOT NULL,
	delivery_address TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS cart_items (
	id         TEXT PRIMARY KEY,
	seq        BIGSERIAL,
	product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	quantity   INT NOT NULL CHECK (quantity >= 1),
	session_id TEXT NOT NULL,
	UNIQUE (session_id, product_id)
);
`
