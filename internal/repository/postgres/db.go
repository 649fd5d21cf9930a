package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// InitDB opens the connection pool, verifies it and applies the schema.
func InitDB(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS businesses (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			whatsapp_number TEXT NOT NULL UNIQUE,
			whatsapp_number_id TEXT UNIQUE,
			business_type TEXT NOT NULL DEFAULT '',
			personality_description TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			business_id BIGINT NOT NULL REFERENCES businesses(id),
			phone_number TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			UNIQUE (business_id, phone_number)
		);

		CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			business_id BIGINT NOT NULL REFERENCES businesses(id),
			sku TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			unit TEXT NOT NULL DEFAULT 'piece',
			price NUMERIC(12,2),
			stock INT NOT NULL DEFAULT 0,
			availability_status TEXT NOT NULL DEFAULT 'UNCONFIRMED',
			UNIQUE (business_id, sku)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			business_id BIGINT NOT NULL REFERENCES businesses(id),
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			status TEXT NOT NULL DEFAULT 'pending',
			total_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS orders_pending_cart_idx
			ON orders (business_id, customer_id) WHERE status = 'pending';

		CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL REFERENCES orders(id),
			product_id BIGINT NOT NULL REFERENCES products(id),
			quantity NUMERIC(12,3) NOT NULL,
			unit TEXT NOT NULL DEFAULT 'piece',
			price_at_purchase NUMERIC(12,2) NOT NULL,
			UNIQUE (order_id, product_id)
		);

		CREATE EXTENSION IF NOT EXISTS pgcrypto;
		CREATE SCHEMA IF NOT EXISTS secure_storage;

		CREATE TABLE IF NOT EXISTS secure_storage.business_whatsapp_credentials (
			business_id BIGINT PRIMARY KEY REFERENCES businesses(id),
			whatsapp_phone_number_id TEXT NOT NULL UNIQUE,
			encrypted_token BYTEA NOT NULL
		);

		CREATE OR REPLACE FUNCTION secure_storage.get_decrypted_whatsapp_token(
			p_business_id BIGINT, p_key TEXT
		) RETURNS TEXT AS $$
			SELECT pgp_sym_decrypt(encrypted_token, p_key)
			FROM secure_storage.business_whatsapp_credentials
			WHERE business_id = p_business_id
		$$ LANGUAGE sql STABLE;
	`)
	return err
}
