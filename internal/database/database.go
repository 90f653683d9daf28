// Package database connects the order store and manages its schema.
package database

import (
	"context"
	"fmt"

	"orderkit/internal/config"
	"orderkit/pkg/querier"
)

// Connect opens a pgx pool from the loaded configuration.
func Connect(ctx context.Context, cfg config.DBConfig) (*querier.DB, error) {
	return querier.Connect(ctx, &querier.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Database: cfg.Database,
		User:     cfg.User,
		Password: cfg.Password,
		SSLMode:  cfg.SSLMode,
		MaxConns: cfg.MaxConns,
		MinConns: cfg.MinConns,
	})
}

// schema holds the DDL in dependency order. Items use a single table for
// all variants: the kind column discriminates, variant payload columns are
// nullable. order_items and deliveries live and die with their order.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS members (
		member_id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		zipcode TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_members_name ON members (name)`,

	`CREATE TABLE IF NOT EXISTS items (
		item_id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL CHECK (kind IN ('book', 'album')),
		name TEXT NOT NULL,
		price INTEGER NOT NULL,
		stock_quantity INTEGER NOT NULL CHECK (stock_quantity >= 0),
		author TEXT,
		isbn TEXT,
		artist TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS deliveries (
		delivery_id BIGSERIAL PRIMARY KEY,
		city TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL DEFAULT '',
		zipcode TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'READY'
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		order_id BIGSERIAL PRIMARY KEY,
		member_id BIGINT NOT NULL REFERENCES members (member_id),
		delivery_id BIGINT NOT NULL REFERENCES deliveries (delivery_id),
		order_date TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL DEFAULT 'ORDERED'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_member ON orders (member_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		order_item_id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders (order_id) ON DELETE CASCADE,
		item_id BIGINT NOT NULL REFERENCES items (item_id),
		order_price INTEGER NOT NULL,
		count INTEGER NOT NULL CHECK (count > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,

	`CREATE TABLE IF NOT EXISTS categories (
		category_id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id BIGINT REFERENCES categories (category_id)
	)`,

	`CREATE TABLE IF NOT EXISTS category_items (
		category_id BIGINT NOT NULL REFERENCES categories (category_id) ON DELETE CASCADE,
		item_id BIGINT NOT NULL REFERENCES items (item_id) ON DELETE CASCADE,
		PRIMARY KEY (category_id, item_id)
	)`,
}

// Migrate applies the schema. Every statement is idempotent, so running it
// against an existing database is safe.
func Migrate(ctx context.Context, db *querier.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
