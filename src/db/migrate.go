package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bank_accounts (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		account_type TEXT NOT NULL DEFAULT '',
		number TEXT NOT NULL DEFAULT '',
		export_date DATE,
		initial_balance DOUBLE PRECISION NOT NULL DEFAULT 0,
		balance_date DATE
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		favorite BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS subcategories (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		favorite BOOLEAN NOT NULL DEFAULT FALSE,
		category_id INTEGER NOT NULL REFERENCES categories(id)
	)`,
	`CREATE TABLE IF NOT EXISTS rules (
		id SERIAL PRIMARY KEY,
		pattern TEXT NOT NULL,
		category_id INTEGER NOT NULL REFERENCES categories(id),
		subcategory_id INTEGER REFERENCES subcategories(id)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id SERIAL PRIMARY KEY,
		date DATE NOT NULL,
		tx_type TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL DEFAULT '',
		label TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL,
		account_id INTEGER REFERENCES bank_accounts(id),
		favorite BOOLEAN NOT NULL DEFAULT FALSE,
		category_id INTEGER REFERENCES categories(id),
		subcategory_id INTEGER REFERENCES subcategories(id),
		reconciled BOOLEAN NOT NULL DEFAULT FALSE,
		to_analyze BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_dedup ON transactions (date, label, amount, account_id)`,
}

// Migrate creates the schema on startup. Statements are idempotent so a
// restart against an existing database is a no-op.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
