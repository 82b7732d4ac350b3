package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	// Monetary amounts and rates are stored as TEXT and round-tripped
	// through shopspring/decimal so no precision is lost in REAL columns.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS order_records (
			order_id TEXT PRIMARY KEY,
			product_name TEXT NOT NULL DEFAULT '',
			purchase_cost_local TEXT,
			settlement_amount_reserve TEXT,
			settlement_amount_local TEXT,
			net_profit_reserve TEXT,
			net_profit_local TEXT,
			is_cancelled INTEGER NOT NULL DEFAULT 0,
			is_return INTEGER NOT NULL DEFAULT 0,
			order_date DATETIME,
			delivery_date DATETIME,
			profit_calculated_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_records_delivery ON order_records(delivery_date)`,
		`CREATE INDEX IF NOT EXISTS idx_order_records_created ON order_records(created_at)`,

		`CREATE TABLE IF NOT EXISTS monthly_summaries (
			seller TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			id TEXT NOT NULL,
			processed INTEGER NOT NULL,
			skipped_no_purchase_cost INTEGER NOT NULL,
			skipped_return INTEGER NOT NULL,
			cancelled INTEGER NOT NULL,
			total_profit_reserve TEXT NOT NULL,
			total_profit_local TEXT NOT NULL,
			cancelled_loss_reserve TEXT NOT NULL,
			cancelled_loss_local TEXT NOT NULL,
			details TEXT NOT NULL,
			generated_at DATETIME NOT NULL,
			PRIMARY KEY (seller, year, month)
		)`,

		`CREATE TABLE IF NOT EXISTS rate_samples (
			pair TEXT NOT NULL,
			date TEXT NOT NULL,
			rate TEXT NOT NULL,
			source TEXT NOT NULL,
			fetched_at DATETIME NOT NULL,
			PRIMARY KEY (pair, date)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}

	return nil
}
