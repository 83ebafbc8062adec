// Package database keeps a per-run history of scored results in
// PostgreSQL for later inspection. The store is optional; runs work
// without it.
package database

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"marketscan/models"
)

// DB represents a database connection.
type DB struct {
	*sql.DB
}

// New opens a connection using a PostgreSQL DSN and ensures the
// history tables exist.
func New(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scan_runs (
			id BIGSERIAL PRIMARY KEY,
			asset_class TEXT NOT NULL,
			run_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			matched INT NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scan_results (
			run_id BIGINT NOT NULL REFERENCES scan_runs(id) ON DELETE CASCADE,
			symbol TEXT NOT NULL,
			score INT NOT NULL,
			message TEXT NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			stop_loss DOUBLE PRECISION NOT NULL,
			take_profit DOUBLE PRECISION NOT NULL,
			position_size TEXT NOT NULL
		)
	`)
	return err
}

// RecordRun appends one completed run and its results.
func (db *DB) RecordRun(ctx context.Context, class models.AssetClass, results []models.ScoredAsset) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var runID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO scan_runs (asset_class, matched) VALUES ($1, $2) RETURNING id
	`, string(class), len(results)).Scan(&runID)
	if err != nil {
		return err
	}

	for _, r := range results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scan_results (run_id, symbol, score, message, price, stop_loss, take_profit, position_size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, runID, r.Symbol, r.Score, r.Message, r.Price, r.Risk.StopLoss, r.Risk.TakeProfit, r.Risk.PositionSize)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}
