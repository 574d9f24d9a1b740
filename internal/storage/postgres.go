package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/eugenenazirov/shelf-planner/internal/shelving"
)

const catalogSchema = `
	CREATE TABLE IF NOT EXISTS catalog_items (
		id       TEXT PRIMARY KEY,
		title    TEXT NOT NULL,
		weight   DOUBLE PRECISION NOT NULL CHECK (weight >= 0),
		value    DOUBLE PRECISION NOT NULL CHECK (value >= 0),
		position INTEGER NOT NULL
	)
`

// PostgresCatalog persists catalog items in PostgreSQL, preserving their order.
type PostgresCatalog struct {
	db *sql.DB
}

// OpenPostgres opens and pings a PostgreSQL connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresCatalog constructs a PostgreSQL-backed catalog.
func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// EnsureSchema creates the catalog table when it does not exist.
func (c *PostgresCatalog) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, catalogSchema); err != nil {
		return fmt.Errorf("create catalog schema: %w", err)
	}
	return nil
}

// Items returns the catalog in insertion order.
func (c *PostgresCatalog) Items(ctx context.Context) ([]shelving.Item, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, title, weight, value FROM catalog_items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	items := []shelving.Item{}
	for rows.Next() {
		var item shelving.Item
		if err := rows.Scan(&item.ID, &item.Title, &item.Weight, &item.Value); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return items, nil
}

// Replace swaps the whole catalog in one transaction using COPY.
func (c *PostgresCatalog) Replace(ctx context.Context, items []shelving.Item) error {
	normalized, err := NormalizeItems(items)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_items`); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("catalog_items", "id", "title", "weight", "value", "position"))
	if err != nil {
		return fmt.Errorf("prepare catalog copy: %w", err)
	}
	for pos, item := range normalized {
		if _, err := stmt.ExecContext(ctx, item.ID, item.Title, item.Weight, item.Value, pos); err != nil {
			_ = stmt.Close()
			return fmt.Errorf("copy catalog item %q: %w", item.ID, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return fmt.Errorf("flush catalog copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close catalog copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog replace: %w", err)
	}
	return nil
}
