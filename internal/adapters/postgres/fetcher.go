// Package postgres resolves product variants from the catalog database.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nimafallahian/variant-publisher/internal/domain"
)

// Querier is the subset of pgxpool.Pool used by VariantFetcher.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// VariantFetcher implements ports.VariantFetcher against a table holding one
// row per variant with columns id (text) and option_values (text[]).
type VariantFetcher struct {
	db    Querier
	query string
}

// NewVariantFetcher constructs a VariantFetcher reading from table, which
// may be schema qualified.
func NewVariantFetcher(db Querier, table string) (*VariantFetcher, error) {
	if db == nil {
		return nil, fmt.Errorf("db must not be nil")
	}
	if table == "" {
		return nil, fmt.Errorf("table must not be empty")
	}
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()
	query := `SELECT id, COALESCE(option_values, '{}') FROM ` + ident + `
		WHERE id = ANY($1::text[])
		ORDER BY array_position($1::text[], id)`
	return &VariantFetcher{db: db, query: query}, nil
}

// FetchVariants returns the variants for entityIDs in request order. Ids
// with no row are omitted.
func (f *VariantFetcher) FetchVariants(ctx context.Context, entityIDs []string) ([]domain.VariantRecord, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}

	rows, err := f.db.Query(ctx, f.query, entityIDs)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	variants := make([]domain.VariantRecord, 0, len(entityIDs))
	for rows.Next() {
		var v domain.VariantRecord
		if err := rows.Scan(&v.ID, &v.OptionValues); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}

	return variants, nil
}

// NewPool creates a connection pool for the catalog database and verifies
// it with a ping.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
