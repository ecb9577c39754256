// Package db provides a pgxpool-based connection pool with prepared statement
// registration and goose migrations for the document store.
package db

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/elodex/catalog/internal/config"
)

// Statement names registered on every connection.
const (
	StmtCatalogUpsert = "catalog_upsert"
	StmtCatalogCount  = "catalog_count"
)

//go:embed migrations/*.sql
var migrations embed.FS

// UpsertSQL merges a document into any existing row: keys present in the
// new document win, keys only in the stored one survive.
const UpsertSQL = `
INSERT INTO ` + config.DocumentsTable + ` (kind, id, doc, run_id, updated_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (kind, id) DO UPDATE SET
	doc = ` + config.DocumentsTable + `.doc || EXCLUDED.doc,
	run_id = EXCLUDED.run_id,
	updated_at = NOW()`

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New migrates the schema, then creates and validates a new connection pool.
// Migrations run first because preparing statements needs the table.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	if err := migrate(ctx, poolCfg.ConnConfig); err != nil {
		return nil, err
	}

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// CountByKind returns how many documents of kind are stored.
func (p *Pool) CountByKind(ctx context.Context, kind string) (int, error) {
	var n int
	if err := p.QueryRow(ctx, StmtCatalogCount, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s documents: %w", kind, err)
	}
	return n, nil
}

// migrate applies the embedded goose migrations over a short-lived
// database/sql handle.
func migrate(ctx context.Context, connCfg *pgx.ConnConfig) error {
	sqlDB := stdlib.OpenDB(*connCfg)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// registerPreparedStatements registers all statements the publish path uses.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		StmtCatalogUpsert: UpsertSQL,
		StmtCatalogCount:  "SELECT COUNT(*) FROM " + config.DocumentsTable + " WHERE kind = $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
