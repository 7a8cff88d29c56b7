// Package db owns the connection lifecycle for the relational store and the
// bootstrap schema. Two backends are supported: PostgreSQL through pgxpool,
// and SQLite through sqlx on the pure-Go modernc driver.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultTimeout = 5 * time.Second
)

// Gateway is the handle passed explicitly to every repository. Exactly one
// of PG and SQL is set.
type Gateway struct {
	Driver  string
	PG      *pgxpool.Pool
	SQL     *sqlx.DB
	Timeout time.Duration
}

// Open connects to the backend named by driver.
func Open(ctx context.Context, driver, dsn string, timeout time.Duration) (*Gateway, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	switch driver {
	case DriverPostgres:
		pool, err := ConnectPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &Gateway{Driver: DriverPostgres, PG: pool, Timeout: timeout}, nil
	case DriverSQLite, "":
		sdb, err := OpenSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return &Gateway{Driver: DriverSQLite, SQL: sdb, Timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("db: unsupported DB_DRIVER %q (supported: postgres, sqlite)", driver)
	}
}

func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("db: parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: ping postgres: %w", err)
	}
	return pool, nil
}

// OpenSQLite opens path (":memory:" for a private in-memory database).
// SQLite has a single writer, so the pool is pinned to one connection; this
// also keeps an in-memory database alive for the life of the handle.
func OpenSQLite(path string) (*sqlx.DB, error) {
	sdb, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db: open sqlite: %w", err)
	}
	sdb.SetMaxOpenConns(1)
	sdb.SetMaxIdleConns(1)
	sdb.SetConnMaxLifetime(0)
	sdb.SetConnMaxIdleTime(0)

	for _, pragma := range []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
	} {
		if _, err := sdb.Exec(pragma); err != nil {
			_ = sdb.Close()
			return nil, fmt.Errorf("db: %s: %w", pragma, err)
		}
	}
	return sdb, nil
}

func (g *Gateway) Ping(ctx context.Context) error {
	ctx, cancel := g.WithTimeout(ctx)
	defer cancel()
	if g.PG != nil {
		return Classify(g.PG.Ping(ctx), "ping")
	}
	return Classify(g.SQL.PingContext(ctx), "ping")
}

func (g *Gateway) Close() error {
	if g.PG != nil {
		g.PG.Close()
		return nil
	}
	return g.SQL.Close()
}

// WithTimeout bounds ctx by the gateway timeout.
func (g *Gateway) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	t := g.Timeout
	if t <= 0 {
		t = DefaultTimeout
	}
	return context.WithTimeout(ctx, t)
}
