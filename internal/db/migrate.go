package db

import (
	"context"
	"embed"
	"fmt"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies the bootstrap schema. Every statement is idempotent, so it
// is safe to run on each start.
func (g *Gateway) Migrate(ctx context.Context) error {
	name := "schema/sqlite.sql"
	if g.PG != nil {
		name = "schema/postgres.sql"
	}
	ddl, err := schemaFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("db: read %s: %w", name, err)
	}
	if g.PG != nil {
		_, err = g.PG.Exec(ctx, string(ddl))
	} else {
		_, err = g.SQL.ExecContext(ctx, string(ddl))
	}
	if err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}

// Stats are the row counts reported by the status endpoint.
type Stats struct {
	Users    int64 `json:"users"`
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
}

func (g *Gateway) Stats(ctx context.Context) (Stats, error) {
	ctx, cancel := g.WithTimeout(ctx)
	defer cancel()

	const q = `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM products),
		(SELECT COUNT(*) FROM orders)`
	var s Stats
	var err error
	if g.PG != nil {
		err = g.PG.QueryRow(ctx, q).Scan(&s.Users, &s.Products, &s.Orders)
	} else {
		err = g.SQL.QueryRowContext(ctx, q).Scan(&s.Users, &s.Products, &s.Orders)
	}
	return s, Classify(err, "stats")
}
