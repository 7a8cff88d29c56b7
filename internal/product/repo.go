// Package product provides the catalog: repository interface with
// PostgreSQL and SQLite implementations, a read-through cache, and the
// catalog service.
package product

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/db"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

type Query struct {
	Limit  int
	Offset int
}

// normalize applies the paging rules shared by every backend.
func (q Query) normalize() Query {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Count(ctx context.Context) (int64, error)
}

func NewRepo(g *db.Gateway) Repository {
	if g.PG != nil {
		return NewPGRepo(g.PG, g.Timeout)
	}
	return NewSQLiteRepo(g.SQL, g.Timeout)
}

type PGRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPGRepo(pool *pgxpool.Pool, timeout time.Duration) *PGRepo {
	if timeout <= 0 {
		timeout = db.DefaultTimeout
	}
	return &PGRepo{db: pool, timeout: timeout}
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, description, price, stock, category, created_at)
		VALUES ($1,$2,$3,$4::numeric,$5,$6,NOW())
		RETURNING created_at
	`, p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.Category).Scan(&p.CreatedAt)
	return db.Classify(err, "create product")
}

const pgSelectProduct = `
	SELECT id::text, name, description, price::text, stock, category, created_at
	FROM products`

type scanner interface {
	Scan(dest ...any) error
}

func scanPG(row scanner) (*Product, error) {
	var p Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Stock, &p.Category, &p.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "decode price")
	}
	p.Price = d
	return &p, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	p, err := scanPG(r.db.QueryRow(ctx, pgSelectProduct+` WHERE id=$1`, id))
	if err != nil {
		return nil, db.Classify(err, "get product")
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q = q.normalize()
	rows, err := r.db.Query(ctx, pgSelectProduct+`
		ORDER BY seq
		LIMIT $1 OFFSET $2
	`, q.Limit, q.Offset)
	if err != nil {
		return nil, db.Classify(err, "list products")
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanPG(rows)
		if err != nil {
			return nil, db.Classify(err, "list products")
		}
		out = append(out, *p)
	}
	return out, db.Classify(rows.Err(), "list products")
}

func (r *PGRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, db.Classify(err, "count products")
}
