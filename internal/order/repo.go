// Package order places orders against the catalog and reads them back for
// their owner. Placement is a single transaction that inserts the order and
// its lines and decrements stock with a guarded update.
package order

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/db"
)

type Repository interface {
	// Place persists o and its lines and reserves stock, all or nothing.
	Place(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	GetForUser(ctx context.Context, userID, id string) (*Order, error)
	LinesFor(ctx context.Context, orderIDs ...string) (map[string][]Line, error)
	Count(ctx context.Context) (int64, error)
}

func NewRepo(g *db.Gateway) Repository {
	if g.PG != nil {
		return NewPGRepo(g.PG, g.Timeout)
	}
	return NewSQLiteRepo(g.SQL, g.Timeout)
}

type reservation struct {
	productID string
	quantity  int
}

// reservations sums quantities per product in a stable id order so that
// concurrent transactions lock rows in the same sequence.
func reservations(lines []Line) []reservation {
	sum := lo.Reduce(lines, func(acc map[string]int, l Line, _ int) map[string]int {
		acc[l.ProductID] += l.Quantity
		return acc
	}, map[string]int{})
	out := lo.MapToSlice(sum, func(id string, q int) reservation { return reservation{id, q} })
	sort.Slice(out, func(i, j int) bool { return out[i].productID < out[j].productID })
	return out
}

func exhausted(productID string) error {
	return &apperr.Error{
		Kind:      apperr.Conflict,
		Msg:       "stock changed while placing the order, please retry",
		ProductID: productID,
	}
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

func (r *PGRepo) Place(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return db.Classify(err, "begin order")
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, total, status, created_at)
		VALUES ($1,$2,$3::numeric,$4,NOW())
		RETURNING created_at
	`, o.ID, o.UserID, o.Total.StringFixed(2), o.Status).Scan(&o.CreatedAt); err != nil {
		return db.Classify(err, "insert order")
	}

	for _, l := range o.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, line_no, product_id, quantity, unit_price, line_total)
			VALUES ($1,$2,$3,$4,$5,$6::numeric,$7::numeric)
		`, l.ID, o.ID, l.LineNo, l.ProductID, l.Quantity, l.UnitPrice.StringFixed(2), l.LineTotal.StringFixed(2)); err != nil {
			return db.Classify(err, "insert order line")
		}
	}

	for _, res := range reservations(o.Lines) {
		tag, err := tx.Exec(ctx, `
			UPDATE products SET stock = stock - $2
			WHERE id = $1 AND stock >= $2
		`, res.productID, res.quantity)
		if err != nil {
			return db.Classify(err, "reserve stock")
		}
		if tag.RowsAffected() == 0 {
			return exhausted(res.productID)
		}
	}

	return db.Classify(tx.Commit(ctx), "commit order")
}

const pgSelectOrder = `
	SELECT id::text, user_id::text, total::text, status, created_at
	FROM orders`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var total string
	if err := row.Scan(&o.ID, &o.UserID, &total, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "decode order total")
	}
	o.Total = d
	return &o, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, pgSelectOrder+`
		WHERE user_id = $1
		ORDER BY seq
	`, userID)
	if err != nil {
		return nil, db.Classify(err, "list orders")
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, db.Classify(err, "list orders")
		}
		out = append(out, *o)
	}
	return out, db.Classify(rows.Err(), "list orders")
}

func (r *PGRepo) GetForUser(ctx context.Context, userID, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, pgSelectOrder+` WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, db.Classify(err, "get order")
	}
	return o, nil
}

func (r *PGRepo) LinesFor(ctx context.Context, orderIDs ...string) (map[string][]Line, error) {
	out := map[string][]Line{}
	if len(orderIDs) == 0 {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id::text, order_id::text, line_no, product_id::text, quantity, unit_price::text, line_total::text
		FROM order_items
		WHERE order_id = ANY(string_to_array($1, ',')::uuid[])
		ORDER BY order_id, line_no
	`, strings.Join(orderIDs, ","))
	if err != nil {
		return nil, db.Classify(err, "list order lines")
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		var unit, total string
		if err := rows.Scan(&l.ID, &l.OrderID, &l.LineNo, &l.ProductID, &l.Quantity, &unit, &total); err != nil {
			return nil, db.Classify(err, "list order lines")
		}
		if l.UnitPrice, err = decimal.NewFromString(unit); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "decode unit price")
		}
		if l.LineTotal, err = decimal.NewFromString(total); err != nil {
			return nil, apperr.Wrap(apperr.Internal, err, "decode line total")
		}
		out[l.OrderID] = append(out[l.OrderID], l)
	}
	return out, db.Classify(rows.Err(), "list order lines")
}

func (r *PGRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, db.Classify(err, "count orders")
}
