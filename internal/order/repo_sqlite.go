package order

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/db"
)

type SQLiteRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewSQLiteRepo(sdb *sqlx.DB, timeout time.Duration) *SQLiteRepo {
	if timeout <= 0 {
		timeout = db.DefaultTimeout
	}
	return &SQLiteRepo{db: sdb, timeout: timeout}
}

type orderRow struct {
	ID        string          `db:"id"`
	UserID    string          `db:"user_id"`
	Total     decimal.Decimal `db:"total"`
	Status    string          `db:"status"`
	CreatedAt string          `db:"created_at"`
}

func (row orderRow) order() (Order, error) {
	created, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return Order{}, apperr.Wrap(apperr.Internal, err, "decode order")
	}
	return Order{
		ID:        row.ID,
		UserID:    row.UserID,
		Total:     row.Total,
		Status:    row.Status,
		CreatedAt: created,
	}, nil
}

type lineRow struct {
	ID        string          `db:"id"`
	OrderID   string          `db:"order_id"`
	LineNo    int             `db:"line_no"`
	ProductID string          `db:"product_id"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
	LineTotal decimal.Decimal `db:"line_total"`
}

func (r *SQLiteRepo) Place(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return db.Classify(err, "begin order")
	}
	defer func() { _ = tx.Rollback() }()

	o.CreatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total, status, created_at)
		VALUES (?,?,?,?,?)
	`, o.ID, o.UserID, o.Total.StringFixed(2), o.Status, o.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return db.Classify(err, "insert order")
	}

	for _, l := range o.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, line_no, product_id, quantity, unit_price, line_total)
			VALUES (?,?,?,?,?,?,?)
		`, l.ID, o.ID, l.LineNo, l.ProductID, l.Quantity, l.UnitPrice.StringFixed(2), l.LineTotal.StringFixed(2)); err != nil {
			return db.Classify(err, "insert order line")
		}
	}

	for _, res := range reservations(o.Lines) {
		result, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - ?
			WHERE id = ? AND stock >= ?
		`, res.quantity, res.productID, res.quantity)
		if err != nil {
			return db.Classify(err, "reserve stock")
		}
		n, err := result.RowsAffected()
		if err != nil {
			return db.Classify(err, "reserve stock")
		}
		if n == 0 {
			return exhausted(res.productID)
		}
	}

	return db.Classify(tx.Commit(), "commit order")
}

const sqliteSelectOrder = `
	SELECT id, user_id, total, status, created_at
	FROM orders`

func (r *SQLiteRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows := []orderRow{}
	if err := r.db.SelectContext(ctx, &rows, sqliteSelectOrder+`
		WHERE user_id = ?
		ORDER BY rowid
	`, userID); err != nil {
		return nil, db.Classify(err, "list orders")
	}

	out := make([]Order, 0, len(rows))
	for _, row := range rows {
		o, err := row.order()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *SQLiteRepo) GetForUser(ctx context.Context, userID, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var row orderRow
	if err := r.db.GetContext(ctx, &row, sqliteSelectOrder+` WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return nil, db.Classify(err, "get order")
	}
	o, err := row.order()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *SQLiteRepo) LinesFor(ctx context.Context, orderIDs ...string) (map[string][]Line, error) {
	if len(orderIDs) == 0 {
		return map[string][]Line{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q, args, err := sqlx.In(`
		SELECT id, order_id, line_no, product_id, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, line_no
	`, orderIDs)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "build order lines query")
	}
	rows := []lineRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, db.Classify(err, "list order lines")
	}

	lines := lo.Map(rows, func(row lineRow, _ int) Line { return Line(row) })
	return lo.GroupBy(lines, func(l Line) string { return l.OrderID }), nil
}

func (r *SQLiteRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders`)
	return n, db.Classify(err, "count orders")
}
