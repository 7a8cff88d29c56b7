package product

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

type productRow struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	Category    string          `db:"category"`
	CreatedAt   string          `db:"created_at"`
}

func (row productRow) product() (Product, error) {
	created, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return Product{}, apperr.Wrap(apperr.Internal, err, "decode product")
	}
	return Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		Stock:       row.Stock,
		Category:    row.Category,
		CreatedAt:   created,
	}, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	p.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, stock, category, created_at)
		VALUES (?,?,?,?,?,?,?)
	`, p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.Category, p.CreatedAt.Format(time.RFC3339Nano))
	return db.Classify(err, "create product")
}

const sqliteSelectProduct = `
	SELECT id, name, description, price, stock, category, created_at
	FROM products`

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var row productRow
	if err := r.db.GetContext(ctx, &row, sqliteSelectProduct+` WHERE id = ?`, id); err != nil {
		return nil, db.Classify(err, "get product")
	}
	p, err := row.product()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	q = q.normalize()
	rows := []productRow{}
	err := r.db.SelectContext(ctx, &rows, sqliteSelectProduct+`
		ORDER BY rowid
		LIMIT ? OFFSET ?
	`, q.Limit, q.Offset)
	if err != nil {
		return nil, db.Classify(err, "list products")
	}

	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.product()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *SQLiteRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`)
	return n, db.Classify(err, "count products")
}

// ids is used by tests and the seeder to report what was written.
func ids(ps []Product) []string {
	return lo.Map(ps, func(p Product, _ int) string { return p.ID })
}
