package user

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

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

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	IsActive     bool   `db:"is_active"`
	CreatedAt    string `db:"created_at"`
}

func (row userRow) user() (*User, error) {
	created, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "decode user")
	}
	return &User{
		ID:           row.ID,
		Email:        row.Email,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
		CreatedAt:    created,
	}, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	u.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, is_active, created_at)
		VALUES (?,?,?,?,?,?)
	`, u.ID, u.Email, u.Username, u.PasswordHash, u.IsActive, u.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if apperr.Is(db.Classify(err, "create user"), apperr.Conflict) {
			return apperr.Wrap(apperr.Conflict, err, "email or username already registered")
		}
		return db.Classify(err, "create user")
	}
	return nil
}

const sqliteSelectUser = `
	SELECT id, email, username, password_hash, is_active, created_at
	FROM users`

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, sqliteSelectUser+` WHERE id = ?`, id)
}

func (r *SQLiteRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, sqliteSelectUser+` WHERE username = ?`, username)
}

func (r *SQLiteRepo) getOne(ctx context.Context, q, arg string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var row userRow
	if err := r.db.GetContext(ctx, &row, q, arg); err != nil {
		return nil, db.Classify(err, "get user")
	}
	return row.user()
}

func (r *SQLiteRepo) SetActive(ctx context.Context, username string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = ? WHERE username = ?`, active, username)
	if err != nil {
		return db.Classify(err, "set user active")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}
