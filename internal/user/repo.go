package user

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/db"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	SetActive(ctx context.Context, username string, active bool) error
}

// NewRepo returns the repository for the gateway's backend.
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

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, username, password_hash, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		RETURNING created_at
	`, u.ID, u.Email, u.Username, u.PasswordHash, u.IsActive).Scan(&u.CreatedAt)
	if err != nil {
		if apperr.Is(db.Classify(err, "create user"), apperr.Conflict) {
			return apperr.Wrap(apperr.Conflict, err, "email or username already registered")
		}
		return db.Classify(err, "create user")
	}
	return nil
}

const pgSelectUser = `
	SELECT id::text, email, username, password_hash, is_active, created_at
	FROM users`

func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, pgSelectUser+` WHERE id=$1`, id)
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, pgSelectUser+` WHERE username=$1`, username)
}

func (r *PGRepo) getOne(ctx context.Context, q string, arg string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var u User
	err := r.db.QueryRow(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, db.Classify(err, "get user")
	}
	return &u, nil
}

func (r *PGRepo) SetActive(ctx context.Context, username string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE users SET is_active=$2 WHERE username=$1`, username, active)
	if err != nil {
		return db.Classify(err, "set user active")
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}
