package db

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MikeMC777/tienda/internal/apperr"
)

// Postgres SQLSTATE codes we translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgSerialization       = "40001"
	pgDeadlock            = "40P01"
	pgQueryCanceled       = "57014"
)

// Classify maps a driver error into the apperr taxonomy. op names the
// operation for logs; clients only ever see the apperr message.
func Classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return apperr.Wrap(apperr.NotFound, err, op+": not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.Unavailable, err, "storage timeout")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Wrap(apperr.Conflict, err, op+": already exists")
		case pgForeignKeyViolation, pgCheckViolation, pgSerialization, pgDeadlock:
			return apperr.Wrap(apperr.Conflict, err, op+": conflicting update")
		case pgQueryCanceled:
			return apperr.Wrap(apperr.Unavailable, err, "storage timeout")
		}
		return apperr.Wrap(apperr.Internal, err, op)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return apperr.Wrap(apperr.Unavailable, err, "storage unavailable")
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperr.Wrap(apperr.Unavailable, err, "storage unavailable")
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		code := sqErr.Code()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperr.Wrap(apperr.Conflict, err, op+": already exists")
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(sqErr.Error(), "UNIQUE") {
				return apperr.Wrap(apperr.Conflict, err, op+": already exists")
			}
			return apperr.Wrap(apperr.Conflict, err, op+": conflicting update")
		case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
			return apperr.Wrap(apperr.Unavailable, err, "storage busy")
		}
	}
	if errors.Is(err, sql.ErrConnDone) {
		return apperr.Wrap(apperr.Unavailable, err, "storage unavailable")
	}
	return apperr.Wrap(apperr.Internal, err, op)
}
