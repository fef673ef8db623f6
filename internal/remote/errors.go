package remote

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the gateway reacts to.
const (
	codeUndefinedTable     = "42P01"
	codeInvalidPassword    = "28P01"
	codeInvalidAuthSpec    = "28000"
	codeInsufficientPrivil = "42501"
	codeUniqueViolation    = "23505"
)

// IsUndefinedTable reports whether err means the target table does not exist.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUndefinedTable
	}
	// sqlite, used for local development databases
	return err != nil && strings.Contains(err.Error(), "no such table")
}

// IsAuthFailure reports whether err means the access key was rejected.
func IsAuthFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeInvalidPassword, codeInvalidAuthSpec, codeInsufficientPrivil:
			return true
		}
	}
	return false
}

// IsUniqueViolation reports whether err means a row with the same key
// already exists.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
