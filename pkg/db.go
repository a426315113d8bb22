package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html

// IsUniqueViolationError checks if the error is a unique violation error
func IsUniqueViolationError(err error) bool {
	return pgErrorCode(err) == "23505"
}

// IsNotNullViolationError checks if the error is a not null violation error
func IsNotNullViolationError(err error) bool {
	return pgErrorCode(err) == "23502"
}

// IsInvalidInputError covers malformed values rejected by postgres (bad dates, overflowing ints)
func IsInvalidInputError(err error) bool {
	switch pgErrorCode(err) {
	case "22007", "22008", "22003", "22P02":
		return true
	}
	return false
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
