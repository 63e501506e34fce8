package repositories

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

func isUniqueConstraintViolation(err error) bool {
	// Requires gorm.Config.TranslateError; the pgconn check covers connections opened without it.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// translateError maps driver errors onto the package sentinels.
func translateError(err error, message string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueConstraintViolation(err):
		return errors.Wrap(ErrDuplicate, message)
	default:
		return errors.Wrap(err, message)
	}
}
