package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint failure on
// PostgreSQL or SQLite. When names are given, the error text must mention at
// least one of them. PostgreSQL reports the index name while SQLite reports
// the indexed columns ("sectors.name_key"), so callers pass both forms.
func IsUniqueViolation(err error, names ...string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return mentionsAny(err, names)
	}

	unique := false
	var pgErr *pgconn.PgError
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pgErr):
		unique = pgErr.Code == pgUniqueViolation
	case errors.As(err, &liteErr):
		unique = liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	default:
		msg := err.Error()
		unique = strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
	}
	return unique && mentionsAny(err, names)
}

func mentionsAny(err error, names []string) bool {
	msg := err.Error()
	filtered := false
	for _, name := range names {
		if name == "" {
			continue
		}
		filtered = true
		if strings.Contains(msg, name) {
			return true
		}
	}
	return !filtered
}

// IsNotFound reports whether err is GORM's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
