package services

import (
	"database/sql"
	"errors"

	intconfig "travelagency/internal/config"
	intdb "travelagency/internal/db"
	"travelagency/internal/domain"
)

// Invalidator drops cached public responses after a write.
type Invalidator interface {
	InvalidatePrefix(prefix string) int
}

// Translator renders localized strings; *i18n.Bundle implements it.
type Translator interface {
	T(locale, key string, args ...any) string
	Default() string
}

func dbOr(db *sql.DB) *sql.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

func invalidate(inv Invalidator, prefixes ...string) {
	if inv == nil {
		return
	}
	for _, p := range prefixes {
		inv.InvalidatePrefix(p)
	}
}

// repoError maps driver and repository errors onto domain errors.
func repoError(resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsDomain(err):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundError{Resource: resource, Err: err}
	case intdb.IsDuplicateKey(err):
		return domain.ConflictError{Resource: resource, Msg: "already exists", Err: err}
	case intdb.IsForeignKeyViolation(err):
		return domain.ConflictError{Resource: resource, Msg: "still referenced", Err: err}
	default:
		return domain.InternalError{Err: err}
	}
}

func translate(tr Translator, locale, key string, args ...any) string {
	if tr == nil {
		return key
	}
	if locale == "" {
		locale = tr.Default()
	}
	return tr.T(locale, key, args...)
}
