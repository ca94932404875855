package db

import (
	"errors"
	"strings"

	pkgerrors "github.com/kabisoft/kabipos-backend/pkg/errors"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// Postgres or SQLite. When constraintName is provided, the constraint must
// also be named in the error text.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && !strings.Contains(msg, constraintName) {
		dump := pkgerrors.Dump(err)
		if dump.PGConstraint != constraintName {
			return false
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || pkgerrors.IsPGUniqueViolation(err) {
		return true
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// IsNotFound reports whether err is GORM's missing-row sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
