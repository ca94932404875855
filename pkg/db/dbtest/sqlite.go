// Package dbtest opens throwaway SQLite databases carrying the application
// schema for repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/kabisoft/kabipos-backend/pkg/db"
	"github.com/kabisoft/kabipos-backend/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLite returns an in-memory database private to the calling test.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])
	conn, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(&models.Tenant{}, &models.Product{}, &models.Invoice{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

// MustCreateTenant inserts an active tenant with a placeholder digest.
func MustCreateTenant(t testing.TB, conn *gorm.DB, code string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		ID:           uuid.New(),
		Code:         code,
		Name:         code + " Ltd",
		Email:        strings.ToLower(code) + "@example.test",
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholderplacehold",
		IsActive:     true,
	}
	if err := conn.Create(tenant).Error; err != nil {
		t.Fatalf("create tenant %s: %v", code, err)
	}
	return tenant
}
