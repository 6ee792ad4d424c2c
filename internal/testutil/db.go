// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/storefront/internal/models"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
// A single connection serializes transactions the way row locks do in postgres.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func SeedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, DisplayName: "Test User", PasswordHash: "x", Role: models.RoleUser}
	require.NoError(t, db.Create(u).Error)
	return u
}

func SeedProduct(t *testing.T, db *gorm.DB, name string, stock int, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:      name,
		Stock:     stock,
		SalePrice: decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func Stock(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, "id = ?", productID).Error)
	return p.Stock
}

func CountCartRows(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}
