// Package dbtest opens throwaway sqlite databases migrated with the storefront
// models. It is imported from tests only.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shopfront/storefront/pkg/db"
	"github.com/shopfront/storefront/pkg/db/models"
	"github.com/shopfront/storefront/pkg/enums"
)

// Open returns a db.Client backed by a private in-memory sqlite database.
// The pool is pinned to a single connection so transactions serialise the
// same way row locks would on Postgres. Inside WithTx only the tx handle may
// be used.
func Open(t testing.TB) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db.Wrap(conn)
}

// CreateUser inserts an active customer with the given balance, recorded as
// the opening credit.
func CreateUser(t testing.TB, client *db.Client, balanceCents int64) *models.User {
	t.Helper()
	user := &models.User{
		Email:               fmt.Sprintf("user_%s@example.com", uuid.NewString()),
		Name:                "Test Customer",
		Role:                enums.RoleCustomer,
		IsActive:            true,
		BalanceCents:        balanceCents,
		OpeningBalanceCents: balanceCents,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateAdmin inserts an active admin user.
func CreateAdmin(t testing.TB, client *db.Client) *models.User {
	t.Helper()
	user := &models.User{
		Email:    fmt.Sprintf("admin_%s@example.com", uuid.NewString()),
		Name:     "Test Admin",
		Role:     enums.RoleAdmin,
		IsActive: true,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return user
}

// CreateProduct inserts an active product.
func CreateProduct(t testing.TB, client *db.Client, name string, priceCents int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       name,
		Category:   "general",
		PriceCents: priceCents,
		Stock:      stock,
		IsActive:   true,
	}
	if err := client.DB().Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// StockOf reads the current stock of a product.
func StockOf(t testing.TB, client *db.Client, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := client.DB().First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.Stock
}

// BalanceOf reads the current wallet balance of a user.
func BalanceOf(t testing.TB, client *db.Client, userID uuid.UUID) int64 {
	t.Helper()
	var user models.User
	if err := client.DB().First(&user, "id = ?", userID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user.BalanceCents
}

// Age moves created_at/cancelled_at style timestamps in tests.
func Age(t testing.TB, client *db.Client, model any, id uuid.UUID, column string, at time.Time) {
	t.Helper()
	if err := client.DB().Model(model).Where("id = ?", id).UpdateColumn(column, at).Error; err != nil {
		t.Fatalf("age %s: %v", column, err)
	}
}
