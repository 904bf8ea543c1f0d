package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/creamlane/creamery-backend/pkg/db"
	"github.com/creamlane/creamery-backend/pkg/db/models"
)

func newLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	prices := `
CREATE TABLE IF NOT EXISTS product_prices (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  price DECIMAL(18,2) NOT NULL,
  valid_to DATETIME,
  deleted INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	liveName := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_live_name
  ON products (name) WHERE deleted = 0;`
	boundary := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_product_prices_boundary
  ON product_prices (product_id, valid_to);`
	singleOpen := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_product_prices_single_open
  ON product_prices (product_id) WHERE valid_to IS NULL;`

	for _, stmt := range []string{products, prices, liveName, boundary, singleOpen} {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

// newTestService wires a service against the provided connection with a
// deterministic wall clock.
func newTestService(t *testing.T, conn *gorm.DB, now func() time.Time) *service {
	t.Helper()

	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), nil)
	require.NoError(t, err)

	impl := svc.(*service)
	if now != nil {
		impl.clock.now = now
	}
	return impl
}

func mustCreateLedgerProduct(t *testing.T, svc *service, name, price string) *ProductDTO {
	t.Helper()

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:         name,
		InitialPrice: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return dto
}

func seedInterval(t *testing.T, conn *gorm.DB, productID uuid.UUID, price string, validTo *time.Time, deleted bool) *models.PriceInterval {
	t.Helper()

	interval := &models.PriceInterval{
		ID:        uuid.New(),
		ProductID: productID,
		Price:     decimal.RequireFromString(price),
		ValidTo:   validTo,
		Deleted:   deleted,
	}
	require.NoError(t, conn.Create(interval).Error)
	return interval
}
