package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceInterval is one entry of a product's price history. ValidTo is the
// exclusive upper bound of effectiveness; NULL means the interval is still
// open and carries the current price. A closed interval is immutable: its
// price and bound never change afterwards. Deleted is only ever set when the
// owning product is soft-deleted.
//
// Two constraints back the model: a partial unique index on product_id where
// valid_to is NULL (at most one open interval), and a unique index on
// (product_id, valid_to) (no two intervals share a boundary).
type PriceInterval struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(18,2);not null"`
	ValidTo   *time.Time      `gorm:"column:valid_to"`
	Deleted   bool            `gorm:"column:deleted;not null;default:false"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name from the first schema revision.
func (PriceInterval) TableName() string {
	return "product_prices"
}

// Open reports whether the interval is the currently effective one.
func (p PriceInterval) Open() bool {
	return p.ValidTo == nil
}

// CoversAt reports whether the interval is effective at the given instant,
// treating a NULL bound as +infinity.
func (p PriceInterval) CoversAt(at time.Time) bool {
	return p.ValidTo == nil || p.ValidTo.After(at)
}
