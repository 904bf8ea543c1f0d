package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the registry row for a catalog item. Rows are never removed;
// Deleted is terminal and hides the product from live reads while keeping
// its price history queryable.
type Product struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Deleted   bool            `gorm:"column:deleted;not null;default:false"`
	Prices    []PriceInterval `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
