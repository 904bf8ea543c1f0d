package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/creamlane/creamery-backend/pkg/enums"
)

// Customer is a plain CRUD row; it has no temporal history.
type Customer struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string       `gorm:"column:name;not null"`
	PhoneNumber string       `gorm:"column:phone_number;not null"`
	Gender      enums.Gender `gorm:"column:gender;not null"`
	Points      int          `gorm:"column:points;not null;default:0"`
	LastOrderAt *time.Time   `gorm:"column:last_order_at"`
	Deleted     bool         `gorm:"column:deleted;not null;default:false"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
