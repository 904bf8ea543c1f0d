package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/creamlane/creamery-backend/pkg/db/models"
	"github.com/creamlane/creamery-backend/pkg/enums"
)

// CustomerDTO represents the customer payload returned to clients.
type CustomerDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	PhoneNumber string       `json:"phone_number"`
	Gender      enums.Gender `json:"gender"`
	Points      int          `json:"points"`
	LastOrderAt *time.Time   `json:"last_order_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewCustomerDTO builds a DTO from the persisted model.
func NewCustomerDTO(customer *models.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:          customer.ID,
		Name:        customer.Name,
		PhoneNumber: customer.PhoneNumber,
		Gender:      customer.Gender,
		Points:      customer.Points,
		LastOrderAt: customer.LastOrderAt,
		CreatedAt:   customer.CreatedAt,
		UpdatedAt:   customer.UpdatedAt,
	}
}
