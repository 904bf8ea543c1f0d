package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/creamlane/creamery-backend/pkg/db/models"
)

// ProductDTO represents the product payload returned to clients.
// CurrentPrice is nil when no interval covers now, which only happens for
// deleted products.
type ProductDTO struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
	Deleted      bool             `json:"deleted"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// PriceIntervalDTO exposes one price history entry. ValidTo omitted means
// the interval is still open.
type PriceIntervalDTO struct {
	ID        uuid.UUID       `json:"id"`
	Price     decimal.Decimal `json:"price"`
	ValidTo   *time.Time      `json:"valid_to,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// PriceHistoryDTO bundles a product's full interval history.
type PriceHistoryDTO struct {
	ProductID uuid.UUID          `json:"product_id"`
	Intervals []PriceIntervalDTO `json:"intervals"`
}

// DeletedProductDTO is returned by the delete operation; LastPrice is the
// price that was current when the product was removed.
type DeletedProductDTO struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	LastPrice *decimal.Decimal `json:"last_price,omitempty"`
	DeletedAt time.Time        `json:"deleted_at"`
}

// PriceQuoteDTO answers a point-in-time price lookup. Price is nil when no
// interval covered the requested instant.
type PriceQuoteDTO struct {
	ProductID uuid.UUID        `json:"product_id"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	At        time.Time        `json:"at"`
}

// NewProductDTO builds a DTO from the persisted model, resolving the current
// price against the provided instant.
func NewProductDTO(product *models.Product, now time.Time) (*ProductDTO, error) {
	dto := &ProductDTO{
		ID:        product.ID,
		Name:      product.Name,
		Deleted:   product.Deleted,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
	price, ok, err := ResolveCurrent(product.Prices, now)
	if err != nil {
		return nil, err
	}
	if ok {
		dto.CurrentPrice = &price
	}
	return dto, nil
}

// NewPriceHistoryDTO builds the history payload, oldest interval first.
func NewPriceHistoryDTO(productID uuid.UUID, intervals []models.PriceInterval) *PriceHistoryDTO {
	out := make([]PriceIntervalDTO, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, PriceIntervalDTO{
			ID:        iv.ID,
			Price:     iv.Price,
			ValidTo:   iv.ValidTo,
			CreatedAt: iv.CreatedAt,
		})
	}
	return &PriceHistoryDTO{ProductID: productID, Intervals: out}
}
