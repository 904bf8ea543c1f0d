package product

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creamlane/creamery-backend/pkg/db/models"
)

// Repository wires together product and price-interval persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindLiveByID loads a non-deleted product with its full price history.
func (r *Repository) FindLiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Prices", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND deleted = ?", id, false).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByID loads a product regardless of deletion state. Price history stays
// readable after a soft delete, so point-in-time reads go through here.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Prices", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindLiveByName returns the non-deleted product with the given name.
func (r *Repository) FindLiveByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("name = ? AND deleted = ?", name, false).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListLive returns all non-deleted products with their histories preloaded.
func (r *Repository) ListLive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Prices", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("deleted = ?", false).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// CreateProduct inserts a new product row, assigning an ID when unset.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// SaveProduct persists changes to an existing product row.
func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies column updates to a product row. Used instead of Save
// when the loaded struct carries preloaded associations.
func (r *Repository) UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(updates).Error
}

// ListIntervals returns the full history for a product, oldest first.
func (r *Repository) ListIntervals(ctx context.Context, productID uuid.UUID) ([]models.PriceInterval, error) {
	var rows []models.PriceInterval
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListOpenIntervals returns the intervals with no closing bound. A healthy
// history has exactly one per live product.
func (r *Repository) ListOpenIntervals(ctx context.Context, productID uuid.UUID) ([]models.PriceInterval, error) {
	var rows []models.PriceInterval
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND valid_to IS NULL", productID).
		Find(&rows).Error
	return rows, err
}

// CreateInterval inserts a new price interval, assigning an ID when unset.
func (r *Repository) CreateInterval(ctx context.Context, interval *models.PriceInterval) (*models.PriceInterval, error) {
	if interval.ID == uuid.Nil {
		interval.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(interval).Error; err != nil {
		return nil, err
	}
	return interval, nil
}

// CloseInterval sets the closing bound on an interval, guarded so a row that
// was closed by a concurrent writer is not closed twice. Returns the number
// of rows updated.
func (r *Repository) CloseInterval(ctx context.Context, intervalID uuid.UUID, validTo time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PriceInterval{}).
		Where("id = ? AND valid_to IS NULL", intervalID).
		Update("valid_to", validTo)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// MarkIntervalsDeleted flags every interval of the product as deleted.
func (r *Repository) MarkIntervalsDeleted(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.PriceInterval{}).
		Where("product_id = ?", productID).
		Update("deleted", true).Error
}
