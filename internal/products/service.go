package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/creamlane/creamery-backend/pkg/db"
	"github.com/creamlane/creamery-backend/pkg/db/models"
	pkgerrors "github.com/creamlane/creamery-backend/pkg/errors"
	"github.com/creamlane/creamery-backend/pkg/metrics"
)

// Service exposes the temporal price ledger operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdatePrice(ctx context.Context, productID uuid.UUID, input UpdatePriceInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) (*DeletedProductDTO, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetCurrentPrice(ctx context.Context, productID uuid.UUID) (*PriceQuoteDTO, error)
	GetPriceAt(ctx context.Context, productID uuid.UUID, at time.Time) (*PriceQuoteDTO, error)
	GetPriceHistory(ctx context.Context, productID uuid.UUID) (*PriceHistoryDTO, error)
}

// CreateProductInput carries the fields for a new product and its first price.
type CreateProductInput struct {
	Name         string
	InitialPrice decimal.Decimal
}

// UpdatePriceInput carries a rename plus the price that becomes effective now.
type UpdatePriceInput struct {
	Name  string
	Price decimal.Decimal
}

type service struct {
	repo    *Repository
	client  *db.Client
	locks   *productLocks
	clock   *tickClock
	metrics *metrics.LedgerMetrics
}

// NewService builds the ledger service with the required dependencies.
// Metrics may be nil.
func NewService(repo *Repository, client *db.Client, ledgerMetrics *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:    repo,
		client:  client,
		locks:   newProductLocks(),
		clock:   newTickClock(),
		metrics: ledgerMetrics,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	start := time.Now()

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if err := validatePrice(input.InitialPrice); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindLiveByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product name already in use")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check product name")
	}

	product := &models.Product{Name: name}
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateProduct(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "product name already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		interval := &models.PriceInterval{
			ProductID: product.ID,
			Price:     input.InitialPrice,
		}
		if _, err := repo.CreateInterval(ctx, interval); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "concurrent price change detected")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert price interval")
		}
		product.Prices = []models.PriceInterval{*interval}
		return nil
	})
	s.finish("create", start, err)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product, s.clock.Now())
}

func (s *service) UpdatePrice(ctx context.Context, productID uuid.UUID, input UpdatePriceInput) (*ProductDTO, error) {
	start := time.Now()

	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}

	release := s.locks.Lock(productID)
	defer release()

	var product *models.Product
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindLiveByID(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		open, err := singleOpenInterval(ctx, repo, productID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		rows, err := repo.CloseInterval(ctx, open.ID, now)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "concurrent price change detected")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: close price interval")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "concurrent price change detected")
		}

		next := &models.PriceInterval{
			ProductID: productID,
			Price:     input.Price,
		}
		if _, err := repo.CreateInterval(ctx, next); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "concurrent price change detected")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert price interval")
		}

		if err := repo.UpdateProduct(ctx, productID, map[string]any{"name": name}); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "product name already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}

		product, err = repo.FindLiveByID(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload product")
		}
		return nil
	})
	s.finish("update", start, err)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product, s.clock.Now())
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) (*DeletedProductDTO, error) {
	start := time.Now()

	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	release := s.locks.Lock(productID)
	defer release()

	var result *DeletedProductDTO
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindLiveByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		open, err := repo.ListOpenIntervals(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load open interval")
		}
		if len(open) > 1 {
			return pkgerrors.New(pkgerrors.CodeConsistency, "price history corrupt: multiple open intervals")
		}

		// a product with no open interval is already frozen; the delete
		// still proceeds and reports no effective price
		now := s.clock.Now()
		var lastPrice *decimal.Decimal
		if len(open) == 1 {
			rows, err := repo.CloseInterval(ctx, open[0].ID, now)
			if err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.New(pkgerrors.CodeConflict, "concurrent price change detected")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: close price interval")
			}
			if rows == 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "concurrent price change detected")
			}
			price := open[0].Price
			lastPrice = &price
		}

		if err := repo.MarkIntervalsDeleted(ctx, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark price history deleted")
		}

		if err := repo.UpdateProduct(ctx, productID, map[string]any{"deleted": true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark product deleted")
		}

		result = &DeletedProductDTO{
			ID:        loaded.ID,
			Name:      loaded.Name,
			LastPrice: lastPrice,
			DeletedAt: now,
		}
		return nil
	})
	s.finish("delete", start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindLiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product, s.clock.Now())
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListLive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	now := s.clock.Now()
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dto, err := NewProductDTO(&rows[i], now)
		if err != nil {
			return nil, err
		}
		out = append(out, *dto)
	}
	return out, nil
}

// GetCurrentPrice quotes the price effective now. Deleted products are
// NotFound. A live product must carry exactly one open interval, so a live
// ledger that resolves to none is reported as a consistency fault rather
// than an empty quote.
func (s *service) GetCurrentPrice(ctx context.Context, productID uuid.UUID) (*PriceQuoteDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindLiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	now := s.clock.Now()
	price, ok, err := ResolveCurrent(product.Prices, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConsistency, "price history corrupt: no effective price")
	}
	return &PriceQuoteDTO{ProductID: productID, Price: &price, At: now}, nil
}

func (s *service) GetPriceAt(ctx context.Context, productID uuid.UUID, at time.Time) (*PriceQuoteDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	quote := &PriceQuoteDTO{ProductID: productID, At: at}
	price, ok, err := ResolveAt(product.Prices, at)
	if err != nil {
		return nil, err
	}
	if ok {
		quote.Price = &price
	}
	return quote, nil
}

func (s *service) GetPriceHistory(ctx context.Context, productID uuid.UUID) (*PriceHistoryDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	intervals, err := s.repo.ListIntervals(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list price history")
	}
	return NewPriceHistoryDTO(productID, intervals), nil
}

// singleOpenInterval loads the open interval of a live product, surfacing a
// consistency fault when the exactly-one invariant does not hold.
func singleOpenInterval(ctx context.Context, repo *Repository, productID uuid.UUID) (*models.PriceInterval, error) {
	open, err := repo.ListOpenIntervals(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load open interval")
	}
	switch len(open) {
	case 1:
		return &open[0], nil
	case 0:
		return nil, pkgerrors.New(pkgerrors.CodeConsistency, "price history corrupt: no open interval")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeConsistency, "price history corrupt: multiple open intervals")
	}
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price precision limited to 2 decimal places")
	}
	return nil
}

func (s *service) finish(op string, start time.Time, err error) {
	s.metrics.ObserveDuration(op, time.Since(start))
	switch {
	case err == nil:
		s.metrics.IncMutation(op, "ok")
	case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeConflict:
		s.metrics.IncMutation(op, "conflict")
		s.metrics.IncConflict(op)
	default:
		s.metrics.IncMutation(op, "error")
	}
}
