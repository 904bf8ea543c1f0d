package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/creamlane/creamery-backend/pkg/db/models"
	"github.com/creamlane/creamery-backend/pkg/enums"
	pkgerrors "github.com/creamlane/creamery-backend/pkg/errors"
)

// Service exposes customer CRUD operations.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	Update(ctx context.Context, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, customerID uuid.UUID) error
	Get(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error)
	List(ctx context.Context) ([]CustomerDTO, error)
}

// CreateCustomerInput carries the fields for a new customer.
type CreateCustomerInput struct {
	Name        string
	PhoneNumber string
	Gender      enums.Gender
}

// UpdateCustomerInput carries partial updates; nil fields are left untouched.
type UpdateCustomerInput struct {
	Name        *string
	PhoneNumber *string
	Gender      *enums.Gender
	Points      *int
	LastOrderAt *time.Time
}

type service struct {
	repo *Repository
}

// NewService builds the customer service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	gender := input.Gender
	if gender == "" {
		gender = enums.GenderUnspecified
	}
	if !gender.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid gender")
	}

	customer := &models.Customer{
		Name:        name,
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Gender:      gender,
	}
	if _, err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert customer")
	}
	return NewCustomerDTO(customer), nil
}

func (s *service) Update(ctx context.Context, customerID uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	if _, err := s.repo.FindLiveByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
		}
		updates["name"] = name
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Gender != nil {
		if !input.Gender.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid gender")
		}
		updates["gender"] = *input.Gender
	}
	if input.Points != nil {
		if *input.Points < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "points must not be negative")
		}
		updates["points"] = *input.Points
	}
	if input.LastOrderAt != nil {
		updates["last_order_at"] = *input.LastOrderAt
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, customerID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update customer")
		}
	}

	customer, err := s.repo.FindLiveByID(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload customer")
	}
	return NewCustomerDTO(customer), nil
}

func (s *service) Delete(ctx context.Context, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if _, err := s.repo.FindLiveByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	if err := s.repo.Update(ctx, customerID, map[string]any{"deleted": true}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark customer deleted")
	}
	return nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*CustomerDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	customer, err := s.repo.FindLiveByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}
	return NewCustomerDTO(customer), nil
}

func (s *service) List(ctx context.Context) ([]CustomerDTO, error) {
	rows, err := s.repo.ListLive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customers")
	}
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewCustomerDTO(&rows[i]))
	}
	return out, nil
}
