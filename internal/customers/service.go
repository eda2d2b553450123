package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/internal/ledger"
	"github.com/hanamaru-app/hanamaru-backend/pkg/db"
	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
)

const defaultHistoryLimit = 50

// Service exposes customer registration and the point read surface.
type Service interface {
	Register(ctx context.Context, input RegisterCustomerInput) (*CustomerDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	PointHistory(ctx context.Context, id uuid.UUID, limit int) (*PointHistoryDTO, error)
}

// RegisterCustomerInput captures a new loyalty account.
type RegisterCustomerInput struct {
	Name  string
	Email *string
	Phone *string
}

type service struct {
	repo   Repository
	ledger ledger.Service
}

// NewService builds a customer service with the provided repository and
// ledger read surface.
func NewService(repo Repository, ledgerSvc ledger.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{repo: repo, ledger: ledgerSvc}, nil
}

func (s *service) Register(ctx context.Context, input RegisterCustomerInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	customer := &models.Customer{
		Name:  name,
		Email: normalizeEmail(input.Email),
		Phone: input.Phone,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a customer with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating customer")
	}
	return toCustomerDTO(customer), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading customer")
	}
	return toCustomerDTO(customer), nil
}

// PointHistory returns the current balance alongside the newest ledger
// entries for the customer.
func (s *service) PointHistory(ctx context.Context, id uuid.UUID, limit int) (*PointHistoryDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	balance, err := s.ledger.Balance(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.History(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	return toPointHistoryDTO(balance, entries), nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
