package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
)

// Service maintains the point ledger and the cached balance it audits.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Apply(ctx context.Context, input ApplyInput) (int, error)
	Balance(ctx context.Context, customerID uuid.UUID) (int, error)
	History(ctx context.Context, customerID uuid.UUID, limit int) ([]models.PointLedgerEntry, error)
}

// ApplyInput carries one balance mutation: points earned and points spent in
// the same settlement, with a shared description for the audit entries.
type ApplyInput struct {
	CustomerID  uuid.UUID
	Earned      int
	Spent       int
	Description string
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

// Apply moves the balance by earned - spent and appends the matching ledger
// entries. The balance update is a single conditional statement, so the
// insufficient-balance check always runs against the live row rather than a
// value read earlier in the request. Zero deltas write no entries.
func (s *service) Apply(ctx context.Context, input ApplyInput) (int, error) {
	if input.CustomerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.Earned < 0 || input.Spent < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "earned and spent must not be negative")
	}

	delta := input.Earned - input.Spent
	if delta != 0 {
		updated, err := s.repo.AdjustBalance(ctx, input.CustomerID, delta)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating point balance")
		}
		if !updated {
			available, err := s.repo.GetBalance(ctx, input.CustomerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return 0, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
				}
				return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading point balance")
			}
			return 0, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "point balance would go negative").
				WithDetails(map[string]int{"available": available, "requested": input.Spent})
		}
	}

	if input.Earned > 0 {
		entry := &models.PointLedgerEntry{
			CustomerID:  input.CustomerID,
			Delta:       input.Earned,
			Kind:        enums.LedgerEntryKindEarned,
			Description: input.Description,
		}
		if err := s.repo.CreateEntry(ctx, entry); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing earned ledger entry")
		}
	}
	if input.Spent > 0 {
		entry := &models.PointLedgerEntry{
			CustomerID:  input.CustomerID,
			Delta:       -input.Spent,
			Kind:        enums.LedgerEntryKindSpent,
			Description: input.Description,
		}
		if err := s.repo.CreateEntry(ctx, entry); err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing spent ledger entry")
		}
	}

	balance, err := s.repo.GetBalance(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading point balance")
	}
	return balance, nil
}

func (s *service) Balance(ctx context.Context, customerID uuid.UUID) (int, error) {
	if customerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	balance, err := s.repo.GetBalance(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading point balance")
	}
	return balance, nil
}

func (s *service) History(ctx context.Context, customerID uuid.UUID, limit int) ([]models.PointLedgerEntry, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	entries, err := s.repo.ListByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing ledger entries")
	}
	return entries, nil
}
