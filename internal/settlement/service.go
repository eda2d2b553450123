package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/internal/codes"
	"github.com/hanamaru-app/hanamaru-backend/internal/ledger"
	"github.com/hanamaru-app/hanamaru-backend/internal/snapshot"
	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
	"github.com/hanamaru-app/hanamaru-backend/pkg/logger"
	"github.com/hanamaru-app/hanamaru-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service orchestrates payment code redemption: verification, ledger
// application, record writes, and code consumption.
type Service interface {
	Verify(ctx context.Context, rawCode string) (*VerifyResult, error)
	Redeem(ctx context.Context, input RedeemInput) (*Result, error)
	History(ctx context.Context, customerID uuid.UUID, limit int) ([]models.SettlementRecord, error)
}

// VerifyResult is the read-only preview of a resolvable code.
type VerifyResult struct {
	Namespace enums.CodeNamespace
	ExpiresAt time.Time
	Snapshot  *snapshot.PaymentSnapshot
}

// RedeemInput identifies the code being redeemed and the customer paying
// with it.
type RedeemInput struct {
	Code       string
	CustomerID uuid.UUID
	Method     enums.PaymentMethod
}

// Result reports a completed redemption.
type Result struct {
	Status       enums.SettlementStatus
	Charged      int
	PointsUsed   int
	PointsEarned int
	NewBalance   int
}

type service struct {
	tx       txRunner
	registry codes.Registry
	guard    codes.Guard
	ledger   ledger.Service
	records  Repository
	logg     *logger.Logger
	metrics  *metrics.RedemptionMetrics
}

// NewService builds the settlement orchestrator.
func NewService(
	tx txRunner,
	registry codes.Registry,
	guard codes.Guard,
	ledgerSvc ledger.Service,
	records Repository,
	logg *logger.Logger,
	redemptionMetrics *metrics.RedemptionMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if registry == nil {
		return nil, fmt.Errorf("code registry required")
	}
	if guard == nil {
		return nil, fmt.Errorf("consumption guard required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if records == nil {
		return nil, fmt.Errorf("settlement repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:       tx,
		registry: registry,
		guard:    guard,
		ledger:   ledgerSvc,
		records:  records,
		logg:     logg,
		metrics:  redemptionMetrics,
	}, nil
}

// Verify resolves and normalizes a code without consuming anything. Callers
// use it to show the sale before the shopper commits.
func (s *service) Verify(ctx context.Context, rawCode string) (*VerifyResult, error) {
	resolved, err := s.registry.Resolve(ctx, rawCode)
	if err != nil {
		s.metrics.IncVerification(verifyNamespaceLabel(rawCode), outcomeLabel(err))
		return nil, err
	}

	snap, err := snapshot.Normalize(resolved.Record.Snapshot)
	if err != nil {
		s.metrics.IncVerification(string(resolved.Namespace), outcomeLabel(err))
		return nil, err
	}

	s.metrics.IncVerification(string(resolved.Namespace), "ok")
	return &VerifyResult{
		Namespace: resolved.Namespace,
		ExpiresAt: resolved.Record.ExpiresAt,
		Snapshot:  snap,
	}, nil
}

// Redeem applies a verified snapshot to the customer's balance and writes
// the settlement, purchase, and ledger records, then consumes the code.
//
// All writes share one transaction and the guard fires last, so "used"
// never precedes "settled": losing the consumption race surfaces as
// CODE_ALREADY_USED and rolls every write of the losing attempt back,
// leaving at most one settlement per code.
func (s *service) Redeem(ctx context.Context, input RedeemInput) (*Result, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	method := input.Method
	if method == "" {
		method = enums.PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.Method))
	}

	resolved, err := s.registry.Resolve(ctx, input.Code)
	if err != nil {
		s.metrics.IncSettlement(verifyNamespaceLabel(input.Code), outcomeLabel(err))
		return nil, err
	}
	ns := resolved.Namespace

	snap, err := snapshot.Normalize(resolved.Record.Snapshot)
	if err != nil {
		s.metrics.IncSettlement(string(ns), outcomeLabel(err))
		return nil, err
	}
	storeID, err := uuid.Parse(snap.StoreID)
	if err != nil {
		s.metrics.IncSettlement(string(ns), outcomeLabel(err))
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSnapshot, "payment snapshot store id is not a uuid")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"code":          input.Code,
		"namespace":     string(ns),
		"customer_id":   input.CustomerID.String(),
		"charge":        snap.ChargeAmount,
		"points_used":   snap.PointsUsed,
		"points_earned": snap.PointsEarned,
	})

	var (
		newBalance int
		reached    = progressVerified
	)
	start := time.Now()
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		balance, err := s.ledger.WithTx(tx).Apply(ctx, ledger.ApplyInput{
			CustomerID:  input.CustomerID,
			Earned:      snap.PointsEarned,
			Spent:       snap.PointsUsed,
			Description: fmt.Sprintf("payment code %s", input.Code),
		})
		if err != nil {
			return err
		}
		newBalance = balance
		reached = progressLedgerApplied

		records := s.records.WithTx(tx)
		if err := records.CreateSettlement(ctx, &models.SettlementRecord{
			CustomerID:    input.CustomerID,
			StoreID:       storeID,
			AmountCharged: snap.ChargeAmount,
			PointsUsed:    snap.PointsUsed,
			PointsEarned:  snap.PointsEarned,
			Method:        method,
			Status:        enums.SettlementStatusCompleted,
			SourceCode:    input.Code,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing settlement record")
		}
		if err := records.CreatePurchase(ctx, buildPurchase(input, storeID, snap)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing purchase record")
		}
		reached = progressRecordsWritten

		consumed, err := s.guard.WithTx(tx).Consume(ctx, ns, input.Code)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consuming payment code")
		}
		if !consumed {
			return pkgerrors.New(pkgerrors.CodeAlreadyUsed, "payment code already consumed")
		}
		reached = progressConsumed
		return nil
	})
	s.metrics.ObserveSettlementDuration(string(ns), time.Since(start))

	if txErr != nil {
		return nil, s.handleRedeemFailure(ctx, input, storeID, snap, method, ns, reached, txErr)
	}

	s.metrics.IncSettlement(string(ns), "completed")
	s.logg.Info(ctx, "payment code redeemed")
	return &Result{
		Status:       enums.SettlementStatusCompleted,
		Charged:      snap.ChargeAmount,
		PointsUsed:   snap.PointsUsed,
		PointsEarned: snap.PointsEarned,
		NewBalance:   newBalance,
	}, nil
}

// handleRedeemFailure classifies a failed transaction, records metrics, and
// writes the failed settlement row where one is warranted.
func (s *service) handleRedeemFailure(
	ctx context.Context,
	input RedeemInput,
	storeID uuid.UUID,
	snap *snapshot.PaymentSnapshot,
	method enums.PaymentMethod,
	ns enums.CodeNamespace,
	reached progress,
	txErr error,
) error {
	// An error surfacing after the guard succeeded means the commit itself
	// failed and the outcome is unknowable from here. Everything needed for
	// manual reconciliation is already on the context fields.
	if reached == progressConsumed {
		s.metrics.IncSettlement(string(ns), "partial_settlement")
		s.logg.Error(ctx, "settlement outcome ambiguous, manual reconciliation required", txErr)
		return pkgerrors.Wrap(pkgerrors.CodePartialSettlement, txErr, "settlement could not be confirmed")
	}

	typed := pkgerrors.As(txErr)
	if typed == nil {
		s.metrics.IncSettlement(string(ns), "error")
		s.logg.Error(ctx, "settlement failed", txErr)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "settlement failed")
	}

	switch typed.Code() {
	case pkgerrors.CodeAlreadyUsed:
		s.metrics.IncSettlement(string(ns), "code_already_used")
		s.logg.Warn(ctx, "lost payment code consumption race, rolled back")
	case pkgerrors.CodeInsufficientBalance:
		s.metrics.IncSettlement(string(ns), "insufficient_balance")
		if err := s.records.CreateSettlement(ctx, &models.SettlementRecord{
			CustomerID:    input.CustomerID,
			StoreID:       storeID,
			AmountCharged: snap.ChargeAmount,
			PointsUsed:    snap.PointsUsed,
			PointsEarned:  snap.PointsEarned,
			Method:        method,
			Status:        enums.SettlementStatusFailed,
			SourceCode:    input.Code,
		}); err != nil {
			s.logg.Error(ctx, "recording failed settlement", multierr.Append(txErr, err))
		}
	default:
		s.metrics.IncSettlement(string(ns), outcomeLabel(typed))
		s.logg.Error(ctx, "settlement failed", txErr)
	}
	return txErr
}

// History lists the customer's settlements, newest first.
func (s *service) History(ctx context.Context, customerID uuid.UUID, limit int) ([]models.SettlementRecord, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	records, err := s.records.ListByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing settlements")
	}
	return records, nil
}

func buildPurchase(input RedeemInput, storeID uuid.UUID, snap *snapshot.PaymentSnapshot) *models.PurchaseRecord {
	items := make([]models.PurchaseLineItem, len(snap.Items))
	for i, item := range snap.Items {
		items[i] = models.PurchaseLineItem{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
			Position:  i,
		}
	}
	return &models.PurchaseRecord{
		StoreID:       storeID,
		CustomerID:    input.CustomerID,
		Subtotal:      snap.Subtotal,
		Tax:           snap.Tax,
		Total:         snap.ChargeAmount,
		PointsApplied: snap.PointsUsed,
		SourceCode:    input.Code,
		LineItems:     items,
	}
}

// verifyNamespaceLabel guesses the namespace label for metrics when
// resolution itself failed; malformed codes fall through to "unknown".
func verifyNamespaceLabel(rawCode string) string {
	ns, err := enums.NamespaceForLength(len(rawCode))
	if err != nil {
		return "unknown"
	}
	return string(ns)
}

func outcomeLabel(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeValidation:
			return "malformed_code"
		case pkgerrors.CodeNotFound:
			return "code_not_found"
		case pkgerrors.CodeInvalidSnapshot:
			return "invalid_snapshot"
		case pkgerrors.CodeInsufficientBalance:
			return "insufficient_balance"
		case pkgerrors.CodeAlreadyUsed:
			return "code_already_used"
		}
	}
	return "error"
}
