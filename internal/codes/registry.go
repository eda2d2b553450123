package codes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
	"github.com/hanamaru-app/hanamaru-backend/pkg/logger"
)

// ResolvedCode is a payment code row together with the namespace it was
// found in. The namespace travels with the row so later steps (the guard in
// particular) hit the same table the lookup did.
type ResolvedCode struct {
	Namespace enums.CodeNamespace
	Record    *models.PaymentCode
}

// Registry resolves raw code strings to stored payment code rows.
type Registry interface {
	Resolve(ctx context.Context, rawCode string) (*ResolvedCode, error)
}

type registry struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewRegistry wires a code registry with the provided repository.
func NewRegistry(repo Repository, logg *logger.Logger) (Registry, error) {
	if repo == nil {
		return nil, fmt.Errorf("codes repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &registry{repo: repo, logg: logg, now: time.Now}, nil
}

// Resolve validates the code format, routes it to its namespace table, and
// returns the row when it is unused and unexpired. Expired, used, and
// unknown codes all come back as the same not-found error; the real reason
// is logged at debug level only.
func (r *registry) Resolve(ctx context.Context, rawCode string) (*ResolvedCode, error) {
	if !isDigits(rawCode) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment code must contain digits only")
	}
	ns, err := enums.NamespaceForLength(len(rawCode))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment code must be 5 or 6 digits")
	}

	now := r.now()
	record, err := r.repo.FindRedeemable(ctx, ns, rawCode, now)
	if err == nil {
		return &ResolvedCode{Namespace: ns, Record: record}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up payment code")
	}

	r.logResolveMiss(ctx, ns, rawCode, now)
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment code not found")
}

// logResolveMiss distinguishes used/expired/missing for operators without
// changing the caller-visible error.
func (r *registry) logResolveMiss(ctx context.Context, ns enums.CodeNamespace, rawCode string, now time.Time) {
	record, err := r.repo.Find(ctx, ns, rawCode)
	reason := "missing"
	switch {
	case err != nil:
	case record.UsedAt != nil:
		reason = "used"
	case !record.ExpiresAt.After(now):
		reason = "expired"
	}
	ctx = r.logg.WithFields(ctx, map[string]any{
		"namespace": string(ns),
		"reason":    reason,
	})
	r.logg.Debug(ctx, "payment code lookup missed")
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
