package codes

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
)

// Guard performs the one-shot consumption of a payment code. Consume is the
// subsystem's only mutual-exclusion point: two racing redemptions of the
// same code both pass resolution, but exactly one wins the conditional
// update here.
type Guard interface {
	WithTx(tx *gorm.DB) Guard
	Consume(ctx context.Context, ns enums.CodeNamespace, code string) (bool, error)
}

type guard struct {
	repo Repository
	now  func() time.Time
}

// NewGuard wires a consumption guard with the provided repository.
func NewGuard(repo Repository) (Guard, error) {
	if repo == nil {
		return nil, fmt.Errorf("codes repository required")
	}
	return &guard{repo: repo, now: time.Now}, nil
}

func (g *guard) WithTx(tx *gorm.DB) Guard {
	if tx == nil {
		return g
	}
	return &guard{repo: g.repo.WithTx(tx), now: g.now}
}

// Consume flips used_at exactly once. A false return means another caller
// got there first; the caller decides what that means for its own writes.
func (g *guard) Consume(ctx context.Context, ns enums.CodeNamespace, code string) (bool, error) {
	if !ns.IsValid() {
		return false, fmt.Errorf("invalid code namespace %q", ns)
	}
	if code == "" {
		return false, fmt.Errorf("code is required")
	}
	return g.repo.Consume(ctx, ns, code, g.now())
}
