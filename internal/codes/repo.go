package codes

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
)

// Repository manages persistence for payment codes. Every operation takes the
// namespace explicitly; the namespace selects which table is queried and a
// code string is never looked up outside its own namespace.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindRedeemable(ctx context.Context, ns enums.CodeNamespace, code string, now time.Time) (*models.PaymentCode, error)
	Find(ctx context.Context, ns enums.CodeNamespace, code string) (*models.PaymentCode, error)
	Consume(ctx context.Context, ns enums.CodeNamespace, code string, now time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment code repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindRedeemable returns the code row only when it is unused and not yet
// expired. Expiry is an exclusive boundary: expires_at equal to now is
// already expired.
func (r *repository) FindRedeemable(ctx context.Context, ns enums.CodeNamespace, code string, now time.Time) (*models.PaymentCode, error) {
	var record models.PaymentCode
	err := r.db.WithContext(ctx).
		Table(ns.Table()).
		Where("code = ? AND used_at IS NULL AND expires_at > ?", code, now).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Find returns the code row regardless of expiry or usage. Callers use it to
// work out why a redeemable lookup missed; the distinction never leaves the
// process.
func (r *repository) Find(ctx context.Context, ns enums.CodeNamespace, code string) (*models.PaymentCode, error) {
	var record models.PaymentCode
	err := r.db.WithContext(ctx).
		Table(ns.Table()).
		Where("code = ?", code).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Consume flips used_at from NULL to now for the given code. The WHERE clause
// on used_at makes this the mutual-exclusion point: of any number of racing
// callers exactly one sees a row affected.
func (r *repository) Consume(ctx context.Context, ns enums.CodeNamespace, code string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Table(ns.Table()).
		Where("code = ? AND used_at IS NULL", code).
		Update("used_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
