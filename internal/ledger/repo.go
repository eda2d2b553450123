package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
)

// Repository manages persistence for point ledger entries and the cached
// customer balance.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntry(ctx context.Context, entry *models.PointLedgerEntry) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.PointLedgerEntry, error)
	AdjustBalance(ctx context.Context, customerID uuid.UUID, delta int) (bool, error)
	GetBalance(ctx context.Context, customerID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.PointLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.PointLedgerEntry, error) {
	var entries []models.PointLedgerEntry
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// AdjustBalance applies the delta as a single atomic conditional update. The
// WHERE clause refuses any update that would drive the balance negative, so
// two concurrent spends can never both succeed off the same stale read.
// A false return means no row matched: the customer is missing or the
// balance is too low.
func (r *repository) AdjustBalance(ctx context.Context, customerID uuid.UUID, delta int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ? AND points_balance + ? >= 0", customerID, delta).
		Update("points_balance", gorm.Expr("points_balance + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) GetBalance(ctx context.Context, customerID uuid.UUID) (int, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Select("points_balance").
		Where("id = ?", customerID).
		First(&customer).Error
	if err != nil {
		return 0, err
	}
	return customer.PointsBalance, nil
}
