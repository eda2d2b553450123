package settlement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
)

// Repository manages persistence for settlement and purchase records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSettlement(ctx context.Context, record *models.SettlementRecord) error
	CreatePurchase(ctx context.Context, record *models.PurchaseRecord) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.SettlementRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settlement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSettlement(ctx context.Context, record *models.SettlementRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CreatePurchase persists the purchase record together with its line items.
func (r *repository) CreatePurchase(ctx context.Context, record *models.PurchaseRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.SettlementRecord, error) {
	var records []models.SettlementRecord
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
