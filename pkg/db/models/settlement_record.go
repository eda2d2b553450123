package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
)

// SettlementRecord is the customer-side view of one redemption: what was
// charged, how many points moved, and which code produced it. Rows are
// written once and never updated.
type SettlementRecord struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID              `gorm:"column:customer_id;type:uuid;not null;index"`
	StoreID       uuid.UUID              `gorm:"column:store_id;type:uuid;not null;index"`
	AmountCharged int                    `gorm:"column:amount_charged;not null"`
	PointsUsed    int                    `gorm:"column:points_used;not null"`
	PointsEarned  int                    `gorm:"column:points_earned;not null"`
	Method        enums.PaymentMethod    `gorm:"column:method;type:payment_method;not null;default:'cash'"`
	Status        enums.SettlementStatus `gorm:"column:status;type:settlement_status;not null"`
	SourceCode    string                 `gorm:"column:source_code;not null;index"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
