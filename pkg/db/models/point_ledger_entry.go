package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
)

// PointLedgerEntry is one append-only record of a point balance change.
// The ledger is the audit of record: at any observation point outside an
// in-flight transaction, the sum of deltas for a customer equals the
// customer's cached points_balance.
type PointLedgerEntry struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index"`
	Delta       int                   `gorm:"column:delta;not null"`
	Kind        enums.LedgerEntryKind `gorm:"column:kind;type:ledger_entry_kind_enum;not null"`
	Description string                `gorm:"column:description;not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
