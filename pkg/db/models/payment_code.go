package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentCode is one row of a payment code table. Two tables share this shape:
// payment_codes_basic (5-digit codes) and payment_codes_remote (6-digit codes);
// repositories select the table through the code namespace, so no default
// gorm table name is declared here.
//
// After creation the only mutation a row ever sees is the one-shot
// used_at: NULL -> timestamp flip performed by the consumption guard. Rows are
// kept forever for audit.
type PaymentCode struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string          `gorm:"column:code;not null;uniqueIndex"`
	Snapshot  json.RawMessage `gorm:"column:payment_snapshot;type:jsonb;not null"`
	ExpiresAt time.Time       `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time      `gorm:"column:used_at"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
