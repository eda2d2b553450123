package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer holds the loyalty account for one shopper. PointsBalance is a
// cached aggregate of the customer's ledger entries; it is mutated only by
// the settlement path, through an atomic conditional increment.
type Customer struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Email         *string   `gorm:"column:email;uniqueIndex"`
	Phone         *string   `gorm:"column:phone"`
	PointsBalance int       `gorm:"column:points_balance;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
