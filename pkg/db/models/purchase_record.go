package models

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseRecord is the store-side view of one redeemed sale, denormalized
// from the payment snapshot so the shop's sales history survives any later
// catalog edits.
type PurchaseRecord struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID       uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	CustomerID    uuid.UUID `gorm:"column:customer_id;type:uuid;not null"`
	Subtotal      int       `gorm:"column:subtotal;not null"`
	Tax           int       `gorm:"column:tax;not null"`
	Total         int       `gorm:"column:total;not null"`
	PointsApplied int       `gorm:"column:points_applied;not null"`
	SourceCode    string    `gorm:"column:source_code;not null;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`

	LineItems []PurchaseLineItem `gorm:"foreignKey:PurchaseID"`
}

// PurchaseLineItem is one snapshot line item copied onto a purchase record.
type PurchaseLineItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID uuid.UUID `gorm:"column:purchase_id;type:uuid;not null;index"`
	Name       string    `gorm:"column:name;not null"`
	UnitPrice  int       `gorm:"column:unit_price;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`
	LineTotal  int       `gorm:"column:line_total;not null"`
	Position   int       `gorm:"column:position;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
