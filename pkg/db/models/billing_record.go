package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// BillingRecord is the payable projection of a single order line.
type BillingRecord struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	OrderLineID uuid.UUID           `gorm:"column:order_line_id;type:uuid;not null;uniqueIndex"`
	VendorID    uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null"`
	ItemID      uuid.UUID           `gorm:"column:item_id;type:uuid;not null"`
	ItemName    string              `gorm:"column:item_name;not null"`
	Quantity    decimal.Decimal     `gorm:"column:quantity;type:numeric(14,3);not null"`
	Cost        decimal.Decimal     `gorm:"column:cost;type:numeric(12,2);not null"`
	Total       decimal.Decimal     `gorm:"column:total;type:numeric(14,2);not null"`
	Status      enums.BillingStatus `gorm:"column:status;not null;default:'Pending'"`
	Notes       *string             `gorm:"column:notes"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (BillingRecord) TableName() string { return "billing_records" }

func (m *BillingRecord) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
