package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryRequest is a staff request to restock a set of items.
type InventoryRequest struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RequestedBy string          `gorm:"column:requested_by;not null"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null"`
	ItemCount   int             `gorm:"column:item_count;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	Items []InventoryRequestItem `gorm:"foreignKey:RequestID;references:ID"`
}

func (InventoryRequest) TableName() string { return "inventory_requests" }

func (m *InventoryRequest) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

type InventoryRequestItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RequestID uuid.UUID       `gorm:"column:request_id;type:uuid;not null"`
	ItemName  string          `gorm:"column:item_name;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
}

func (InventoryRequestItem) TableName() string { return "inventory_request_items" }

func (m *InventoryRequestItem) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
