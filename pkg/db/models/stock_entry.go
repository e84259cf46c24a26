package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// StockEntry is the on-hand quantity of one item from one vendor.
type StockEntry struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ItemID       uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	VendorID     uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:numeric(14,3);not null"`
	Unit         enums.Unit      `gorm:"column:unit;not null"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2);not null"`
	MinThreshold decimal.Decimal `gorm:"column:min_threshold;type:numeric(14,3);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (StockEntry) TableName() string { return "stock_entries" }

func (m *StockEntry) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Status derives the availability label from quantity and threshold.
func (m StockEntry) Status() enums.StockStatus {
	return enums.DeriveStockStatus(m.Quantity, m.MinThreshold)
}
