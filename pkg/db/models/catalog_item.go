package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// CatalogItem is a purchasable item with its authoritative unit cost.
type CatalogItem struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name      string             `gorm:"column:name;not null;uniqueIndex"`
	Type      string             `gorm:"column:type;not null"`
	Unit      enums.Unit         `gorm:"column:unit;not null;default:'units'"`
	Cost      decimal.Decimal    `gorm:"column:cost;type:numeric(12,2);not null"`
	Status    enums.RecordStatus `gorm:"column:status;not null;default:'Active'"`
	IsDeleted bool               `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (CatalogItem) TableName() string { return "catalog_items" }

func (m *CatalogItem) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Usable reports whether the item may be referenced by new orders.
func (m CatalogItem) Usable() bool {
	return !m.IsDeleted && m.Status == enums.RecordStatusActive
}
