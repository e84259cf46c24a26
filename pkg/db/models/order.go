package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Order is a purchase order placed with a single vendor.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	VendorID  uuid.UUID         `gorm:"column:vendor_id;type:uuid;not null"`
	OrderDate time.Time         `gorm:"column:order_date;not null"`
	Status    enums.OrderStatus `gorm:"column:status;not null;default:'Pending'"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(14,2);not null"`
	Notes     *string           `gorm:"column:notes"`
	IsDeleted bool              `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Vendor *Vendor     `gorm:"foreignKey:VendorID;references:ID"`
	Lines  []OrderLine `gorm:"foreignKey:OrderID;references:ID"`
}

func (Order) TableName() string { return "orders" }

func (m *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// OrderLine is one item row of an order. UnitPrice is the catalog cost at
// write time; QuotedPrice keeps whatever price the client submitted.
type OrderLine struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	ItemID      uuid.UUID        `gorm:"column:item_id;type:uuid;not null"`
	ItemName    string           `gorm:"column:item_name;not null"`
	Quantity    decimal.Decimal  `gorm:"column:quantity;type:numeric(14,3);not null"`
	Unit        enums.Unit       `gorm:"column:unit;not null"`
	UnitPrice   decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	QuotedPrice *decimal.Decimal `gorm:"column:quoted_price;type:numeric(12,2)"`
	LineTotal   decimal.Decimal  `gorm:"column:line_total;type:numeric(14,2);not null"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (OrderLine) TableName() string { return "order_lines" }

func (m *OrderLine) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
