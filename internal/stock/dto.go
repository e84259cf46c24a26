package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Adjustment moves the quantity of one (item, vendor) entry by Delta.
// UnitCost refreshes the entry's cost on inbound moves only.
type Adjustment struct {
	ItemID   uuid.UUID
	VendorID uuid.UUID
	Delta    decimal.Decimal
	Unit     enums.Unit
	UnitCost decimal.Decimal
}

type CreateInput struct {
	ItemID       uuid.UUID        `json:"item_id" validate:"required"`
	VendorID     uuid.UUID        `json:"vendor_id" validate:"required"`
	CurrentStock *decimal.Decimal `json:"current_stock" validate:"required"`
	Unit         string           `json:"unit" validate:"required,max=20"`
	MinThreshold *decimal.Decimal `json:"min_threshold"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
}

// Patch lists the stock columns a client may overwrite.
type Patch struct {
	CurrentStock *decimal.Decimal `json:"current_stock"`
	Unit         *string          `json:"unit" validate:"omitempty,max=20"`
	MinThreshold *decimal.Decimal `json:"min_threshold"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
}

type Filters struct {
	ItemID   *uuid.UUID
	VendorID *uuid.UUID
	Status   *enums.StockStatus
}

type EntryDTO struct {
	ID           uuid.UUID         `json:"stock_id"`
	ItemID       uuid.UUID         `json:"item_id"`
	ItemName     string            `json:"item_name"`
	VendorID     uuid.UUID         `json:"vendor_id"`
	VendorName   string            `json:"vendor_name"`
	CurrentStock decimal.Decimal   `json:"current_stock"`
	Unit         enums.Unit        `json:"unit"`
	UnitCost     decimal.Decimal   `json:"unit_cost"`
	MinThreshold decimal.Decimal   `json:"min_threshold"`
	Status       enums.StockStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type EntryList struct {
	Entries    []EntryDTO `json:"stocks"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// entryRow is a stock entry joined with its item and vendor names.
type entryRow struct {
	ID           uuid.UUID
	ItemID       uuid.UUID
	ItemName     string
	VendorID     uuid.UUID
	VendorName   string
	Quantity     decimal.Decimal
	Unit         enums.Unit
	UnitCost     decimal.Decimal
	MinThreshold decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r entryRow) toDTO() EntryDTO {
	return EntryDTO{
		ID:           r.ID,
		ItemID:       r.ItemID,
		ItemName:     r.ItemName,
		VendorID:     r.VendorID,
		VendorName:   r.VendorName,
		CurrentStock: r.Quantity,
		Unit:         r.Unit,
		UnitCost:     r.UnitCost,
		MinThreshold: r.MinThreshold,
		Status:       enums.DeriveStockStatus(r.Quantity, r.MinThreshold),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// LowStock is an entry whose quantity sits below its threshold.
type LowStock struct {
	ItemID       uuid.UUID
	ItemName     string
	VendorID     uuid.UUID
	Quantity     decimal.Decimal
	MinThreshold decimal.Decimal
}
