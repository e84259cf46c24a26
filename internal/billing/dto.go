package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Line is one persisted order line to bill at the catalog cost captured when
// the line was written.
type Line struct {
	OrderLineID uuid.UUID
	ItemID      uuid.UUID
	ItemName    string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// ProjectInput requests billing for an order's unbilled lines.
type ProjectInput struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// StatusInput moves a billing record to a new status.
type StatusInput struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

type Filters struct {
	Status  *enums.BillingStatus
	OrderID *uuid.UUID
}

type RecordDTO struct {
	ID          uuid.UUID           `json:"billing_id"`
	OrderID     uuid.UUID           `json:"order_id"`
	OrderLineID uuid.UUID           `json:"order_line_id"`
	VendorID    uuid.UUID           `json:"vendor_id"`
	ItemID      uuid.UUID           `json:"item_id"`
	ItemName    string              `json:"item_name"`
	Quantity    decimal.Decimal     `json:"quantity"`
	Cost        decimal.Decimal     `json:"cost"`
	Total       decimal.Decimal     `json:"total"`
	Status      enums.BillingStatus `json:"status"`
	Notes       *string             `json:"notes,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type RecordList struct {
	Records    []RecordDTO `json:"billing"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func FromModel(m models.BillingRecord) RecordDTO {
	return RecordDTO{
		ID:          m.ID,
		OrderID:     m.OrderID,
		OrderLineID: m.OrderLineID,
		VendorID:    m.VendorID,
		ItemID:      m.ItemID,
		ItemName:    m.ItemName,
		Quantity:    m.Quantity,
		Cost:        m.Cost,
		Total:       m.Total,
		Status:      m.Status,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromModels(rows []models.BillingRecord) []RecordDTO {
	out := make([]RecordDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
