package orders

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// LineInput is one requested order line. The item is referenced by id or by
// exact name; the quantity comes from quantity or from quantity_unit ("5kg").
type LineInput struct {
	ItemID       *uuid.UUID       `json:"item_id"`
	ItemName     string           `json:"item_name" validate:"omitempty,max=100"`
	Quantity     *decimal.Decimal `json:"quantity"`
	QuantityUnit string           `json:"quantity_unit" validate:"omitempty,max=30"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
}

// Input is the payload of both create and full update.
type Input struct {
	VendorID  uuid.UUID   `json:"vendor_id" validate:"required"`
	OrderDate *Date       `json:"order_date"`
	Status    string      `json:"status" validate:"omitempty,oneof=Pending Completed Paid"`
	Notes     *string     `json:"notes" validate:"omitempty,max=500"`
	Lines     []LineInput `json:"lines" validate:"required,min=1,dive"`
}

// Date decodes either an RFC3339 timestamp or a plain 2006-01-02 date.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return &time.ParseError{Layout: time.DateOnly, Value: raw, Message: ": expected RFC3339 or YYYY-MM-DD"}
}

type Filters struct {
	Status   *enums.OrderStatus
	VendorID *uuid.UUID
}

type LineDTO struct {
	ID           uuid.UUID        `json:"line_id"`
	ItemID       uuid.UUID        `json:"item_id"`
	ItemName     string           `json:"item_name"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Unit         enums.Unit       `json:"unit"`
	QuantityUnit string           `json:"quantity_unit"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	QuotedPrice  *decimal.Decimal `json:"quoted_price,omitempty"`
	LineTotal    decimal.Decimal  `json:"line_total"`
}

type OrderDTO struct {
	ID         uuid.UUID         `json:"order_id"`
	VendorID   uuid.UUID         `json:"vendor_id"`
	VendorName string            `json:"vendor_name,omitempty"`
	OrderDate  time.Time         `json:"order_date"`
	Status     enums.OrderStatus `json:"status"`
	Total      decimal.Decimal   `json:"total"`
	Notes      *string           `json:"notes,omitempty"`
	Lines      []LineDTO         `json:"lines"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// EventPayload is the data carried by order events.
type EventPayload struct {
	OrderID  uuid.UUID         `json:"order_id"`
	VendorID uuid.UUID         `json:"vendor_id"`
	Status   enums.OrderStatus `json:"status"`
	Total    decimal.Decimal   `json:"total"`
	Lines    int               `json:"line_count"`
}

// quantityScale is the number of decimal places quantities are stored with.
const quantityScale = 3

var quantityUnitPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(kg|g|litre|ml|pcs)$`)

// ParseQuantityUnit splits "2.5kg" into its quantity and unit.
func ParseQuantityUnit(value string) (decimal.Decimal, enums.Unit, bool) {
	match := quantityUnitPattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return decimal.Zero, "", false
	}
	qty, err := decimal.NewFromString(match[1])
	if err != nil {
		return decimal.Zero, "", false
	}
	unit, err := enums.ParseUnit(match[2])
	if err != nil {
		return decimal.Zero, "", false
	}
	return qty, unit, true
}

// FormatQuantityUnit renders the inverse of ParseQuantityUnit.
func FormatQuantityUnit(quantity decimal.Decimal, unit enums.Unit) string {
	return quantity.String() + string(unit)
}

func lineDTO(m models.OrderLine) LineDTO {
	return LineDTO{
		ID:           m.ID,
		ItemID:       m.ItemID,
		ItemName:     m.ItemName,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		QuantityUnit: FormatQuantityUnit(m.Quantity, m.Unit),
		UnitPrice:    m.UnitPrice,
		QuotedPrice:  m.QuotedPrice,
		LineTotal:    m.LineTotal,
	}
}

func orderDTO(m models.Order, vendorName string) OrderDTO {
	if vendorName == "" && m.Vendor != nil {
		vendorName = m.Vendor.VendorName
	}
	lines := make([]LineDTO, 0, len(m.Lines))
	for _, line := range m.Lines {
		lines = append(lines, lineDTO(line))
	}
	return OrderDTO{
		ID:         m.ID,
		VendorID:   m.VendorID,
		VendorName: vendorName,
		OrderDate:  m.OrderDate,
		Status:     m.Status,
		Total:      m.Total,
		Notes:      m.Notes,
		Lines:      lines,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
