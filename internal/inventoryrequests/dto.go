package inventoryrequests

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

// ItemInput is one requested line.
type ItemInput struct {
	ItemName string           `json:"item_name" validate:"required"`
	Quantity int              `json:"quantity" validate:"gt=0"`
	Price    *decimal.Decimal `json:"price" validate:"required"`
}

// Input creates or replaces a request. On update a blank RequestedBy keeps
// the stored value.
type Input struct {
	RequestedBy string      `json:"requested_by"`
	Items       []ItemInput `json:"items" validate:"required,min=1,dive"`
}

type ItemDTO struct {
	ID       uuid.UUID       `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type RequestDTO struct {
	ID          uuid.UUID       `json:"request_id"`
	RequestedBy string          `json:"requested_by"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ItemCount   int             `json:"item_count"`
	RequestDate time.Time       `json:"request_date"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Items       []ItemDTO       `json:"items"`
}

type RequestList struct {
	Requests   []RequestDTO `json:"requests"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func fromModel(m models.InventoryRequest) RequestDTO {
	dto := RequestDTO{
		ID:          m.ID,
		RequestedBy: m.RequestedBy,
		TotalPrice:  m.TotalPrice,
		ItemCount:   m.ItemCount,
		RequestDate: m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Items:       make([]ItemDTO, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ID:       item.ID,
			ItemName: item.ItemName,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return dto
}
