package alerts

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// LowStockPrefix names alerts raised by the low stock job.
const LowStockPrefix = "Low stock: "

type CreateInput struct {
	ItemID    uuid.UUID `json:"item_id" validate:"required"`
	AlertName string    `json:"alert_name" validate:"required,min=3,max=100"`
}

type AlertDTO struct {
	ID        uuid.UUID  `json:"alert_id"`
	ItemID    uuid.UUID  `json:"item_id"`
	AlertName string     `json:"alert_name"`
	StartedAt time.Time  `json:"start_date"`
	EndedAt   *time.Time `json:"end_date,omitempty"`
	Current   bool       `json:"current"`
}

type AlertList struct {
	Alerts []AlertDTO `json:"alerts"`
}

// LowStockSource lists stock entries sitting below their threshold.
type LowStockSource interface {
	ListBelowThreshold(ctx context.Context) ([]stock.LowStock, error)
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*AlertDTO, error)
	Close(ctx context.Context, id uuid.UUID) (*AlertDTO, error)
	List(ctx context.Context, currentOnly bool, limit int) (*AlertList, error)
	RaiseLowStock(ctx context.Context) (int, error)
}

type service struct {
	repo    Repository
	catalog catalog.Resolver
	stock   LowStockSource
	now     func() time.Time
}

func NewService(repo Repository, resolver catalog.Resolver, source LowStockSource) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alerts repository required")
	}
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog resolver required")
	}
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "low stock source required")
	}
	return &service{
		repo:    repo,
		catalog: resolver,
		stock:   source,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func toDTO(m models.Alert) AlertDTO {
	return AlertDTO{
		ID:        m.ID,
		ItemID:    m.ItemID,
		AlertName: m.AlertName,
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
		Current:   m.Current(),
	}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*AlertDTO, error) {
	fields := pkgerrors.Fields{}
	name := strings.TrimSpace(input.AlertName)
	if input.ItemID == uuid.Nil {
		fields.Add("item_id", "is required")
	}
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		fields.Add("alert_name", "must be between 3 and 100 characters")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	if _, err := s.catalog.ResolveItemCost(ctx, catalog.ItemRef{ID: &input.ItemID}); err != nil {
		return nil, err
	}

	alert := &models.Alert{ItemID: input.ItemID, AlertName: name, StartedAt: s.now()}
	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create alert")
	}
	dto := toDTO(*alert)
	return &dto, nil
}

func (s *service) Close(ctx context.Context, id uuid.UUID) (*AlertDTO, error) {
	closed, err := s.repo.Close(ctx, id, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close alert")
	}

	alert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load alert")
	}
	if !closed {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "alert is already closed")
	}
	dto := toDTO(*alert)
	return &dto, nil
}

func (s *service) List(ctx context.Context, currentOnly bool, limit int) (*AlertList, error) {
	rows, err := s.repo.List(ctx, currentOnly, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list alerts")
	}
	out := &AlertList{Alerts: make([]AlertDTO, 0, len(rows))}
	for _, row := range rows {
		out.Alerts = append(out.Alerts, toDTO(row))
	}
	return out, nil
}

// RaiseLowStock opens one alert per item below threshold unless an open one
// with the same name already exists. It returns the number raised.
func (s *service) RaiseLowStock(ctx context.Context) (int, error) {
	entries, err := s.stock.ListBelowThreshold(ctx)
	if err != nil {
		return 0, err
	}

	raised := 0
	seen := map[uuid.UUID]bool{}
	for _, entry := range entries {
		if seen[entry.ItemID] {
			continue
		}
		seen[entry.ItemID] = true

		name := LowStockPrefix + entry.ItemName
		open, err := s.repo.HasOpen(ctx, entry.ItemID, name)
		if err != nil {
			return raised, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check open alert")
		}
		if open {
			continue
		}
		if err := s.repo.Create(ctx, &models.Alert{ItemID: entry.ItemID, AlertName: name, StartedAt: s.now()}); err != nil {
			return raised, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create low stock alert")
		}
		raised++
	}
	return raised, nil
}
