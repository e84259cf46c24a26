package stock

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// Mutator applies stock deltas on the caller's transaction.
type Mutator interface {
	WithTx(tx *gorm.DB) Mutator
	Adjust(ctx context.Context, adj Adjustment) error
}

// Service exposes stock entry management plus the mutator.
type Service interface {
	Mutator

	Create(ctx context.Context, input CreateInput) (*EntryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*EntryDTO, error)
	List(ctx context.Context, filters Filters, params pagination.Params) (*EntryList, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*EntryDTO, error)
	ListBelowThreshold(ctx context.Context) ([]LowStock, error)
}

type ServiceParams struct {
	Repo    Repository
	Catalog catalog.Resolver
	// AllowNegative disables the zero floor on outbound adjustments.
	AllowNegative bool
	Metrics       *metrics.DomainMetrics
	Now           func() time.Time
}

type service struct {
	repo          Repository
	catalog       catalog.Resolver
	allowNegative bool
	metrics       *metrics.DomainMetrics
	now           func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock repository required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog resolver required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:          params.Repo,
		catalog:       params.Catalog,
		allowNegative: params.AllowNegative,
		metrics:       params.Metrics,
		now:           now,
	}, nil
}

func (s *service) WithTx(tx *gorm.DB) Mutator {
	clone := *s
	clone.repo = s.repo.WithTx(tx)
	clone.catalog = s.catalog.WithTx(tx)
	return &clone
}

func (s *service) Adjust(ctx context.Context, adj Adjustment) error {
	if adj.ItemID == uuid.Nil || adj.VendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock adjustment requires item and vendor")
	}
	if adj.Delta.IsZero() {
		return nil
	}
	if adj.Unit == "" {
		adj.Unit = enums.UnitUnits
	}

	now := s.now()
	if adj.Delta.IsNegative() && !s.allowNegative {
		applied, err := s.repo.ApplyGuarded(ctx, adj, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust stock")
		}
		if !applied {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "insufficient stock for item %s", adj.ItemID)
		}
	} else if err := s.repo.Upsert(ctx, adj, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust stock")
	}

	s.metrics.IncStockAdjustment(adj.Delta.IsPositive())
	return nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*EntryDTO, error) {
	fields := pkgerrors.Fields{}
	if input.ItemID == uuid.Nil {
		fields.Add("item_id", "is required")
	}
	if input.VendorID == uuid.Nil {
		fields.Add("vendor_id", "is required")
	}
	if input.CurrentStock == nil {
		fields.Add("current_stock", "is required")
	} else if input.CurrentStock.IsNegative() {
		fields.Add("current_stock", "must be greater than or equal to 0")
	} else if tooPrecise(*input.CurrentStock) {
		fields.Add("current_stock", "must have at most 3 decimal places")
	}
	unit, err := enums.ParseUnit(input.Unit)
	if err != nil {
		fields.Add("unit", "is invalid")
	}
	threshold := decimal.Zero
	if input.MinThreshold != nil {
		if input.MinThreshold.IsNegative() {
			fields.Add("min_threshold", "must be greater than or equal to 0")
		} else if tooPrecise(*input.MinThreshold) {
			fields.Add("min_threshold", "must have at most 3 decimal places")
		}
		threshold = *input.MinThreshold
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		fields.Add("unit_cost", "must be greater than or equal to 0")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	item, err := s.catalog.ResolveItemCost(ctx, catalog.ItemRef{ID: &input.ItemID})
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.ResolveVendor(ctx, input.VendorID); err != nil {
		return nil, err
	}

	unitCost := item.UnitCost
	if input.UnitCost != nil {
		unitCost = input.UnitCost.Round(2)
	}

	entry := &models.StockEntry{
		ItemID:       input.ItemID,
		VendorID:     input.VendorID,
		Quantity:     *input.CurrentStock,
		Unit:         unit,
		UnitCost:     unitCost,
		MinThreshold: threshold,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock entry already exists for this item and vendor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create stock entry")
	}
	return s.Get(ctx, entry.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EntryDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get stock entry")
	}
	dto := row.toDTO()
	return &dto, nil
}

func (s *service) List(ctx context.Context, filters Filters, params pagination.Params) (*EntryList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, filters, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stock entries")
	}
	rows, next := pagination.Split(rows, params.Limit, func(r entryRow) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})

	list := &EntryList{Entries: make([]EntryDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		list.Entries = append(list.Entries, row.toDTO())
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*EntryDTO, error) {
	columns, err := patch.columns()
	if err != nil {
		return nil, err
	}

	found, err := s.repo.Update(ctx, id, columns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update stock entry")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock entry not found")
	}
	return s.Get(ctx, id)
}

// tooPrecise reports whether q would lose digits in a numeric(14,3) column.
func tooPrecise(q decimal.Decimal) bool {
	return !q.Equal(q.Truncate(3))
}

func (p Patch) columns() (map[string]any, error) {
	fields := pkgerrors.Fields{}
	columns := map[string]any{}
	if p.CurrentStock != nil {
		if p.CurrentStock.IsNegative() {
			fields.Add("current_stock", "must be greater than or equal to 0")
		} else if tooPrecise(*p.CurrentStock) {
			fields.Add("current_stock", "must have at most 3 decimal places")
		}
		columns["quantity"] = *p.CurrentStock
	}
	if p.Unit != nil {
		unit, err := enums.ParseUnit(strings.TrimSpace(*p.Unit))
		if err != nil {
			fields.Add("unit", "is invalid")
		}
		columns["unit"] = unit
	}
	if p.MinThreshold != nil {
		if p.MinThreshold.IsNegative() {
			fields.Add("min_threshold", "must be greater than or equal to 0")
		} else if tooPrecise(*p.MinThreshold) {
			fields.Add("min_threshold", "must have at most 3 decimal places")
		}
		columns["min_threshold"] = *p.MinThreshold
	}
	if p.UnitCost != nil {
		if p.UnitCost.IsNegative() {
			fields.Add("unit_cost", "must be greater than or equal to 0")
		}
		columns["unit_cost"] = p.UnitCost.Round(2)
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	return columns, nil
}

func (s *service) ListBelowThreshold(ctx context.Context) ([]LowStock, error) {
	rows, err := s.repo.ListBelowThreshold(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list low stock")
	}
	return rows, nil
}
