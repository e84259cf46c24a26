package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/billing"
	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/events"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service builds and maintains the order aggregate: header, lines, billing
// records and stock, always inside one transaction.
type Service interface {
	Create(ctx context.Context, input Input) (*OrderDTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*OrderDTO, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, filters Filters, params pagination.Params) (*OrderList, error)
}

type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Catalog   catalog.Resolver
	Billing   billing.Projector
	Stock     stock.Mutator
	Publisher events.Publisher
	Metrics   *metrics.DomainMetrics
	Logger    *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	catalog   catalog.Resolver
	billing   billing.Projector
	stock     stock.Mutator
	publisher events.Publisher
	metrics   *metrics.DomainMetrics
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case params.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog resolver required")
	case params.Billing == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "billing projector required")
	case params.Stock == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock mutator required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		catalog:   params.Catalog,
		billing:   params.Billing,
		stock:     params.Stock,
		publisher: publisher,
		metrics:   params.Metrics,
		logg:      logg,
	}, nil
}

// draft is a validated request before catalog resolution.
type draft struct {
	vendorID  uuid.UUID
	orderDate time.Time
	status    enums.OrderStatus
	notes     *string
	lines     []draftLine
}

type draftLine struct {
	ref      catalog.ItemRef
	quantity decimal.Decimal
	unit     enums.Unit
	quoted   *decimal.Decimal
}

func validateInput(input Input, now time.Time) (*draft, error) {
	fields := pkgerrors.Fields{}
	if input.VendorID == uuid.Nil {
		fields.Add("vendor_id", "is required")
	}
	if len(input.Lines) == 0 {
		fields.Add("lines", "must contain at least one line")
	}

	status := enums.OrderStatusPending
	if raw := strings.TrimSpace(input.Status); raw != "" {
		parsed, err := enums.ParseOrderStatus(raw)
		if err != nil || parsed == enums.OrderStatusCancelled {
			fields.Add("status", "must be one of Pending, Completed, Paid")
		} else {
			status = parsed
		}
	}

	d := &draft{
		vendorID:  input.VendorID,
		orderDate: now,
		status:    status,
		notes:     input.Notes,
		lines:     make([]draftLine, 0, len(input.Lines)),
	}
	if input.OrderDate != nil && !input.OrderDate.IsZero() {
		d.orderDate = input.OrderDate.UTC()
	}

	for i, line := range input.Lines {
		key := func(field string) string { return linesKey(i, field) }
		dl := draftLine{quoted: line.UnitPrice}

		switch {
		case line.ItemID != nil && *line.ItemID != uuid.Nil:
			id := *line.ItemID
			dl.ref = catalog.ItemRef{ID: &id}
		case strings.TrimSpace(line.ItemName) != "":
			dl.ref = catalog.ItemRef{Name: strings.TrimSpace(line.ItemName)}
		default:
			fields.Add(key("item_id"), "item_id or item_name is required")
		}

		switch {
		case line.Quantity != nil:
			dl.quantity = *line.Quantity
		case strings.TrimSpace(line.QuantityUnit) != "":
			qty, unit, ok := ParseQuantityUnit(line.QuantityUnit)
			if !ok {
				fields.Add(key("quantity_unit"), "must look like 5kg, 250g, 1.5litre, 500ml or 12pcs")
			}
			dl.quantity, dl.unit = qty, unit
		default:
			fields.Add(key("quantity"), "quantity or quantity_unit is required")
		}
		if line.Quantity != nil && !line.Quantity.IsPositive() {
			fields.Add(key("quantity"), "must be greater than 0")
		} else if line.Quantity == nil && dl.unit != "" && !dl.quantity.IsPositive() {
			fields.Add(key("quantity_unit"), "must be greater than 0")
		}
		if !dl.quantity.Equal(dl.quantity.Truncate(quantityScale)) {
			field := "quantity"
			if line.Quantity == nil {
				field = "quantity_unit"
			}
			fields.Add(key(field), fmt.Sprintf("must have at most %d decimal places", quantityScale))
		}
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			fields.Add(key("unit_price"), "must be greater than or equal to 0")
		}

		d.lines = append(d.lines, dl)
	}

	if err := fields.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func linesKey(i int, field string) string {
	return fmt.Sprintf("lines[%d].%s", i, field)
}

// built is the resolved aggregate that is written and returned.
type built struct {
	vendor *catalog.ResolvedVendor
	lines  []models.OrderLine
	total  decimal.Decimal
}

// build resolves the vendor and every item on the caller's transaction and
// computes line totals from the catalog cost.
func (s *service) build(ctx context.Context, resolver catalog.Resolver, d *draft) (*built, error) {
	vendor, err := resolver.ResolveVendor(ctx, d.vendorID)
	if err != nil {
		return nil, err
	}

	out := &built{vendor: vendor, total: decimal.Zero, lines: make([]models.OrderLine, 0, len(d.lines))}
	for _, dl := range d.lines {
		item, err := resolver.ResolveItemCost(ctx, dl.ref)
		if err != nil {
			return nil, err
		}
		unit := dl.unit
		if unit == "" {
			unit = item.Unit
		}
		lineTotal := billing.LineTotal(dl.quantity, item.UnitCost)
		out.lines = append(out.lines, models.OrderLine{
			ItemID:      item.ItemID,
			ItemName:    item.Name,
			Quantity:    dl.quantity,
			Unit:        unit,
			UnitPrice:   item.UnitCost,
			QuotedPrice: dl.quoted,
			LineTotal:   lineTotal,
		})
		out.total = out.total.Add(lineTotal)
	}
	return out, nil
}

// writeLines persists lines, projects billing and applies stock for them.
func (s *service) writeLines(ctx context.Context, tx *gorm.DB, order *models.Order, lines []models.OrderLine) error {
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	if err := s.repo.WithTx(tx).CreateLines(ctx, lines); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order lines")
	}

	billable := make([]billing.Line, 0, len(lines))
	for _, line := range lines {
		billable = append(billable, billing.Line{
			OrderLineID: line.ID,
			ItemID:      line.ItemID,
			ItemName:    line.ItemName,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitPrice,
		})
	}
	if _, err := s.billing.WithTx(tx).Project(ctx, order.ID, order.VendorID, billable); err != nil {
		return err
	}
	return s.adjustStock(ctx, tx, order.VendorID, lines, false)
}

func (s *service) adjustStock(ctx context.Context, tx *gorm.DB, vendorID uuid.UUID, lines []models.OrderLine, reverse bool) error {
	mutator := s.stock.WithTx(tx)
	for _, line := range lines {
		delta := line.Quantity
		if reverse {
			delta = delta.Neg()
		}
		if err := mutator.Adjust(ctx, stock.Adjustment{
			ItemID:   line.ItemID,
			VendorID: vendorID,
			Delta:    delta,
			Unit:     line.Unit,
			UnitCost: line.UnitPrice,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, input Input) (*OrderDTO, error) {
	d, err := validateInput(input, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	var (
		order models.Order
		agg   *built
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		agg, err = s.build(ctx, s.catalog.WithTx(tx), d)
		if err != nil {
			return err
		}

		order = models.Order{
			VendorID:  d.vendorID,
			OrderDate: d.orderDate,
			Status:    d.status,
			Total:     agg.total,
			Notes:     d.notes,
		}
		if err := s.repo.WithTx(tx).CreateOrder(ctx, &order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert order")
		}
		return s.writeLines(ctx, tx, &order, agg.lines)
	})
	if err != nil {
		return nil, err
	}

	order.Lines = agg.lines
	dto := orderDTO(order, agg.vendor.Name)
	s.metrics.IncOrder("created")
	s.publish(ctx, events.OrderCreated, dto)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*OrderDTO, error) {
	d, err := validateInput(input, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	var (
		order models.Order
		agg   *built
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindOrder(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if current.Status != enums.OrderStatusPending {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is %s and can no longer be edited", current.Status)
		}
		if err := s.billing.WithTx(tx).EnsureAllPending(ctx, id); err != nil {
			return err
		}
		if input.OrderDate == nil {
			d.orderDate = current.OrderDate
		}

		agg, err = s.build(ctx, s.catalog.WithTx(tx), d)
		if err != nil {
			return err
		}

		oldLines, err := repo.ListLines(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order lines")
		}
		if err := s.adjustStock(ctx, tx, current.VendorID, oldLines, true); err != nil {
			return err
		}
		if err := s.billing.WithTx(tx).DeleteForOrder(ctx, id); err != nil {
			return err
		}
		if err := repo.DeleteLines(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order lines")
		}

		columns := map[string]any{
			"vendor_id":  d.vendorID,
			"order_date": d.orderDate,
			"status":     d.status,
			"total":      agg.total,
			"notes":      d.notes,
		}
		ok, err := repo.UpdateOrder(ctx, id, enums.OrderStatusPending, columns)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently")
		}

		order = *current
		order.VendorID = d.vendorID
		order.OrderDate = d.orderDate
		order.Status = d.status
		order.Total = agg.total
		order.Notes = d.notes
		order.UpdatedAt = time.Now().UTC()
		return s.writeLines(ctx, tx, &order, agg.lines)
	})
	if err != nil {
		return nil, err
	}

	order.Lines = agg.lines
	dto := orderDTO(order, agg.vendor.Name)
	s.metrics.IncOrder("updated")
	s.publish(ctx, events.OrderUpdated, dto)
	return &dto, nil
}

// Cancel soft deletes a Pending order: status moves to Cancelled, pending
// billing records are cancelled and the stock it added is reversed.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) error {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindOrder(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		switch current.Status {
		case enums.OrderStatusCancelled:
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already cancelled")
		case enums.OrderStatusPending:
		default:
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is %s and cannot be cancelled", current.Status)
		}

		ok, err := repo.UpdateOrder(ctx, id, enums.OrderStatusPending, map[string]any{"status": enums.OrderStatusCancelled})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already cancelled")
		}
		if err := s.billing.WithTx(tx).CancelForOrder(ctx, id); err != nil {
			return err
		}

		lines, err := repo.ListLines(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order lines")
		}
		if err := s.adjustStock(ctx, tx, current.VendorID, lines, true); err != nil {
			return err
		}

		current.Status = enums.OrderStatusCancelled
		current.Lines = lines
		order = current
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncOrder("cancelled")
	s.publish(ctx, events.OrderCancelled, orderDTO(*order, ""))
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindDetailed(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	dto := orderDTO(*order, "")
	return &dto, nil
}

func (s *service) List(ctx context.Context, filters Filters, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, filters, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	rows, next := pagination.Split(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})

	list := &OrderList{Orders: make([]OrderDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		list.Orders = append(list.Orders, orderDTO(row, ""))
	}
	return list, nil
}

// publish emits an order event after commit. Failures are logged and counted.
func (s *service) publish(ctx context.Context, eventType events.Type, order OrderDTO) {
	env, err := events.NewEnvelope(eventType, order.ID, EventPayload{
		OrderID:  order.ID,
		VendorID: order.VendorID,
		Status:   order.Status,
		Total:    order.Total,
		Lines:    len(order.Lines),
	})
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.metrics.IncEventFailure(string(eventType))
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "publish order event failed", err)
	}
}
