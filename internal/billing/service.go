package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Projector writes the billing side of an order on the caller's transaction.
type Projector interface {
	WithTx(tx *gorm.DB) Projector
	Project(ctx context.Context, orderID, vendorID uuid.UUID, lines []Line) ([]models.BillingRecord, error)
	EnsureAllPending(ctx context.Context, orderID uuid.UUID) error
	CancelForOrder(ctx context.Context, orderID uuid.UUID) error
	DeleteForOrder(ctx context.Context, orderID uuid.UUID) error
}

// Service exposes billing reads and status changes.
type Service interface {
	Projector

	ProjectForOrder(ctx context.Context, input ProjectInput) ([]RecordDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*RecordDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RecordDTO, error)
	List(ctx context.Context, filters Filters, params pagination.Params) (*RecordList, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.DomainMetrics
}

func NewService(repo Repository, tx txRunner, m *metrics.DomainMetrics) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "billing repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx, metrics: m}, nil
}

func (s *service) WithTx(tx *gorm.DB) Projector {
	clone := *s
	clone.repo = s.repo.WithTx(tx)
	return &clone
}

// Project inserts one Pending record per line; total = quantity x cost.
func (s *service) Project(ctx context.Context, orderID, vendorID uuid.UUID, lines []Line) ([]models.BillingRecord, error) {
	records := make([]models.BillingRecord, 0, len(lines))
	for _, line := range lines {
		records = append(records, models.BillingRecord{
			OrderID:     orderID,
			OrderLineID: line.OrderLineID,
			VendorID:    vendorID,
			ItemID:      line.ItemID,
			ItemName:    line.ItemName,
			Quantity:    line.Quantity,
			Cost:        line.UnitCost,
			Total:       LineTotal(line.Quantity, line.UnitCost),
			Status:      enums.BillingStatusPending,
		})
	}
	if err := s.repo.CreateMany(ctx, records); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order line already billed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert billing records")
	}
	return records, nil
}

// LineTotal is quantity x cost rounded to cents.
func LineTotal(quantity, cost decimal.Decimal) decimal.Decimal {
	return quantity.Mul(cost).Round(2)
}

func (s *service) EnsureAllPending(ctx context.Context, orderID uuid.UUID) error {
	settled, err := s.repo.CountNotPending(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check billing status")
	}
	if settled > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order has settled billing records")
	}
	return nil
}

func (s *service) CancelForOrder(ctx context.Context, orderID uuid.UUID) error {
	n, err := s.repo.CancelPendingForOrder(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel billing records")
	}
	for i := int64(0); i < n; i++ {
		s.metrics.IncBillingTransition(enums.BillingStatusCancelled.String())
	}
	return nil
}

func (s *service) DeleteForOrder(ctx context.Context, orderID uuid.UUID) error {
	if err := s.repo.DeleteForOrder(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete billing records")
	}
	return nil
}

func (s *service) ProjectForOrder(ctx context.Context, input ProjectInput) ([]RecordDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required")
	}

	var out []RecordDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is cancelled")
		}

		rows, err := repo.UnbilledLines(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order lines")
		}
		if len(rows) == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "all order lines are already billed")
		}

		lines := make([]Line, 0, len(rows))
		for _, row := range rows {
			lines = append(lines, Line{
				OrderLineID: row.ID,
				ItemID:      row.ItemID,
				ItemName:    row.ItemName,
				Quantity:    row.Quantity,
				UnitCost:    row.UnitPrice,
			})
		}
		records, err := s.WithTx(tx).Project(ctx, order.ID, order.VendorID, lines)
		if err != nil {
			return err
		}
		out = fromModels(records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*RecordDTO, error) {
	target, err := enums.ParseBillingStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be one of Pending, Paid, Cancelled").
			WithDetails(pkgerrors.Fields{"status": "must be one of Pending, Paid, Cancelled"})
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "billing record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load billing record")
	}
	if record.Status == target && input.Notes == nil {
		dto := FromModel(*record)
		return &dto, nil
	}
	if !record.Status.CanTransitionTo(target) {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict, "billing record is %s", record.Status)
	}

	columns := map[string]any{"status": target}
	if input.Notes != nil {
		columns["notes"] = *input.Notes
	}
	ok, err := s.repo.TransitionStatus(ctx, id, record.Status, columns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update billing status")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "billing record changed concurrently")
	}
	if record.Status != target {
		s.metrics.IncBillingTransition(target.String())
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RecordDTO, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "billing record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load billing record")
	}
	dto := FromModel(*record)
	return &dto, nil
}

func (s *service) List(ctx context.Context, filters Filters, params pagination.Params) (*RecordList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, filters, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list billing records")
	}
	rows, next := pagination.Split(rows, params.Limit, func(r models.BillingRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
	return &RecordList{Records: fromModels(rows), NextCursor: next}, nil
}
