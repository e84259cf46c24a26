package inventoryrequests

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// Service manages restock requests.
type Service interface {
	Create(ctx context.Context, input Input) (*RequestDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RequestDTO, error)
	List(ctx context.Context, params pagination.Params) (*RequestList, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*RequestDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory request repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

type draft struct {
	items      []models.InventoryRequestItem
	totalPrice decimal.Decimal
	itemCount  int
}

// prepare validates items and computes total_price = Σ price × qty and
// item_count = Σ qty.
func prepare(items []ItemInput) (*draft, error) {
	fields := pkgerrors.Fields{}
	if len(items) == 0 {
		fields.Add("items", "must contain at least 1 entries")
	}
	d := &draft{totalPrice: decimal.Zero}
	for i, in := range items {
		name := strings.TrimSpace(in.ItemName)
		if name == "" {
			fields.Add(fmt.Sprintf("items[%d].item_name", i), "is required")
		}
		if in.Quantity <= 0 {
			fields.Add(fmt.Sprintf("items[%d].quantity", i), "must be greater than 0")
		}
		if in.Price == nil {
			fields.Add(fmt.Sprintf("items[%d].price", i), "is required")
			continue
		}
		if in.Price.IsNegative() {
			fields.Add(fmt.Sprintf("items[%d].price", i), "must be greater than or equal to 0")
			continue
		}
		price := in.Price.Round(2)
		d.items = append(d.items, models.InventoryRequestItem{ItemName: name, Quantity: in.Quantity, Price: price})
		d.totalPrice = d.totalPrice.Add(price.Mul(decimal.NewFromInt(int64(in.Quantity))))
		d.itemCount += in.Quantity
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	d.totalPrice = d.totalPrice.Round(2)
	return d, nil
}

func (d *draft) bind(requestID uuid.UUID) {
	for i := range d.items {
		d.items[i].RequestID = requestID
	}
}

func (s *service) Create(ctx context.Context, input Input) (*RequestDTO, error) {
	d, err := prepare(input.Items)
	if err != nil {
		return nil, err
	}
	req := &models.InventoryRequest{
		RequestedBy: strings.TrimSpace(input.RequestedBy),
		TotalPrice:  d.totalPrice,
		ItemCount:   d.itemCount,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, req); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create inventory request")
		}
		d.bind(req.ID)
		if err := repo.CreateItems(ctx, d.items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create inventory request items")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.Items = d.items
	dto := fromModel(*req)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RequestDTO, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get inventory request")
	}
	dto := fromModel(*req)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*RequestList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory requests")
	}
	rows, next := pagination.Split(rows, params.Limit, func(m models.InventoryRequest) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})

	list := &RequestList{Requests: make([]RequestDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		list.Requests = append(list.Requests, fromModel(row))
	}
	return list, nil
}

// Update replaces every item of the request and recomputes its totals.
func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*RequestDTO, error) {
	d, err := prepare(input.Items)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{
		"total_price": d.totalPrice,
		"item_count":  d.itemCount,
	}
	if by := strings.TrimSpace(input.RequestedBy); by != "" {
		columns["requested_by"] = by
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.Update(ctx, id, columns)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inventory request")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		if err := repo.DeleteItems(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete inventory request items")
		}
		d.bind(id)
		if err := repo.CreateItems(ctx, d.items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create inventory request items")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteItems(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete inventory request items")
		}
		found, err := repo.Delete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete inventory request")
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil
	})
}
