package billing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// Repository persists billing records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateMany(ctx context.Context, records []models.BillingRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BillingRecord, error)
	List(ctx context.Context, filters Filters, params pagination.Params, cursor *pagination.Cursor) ([]models.BillingRecord, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from enums.BillingStatus, columns map[string]any) (bool, error)
	CancelPendingForOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	DeleteForOrder(ctx context.Context, orderID uuid.UUID) error
	CountNotPending(ctx context.Context, orderID uuid.UUID) (int64, error)

	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UnbilledLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a billing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateMany(ctx context.Context, records []models.BillingRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BillingRecord, error) {
	var record models.BillingRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context, filters Filters, params pagination.Params, cursor *pagination.Cursor) ([]models.BillingRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.BillingRecord{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.OrderID != nil {
		query = query.Where("order_id = ?", *filters.OrderID)
	}

	var rows []models.BillingRecord
	if err := query.Scopes(pagination.Scope("", params, cursor)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TransitionStatus updates the record only while it still holds status from.
func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from enums.BillingStatus, columns map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BillingRecord{}).
		Where("id = ? AND status = ?", id, from).
		Updates(columns)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) CancelPendingForOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BillingRecord{}).
		Where("order_id = ? AND status = ?", orderID, enums.BillingStatusPending).
		Update("status", enums.BillingStatusCancelled)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteForOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.BillingRecord{}).Error
}

func (r *repository) CountNotPending(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BillingRecord{}).
		Where("order_id = ? AND status <> ?", orderID, enums.BillingStatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", orderID, false).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UnbilledLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Where("order_lines.order_id = ?", orderID).
		Where("NOT EXISTS (SELECT 1 FROM billing_records WHERE billing_records.order_line_id = order_lines.id)").
		Order("order_lines.created_at, order_lines.id").
		Find(&lines).Error
	return lines, err
}
