package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// Repository persists order headers and lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindDetailed(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
	DeleteLines(ctx context.Context, orderID uuid.UUID) error
	UpdateOrder(ctx context.Context, id uuid.UUID, from enums.OrderStatus, columns map[string]any) (bool, error)
	List(ctx context.Context, filters Filters, params pagination.Params, cursor *pagination.Cursor) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindDetailed(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at, id").Find(&lines).Error
	return lines, err
}

func (r *repository) DeleteLines(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.OrderLine{}).Error
}

// UpdateOrder writes columns only while the order still holds status from.
func (r *repository) UpdateOrder(ctx context.Context, id uuid.UUID, from enums.OrderStatus, columns map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ? AND is_deleted = ?", id, from, false).
		Updates(columns)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) List(ctx context.Context, filters Filters, params pagination.Params, cursor *pagination.Cursor) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Vendor").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Where("is_deleted = ?", false)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.VendorID != nil {
		query = query.Where("vendor_id = ?", *filters.VendorID)
	}

	var rows []models.Order
	if err := query.Scopes(pagination.Scope("", params, cursor)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
