package inventoryrequests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// Repository persists inventory requests and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, req *models.InventoryRequest) error
	CreateItems(ctx context.Context, items []models.InventoryRequestItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryRequest, error)
	List(ctx context.Context, params pagination.Params, cursor *pagination.Cursor) ([]models.InventoryRequest, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error)
	DeleteItems(ctx context.Context, requestID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, req *models.InventoryRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.InventoryRequestItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.InventoryRequest, error) {
	var req models.InventoryRequest
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_name ASC") }).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, cursor *pagination.Cursor) ([]models.InventoryRequest, error) {
	var rows []models.InventoryRequest
	err := r.db.WithContext(ctx).
		Model(&models.InventoryRequest{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_name ASC") }).
		Scopes(pagination.Scope("", params, cursor)).
		Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.InventoryRequest{}).Where("id = ?", id).Updates(columns)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) DeleteItems(ctx context.Context, requestID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("request_id = ?", requestID).Delete(&models.InventoryRequestItem{}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryRequest{})
	return res.RowsAffected > 0, res.Error
}
