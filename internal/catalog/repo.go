package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// Repository persists catalog items and vendors.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateItem(ctx context.Context, item *models.CatalogItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	FindItemByName(ctx context.Context, name string) (*models.CatalogItem, error)
	ListItems(ctx context.Context, filters ItemFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.CatalogItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error)
	SoftDeleteItem(ctx context.Context, id uuid.UUID) (bool, error)

	CreateVendor(ctx context.Context, vendor *models.Vendor) error
	FindVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	ListVendors(ctx context.Context, status *enums.RecordStatus, params pagination.Params, cursor *pagination.Cursor) ([]models.Vendor, error)
	UpdateVendor(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindItemByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemByName(ctx context.Context, name string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).Where("name = ? AND is_deleted = ?", name, false).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, filters ItemFilters, params pagination.Params, cursor *pagination.Cursor) ([]models.CatalogItem, error) {
	query := r.db.WithContext(ctx).Model(&models.CatalogItem{}).Where("is_deleted = ?", false)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var items []models.CatalogItem
	if err := query.Scopes(pagination.Scope("", params, cursor)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateItem(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CatalogItem{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(columns)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) SoftDeleteItem(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CatalogItem{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"is_deleted": true, "status": enums.RecordStatusInactive})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

func (r *repository) FindVendorByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) ListVendors(ctx context.Context, status *enums.RecordStatus, params pagination.Params, cursor *pagination.Cursor) ([]models.Vendor, error) {
	query := r.db.WithContext(ctx).Model(&models.Vendor{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var vendors []models.Vendor
	if err := query.Scopes(pagination.Scope("", params, cursor)).Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *repository) UpdateVendor(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", id).
		Updates(columns)
	return res.RowsAffected > 0, res.Error
}
