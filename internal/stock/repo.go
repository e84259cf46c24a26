package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// Repository persists stock entries. Adjustments are single statements so
// concurrent writers never lose an update.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Upsert(ctx context.Context, adj Adjustment, now time.Time) error
	ApplyGuarded(ctx context.Context, adj Adjustment, now time.Time) (bool, error)

	Create(ctx context.Context, entry *models.StockEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*entryRow, error)
	FindByItemVendor(ctx context.Context, itemID, vendorID uuid.UUID) (*models.StockEntry, error)
	List(ctx context.Context, filters Filters, params pagination.Params, cursor *pagination.Cursor) ([]entryRow, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error)
	ListBelowThreshold(ctx context.Context) ([]LowStock, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

const upsertInbound = `
INSERT INTO stock_entries (id, item_id, vendor_id, quantity, unit, unit_cost, min_threshold, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
ON CONFLICT (item_id, vendor_id) DO UPDATE
SET quantity = stock_entries.quantity + excluded.quantity,
    unit_cost = excluded.unit_cost,
    updated_at = excluded.updated_at`

const upsertOutbound = `
INSERT INTO stock_entries (id, item_id, vendor_id, quantity, unit, unit_cost, min_threshold, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
ON CONFLICT (item_id, vendor_id) DO UPDATE
SET quantity = stock_entries.quantity + excluded.quantity,
    updated_at = excluded.updated_at`

func (r *repository) Upsert(ctx context.Context, adj Adjustment, now time.Time) error {
	stmt := upsertInbound
	if adj.Delta.IsNegative() {
		stmt = upsertOutbound
	}
	return r.db.WithContext(ctx).Exec(stmt,
		uuid.New(), adj.ItemID, adj.VendorID, adj.Delta, adj.Unit, adj.UnitCost, now, now,
	).Error
}

// ApplyGuarded applies a negative delta only while the result stays at or
// above zero. It reports false when no row qualified.
func (r *repository) ApplyGuarded(ctx context.Context, adj Adjustment, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
UPDATE stock_entries
SET quantity = quantity + ?, updated_at = ?
WHERE item_id = ? AND vendor_id = ? AND quantity + ? >= 0`,
		adj.Delta, now, adj.ItemID, adj.VendorID, adj.Delta,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Create(ctx context.Context, entry *models.StockEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("stock_entries").
		Select(`stock_entries.id, stock_entries.item_id, catalog_items.name AS item_name,
stock_entries.vendor_id, vendors.vendor_name, stock_entries.quantity, stock_entries.unit,
stock_entries.unit_cost, stock_entries.min_threshold, stock_entries.created_at, stock_entries.updated_at`).
		Joins("JOIN catalog_items ON catalog_items.id = stock_entries.item_id").
		Joins("JOIN vendors ON vendors.id = stock_entries.vendor_id")
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*entryRow, error) {
	var row entryRow
	if err := r.joined(ctx).Where("stock_entries.id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindByItemVendor(ctx context.Context, itemID, vendorID uuid.UUID) (*models.StockEntry, error) {
	var entry models.StockEntry
	if err := r.db.WithContext(ctx).Where("item_id = ? AND vendor_id = ?", itemID, vendorID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) List(ctx context.Context, filters Filters, params pagination.Params, cursor *pagination.Cursor) ([]entryRow, error) {
	query := r.joined(ctx)
	if filters.ItemID != nil {
		query = query.Where("stock_entries.item_id = ?", *filters.ItemID)
	}
	if filters.VendorID != nil {
		query = query.Where("stock_entries.vendor_id = ?", *filters.VendorID)
	}
	if filters.Status != nil {
		switch *filters.Status {
		case enums.StockStatusOutOfStock:
			query = query.Where("stock_entries.quantity <= 0")
		case enums.StockStatusLow:
			query = query.Where("stock_entries.quantity > 0 AND stock_entries.quantity < stock_entries.min_threshold")
		case enums.StockStatusAvailable:
			query = query.Where("stock_entries.quantity > 0 AND stock_entries.quantity >= stock_entries.min_threshold")
		}
	}

	var rows []entryRow
	if err := query.Scopes(pagination.Scope("stock_entries", params, cursor)).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.StockEntry{}).Where("id = ?", id).Updates(columns)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) ListBelowThreshold(ctx context.Context) ([]LowStock, error) {
	var rows []LowStock
	err := r.db.WithContext(ctx).
		Table("stock_entries").
		Select("stock_entries.item_id, catalog_items.name AS item_name, stock_entries.vendor_id, stock_entries.quantity, stock_entries.min_threshold").
		Joins("JOIN catalog_items ON catalog_items.id = stock_entries.item_id").
		Where("catalog_items.is_deleted = ?", false).
		Where("stock_entries.quantity < stock_entries.min_threshold").
		Order("catalog_items.name").
		Scan(&rows).Error
	return rows, err
}
