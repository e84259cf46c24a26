package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

// Repository persists alerts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, alert *models.Alert) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	List(ctx context.Context, currentOnly bool, limit int) ([]models.Alert, error)
	Close(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	HasOpen(ctx context.Context, itemID uuid.UUID, name string) (bool, error)
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

func (r *repository) Create(ctx context.Context, alert *models.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	var alert models.Alert
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repository) List(ctx context.Context, currentOnly bool, limit int) ([]models.Alert, error) {
	query := r.db.WithContext(ctx).Model(&models.Alert{})
	if currentOnly {
		query = query.Where("ended_at IS NULL")
	}
	var rows []models.Alert
	err := query.Order("started_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// Close stamps ended_at on an open alert. It reports false when the alert is
// missing or already closed.
func (r *repository) Close(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("id = ? AND ended_at IS NULL", id).
		Update("ended_at", at)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) HasOpen(ctx context.Context, itemID uuid.UUID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("item_id = ? AND alert_name = ? AND ended_at IS NULL", itemID, name).
		Count(&count).Error
	return count > 0, err
}
