package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// Repository exposes user and login history persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByMobile(ctx context.Context, mobile string) (*models.User, error)
	List(ctx context.Context, filters Filters, params pagination.Params, cursor *pagination.Cursor) ([]models.User, error)
	Update(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	CreateLogin(ctx context.Context, entry *models.LoginHistory) error
	CloseLogin(ctx context.Context, sessionID string, at time.Time) (bool, error)
	ExpireLogins(ctx context.Context, loggedInBefore, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByMobile(ctx context.Context, mobile string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("mobile_number = ?", mobile).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) List(ctx context.Context, filters Filters, params pagination.Params, cursor *pagination.Cursor) ([]models.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var rows []models.User
	if err := query.Scopes(pagination.Scope("", params, cursor)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, columns map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(columns)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	return res.RowsAffected > 0, res.Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func (r *repository) CreateLogin(ctx context.Context, entry *models.LoginHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CloseLogin marks the active login row of a session Inactive.
func (r *repository) CloseLogin(ctx context.Context, sessionID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.LoginHistory{}).
		Where("session_id = ? AND status = ?", sessionID, enums.RecordStatusActive).
		Updates(map[string]any{"status": enums.RecordStatusInactive, "logout_at": at})
	return res.RowsAffected > 0, res.Error
}

// ExpireLogins closes active login rows whose session can no longer be live.
func (r *repository) ExpireLogins(ctx context.Context, loggedInBefore, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.LoginHistory{}).
		Where("status = ? AND login_at < ?", enums.RecordStatusActive, loggedInBefore).
		Updates(map[string]any{"status": enums.RecordStatusInactive, "logout_at": at})
	return res.RowsAffected, res.Error
}
