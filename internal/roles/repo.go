package roles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

// Repository persists roles, features, privileges and the grants between them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListRoles(ctx context.Context) ([]models.Role, error)
	ListFeatures(ctx context.Context) ([]models.Feature, error)
	ListPrivileges(ctx context.Context) ([]models.Privilege, error)

	RoleExists(ctx context.Context, id uuid.UUID) (bool, error)
	FeatureExists(ctx context.Context, id uuid.UUID) (bool, error)
	PrivilegeExists(ctx context.Context, id uuid.UUID) (bool, error)

	Assign(ctx context.Context, grant *models.RoleFeaturePrivilege) error
	Revoke(ctx context.Context, roleID, featureID, privilegeID uuid.UUID) (bool, error)
	PrivilegesFor(ctx context.Context, roleID, featureID uuid.UUID) ([]models.Privilege, error)
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

func (r *repository) ListRoles(ctx context.Context) ([]models.Role, error) {
	var rows []models.Role
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListFeatures(ctx context.Context) ([]models.Feature, error) {
	var rows []models.Feature
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListPrivileges(ctx context.Context) ([]models.Privilege, error) {
	var rows []models.Privilege
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) RoleExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &models.Role{}, id)
}

func (r *repository) FeatureExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &models.Feature{}, id)
}

func (r *repository) PrivilegeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &models.Privilege{}, id)
}

func (r *repository) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) Assign(ctx context.Context, grant *models.RoleFeaturePrivilege) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *repository) Revoke(ctx context.Context, roleID, featureID, privilegeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("role_id = ? AND feature_id = ? AND privilege_id = ?", roleID, featureID, privilegeID).
		Delete(&models.RoleFeaturePrivilege{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) PrivilegesFor(ctx context.Context, roleID, featureID uuid.UUID) ([]models.Privilege, error) {
	var rows []models.Privilege
	err := r.db.WithContext(ctx).
		Table("privileges p").
		Select("p.id, p.name, p.created_at").
		Joins("JOIN role_feature_privileges rfp ON rfp.privilege_id = p.id").
		Where("rfp.role_id = ? AND rfp.feature_id = ?", roleID, featureID).
		Order("p.name ASC").
		Scan(&rows).Error
	return rows, err
}
