package roles

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

type Service interface {
	ListRoles(ctx context.Context) ([]RoleDTO, error)
	ListFeatures(ctx context.Context) ([]FeatureDTO, error)
	ListPrivileges(ctx context.Context) ([]PrivilegeDTO, error)
	Assign(ctx context.Context, input AssignInput) error
	Revoke(ctx context.Context, input AssignInput) error
	PrivilegesFor(ctx context.Context, roleID, featureID uuid.UUID) ([]PrivilegeDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "roles repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListRoles(ctx context.Context) ([]RoleDTO, error) {
	rows, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list roles")
	}
	return roleDTOs(rows), nil
}

func (s *service) ListFeatures(ctx context.Context) ([]FeatureDTO, error) {
	rows, err := s.repo.ListFeatures(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list features")
	}
	return featureDTOs(rows), nil
}

func (s *service) ListPrivileges(ctx context.Context) ([]PrivilegeDTO, error) {
	rows, err := s.repo.ListPrivileges(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list privileges")
	}
	return privilegeDTOs(rows), nil
}

// Assign grants the privilege. Granting the same triple twice is a conflict.
func (s *service) Assign(ctx context.Context, input AssignInput) error {
	if err := validateGrant(input); err != nil {
		return err
	}
	if err := s.ensureRoleFeature(ctx, input.RoleID, input.FeatureID); err != nil {
		return err
	}
	ok, err := s.repo.PrivilegeExists(ctx, input.PrivilegeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup privilege")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "privilege not found")
	}

	grant := &models.RoleFeaturePrivilege{
		RoleID:      input.RoleID,
		FeatureID:   input.FeatureID,
		PrivilegeID: input.PrivilegeID,
	}
	if err := s.repo.Assign(ctx, grant); err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "privilege already assigned")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign privilege")
	}
	return nil
}

func (s *service) Revoke(ctx context.Context, input AssignInput) error {
	if err := validateGrant(input); err != nil {
		return err
	}
	removed, err := s.repo.Revoke(ctx, input.RoleID, input.FeatureID, input.PrivilegeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke privilege")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "privilege assignment not found")
	}
	return nil
}

// PrivilegesFor lists the privileges a role holds on a feature. An unknown
// role or feature is not found; a known pair without grants is empty.
func (s *service) PrivilegesFor(ctx context.Context, roleID, featureID uuid.UUID) ([]PrivilegeDTO, error) {
	if err := s.ensureRoleFeature(ctx, roleID, featureID); err != nil {
		return nil, err
	}
	rows, err := s.repo.PrivilegesFor(ctx, roleID, featureID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list role privileges")
	}
	return privilegeDTOs(rows), nil
}

func (s *service) ensureRoleFeature(ctx context.Context, roleID, featureID uuid.UUID) error {
	ok, err := s.repo.RoleExists(ctx, roleID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup role")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
	}
	ok, err = s.repo.FeatureExists(ctx, featureID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup feature")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "feature not found")
	}
	return nil
}

func validateGrant(input AssignInput) error {
	fields := pkgerrors.Fields{}
	if input.RoleID == uuid.Nil {
		fields.Add("role_id", "is required")
	}
	if input.FeatureID == uuid.Nil {
		fields.Add("feature_id", "is required")
	}
	if input.PrivilegeID == uuid.Nil {
		fields.Add("privilege_id", "is required")
	}
	return fields.Err()
}
