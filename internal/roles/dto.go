package roles

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
)

// AssignInput grants a privilege on a feature to a role.
type AssignInput struct {
	RoleID      uuid.UUID `json:"role_id" validate:"required"`
	FeatureID   uuid.UUID `json:"feature_id" validate:"required"`
	PrivilegeID uuid.UUID `json:"privilege_id" validate:"required"`
}

type RoleDTO struct {
	ID   uuid.UUID `json:"role_id"`
	Name string    `json:"role_name"`
}

type FeatureDTO struct {
	ID   uuid.UUID `json:"feature_id"`
	Name string    `json:"feature_name"`
}

type PrivilegeDTO struct {
	ID   uuid.UUID `json:"privilege_id"`
	Name string    `json:"privilege_name"`
}

func roleDTOs(rows []models.Role) []RoleDTO {
	out := make([]RoleDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, RoleDTO{ID: row.ID, Name: row.Name})
	}
	return out
}

func featureDTOs(rows []models.Feature) []FeatureDTO {
	out := make([]FeatureDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FeatureDTO{ID: row.ID, Name: row.Name})
	}
	return out
}

func privilegeDTOs(rows []models.Privilege) []PrivilegeDTO {
	out := make([]PrivilegeDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, PrivilegeDTO{ID: row.ID, Name: row.Name})
	}
	return out
}
