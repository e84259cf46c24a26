package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// RegisterInput is the payload accepted by POST /api/users/register.
type RegisterInput struct {
	Name         string     `json:"name" validate:"required,min=2,max=50,personname"`
	Role         string     `json:"role" validate:"required"`
	MobileNumber string     `json:"mobile_number" validate:"required,mobile"`
	Email        string     `json:"email" validate:"required,email"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty"`
}

// Patch carries the optional columns of a user update.
type Patch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=50,personname"`
	Role         *string `json:"role,omitempty"`
	MobileNumber *string `json:"mobile_number,omitempty" validate:"omitempty,mobile"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Status       *string `json:"status,omitempty"`
}

// Filters narrows a user listing.
type Filters struct {
	Role   *enums.UserRole
	Status *enums.RecordStatus
}

// UserDTO is the transport shape of a user.
type UserDTO struct {
	ID           uuid.UUID          `json:"user_id"`
	Name         string             `json:"name"`
	Role         enums.UserRole     `json:"role"`
	MobileNumber string             `json:"mobile_number"`
	Email        string             `json:"email"`
	Status       enums.RecordStatus `json:"status"`
	CreatedBy    *uuid.UUID         `json:"created_by,omitempty"`
	LastLoginAt  *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// UserList is a page of users.
type UserList struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		Name:         u.Name,
		Role:         u.Role,
		MobileNumber: u.MobileNumber,
		Email:        u.Email,
		Status:       u.Status,
		CreatedBy:    u.CreatedBy,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
