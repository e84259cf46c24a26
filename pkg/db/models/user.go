package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// User is an operator who logs in with a one-time code sent to their mobile.
type User struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	Role         enums.UserRole     `gorm:"column:role;not null"`
	MobileNumber string             `gorm:"column:mobile_number;not null;uniqueIndex"`
	Email        string             `gorm:"column:email;not null;uniqueIndex"`
	Status       enums.RecordStatus `gorm:"column:status;not null;default:'Active'"`
	CreatedBy    *uuid.UUID         `gorm:"column:created_by;type:uuid"`
	LastLoginAt  *time.Time         `gorm:"column:last_login_at"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (m *User) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// LoginHistory records a session opened through OTP login.
type LoginHistory struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	SessionID string             `gorm:"column:session_id;not null"`
	Status    enums.RecordStatus `gorm:"column:status;not null;default:'Active'"`
	LoginAt   time.Time          `gorm:"column:login_at;not null"`
	LogoutAt  *time.Time         `gorm:"column:logout_at"`
}

func (LoginHistory) TableName() string { return "login_history" }

func (m *LoginHistory) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
