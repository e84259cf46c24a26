package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role names a permission group. Seeded rows mirror the user roles.
type Role struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Role) TableName() string { return "roles" }

func (m *Role) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Feature is an area of the API that privileges are granted on.
type Feature struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Feature) TableName() string { return "features" }

func (m *Feature) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

type Privilege struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Privilege) TableName() string { return "privileges" }

func (m *Privilege) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// RoleFeaturePrivilege grants one privilege on one feature to one role.
type RoleFeaturePrivilege struct {
	RoleID      uuid.UUID `gorm:"column:role_id;type:uuid;primaryKey"`
	FeatureID   uuid.UUID `gorm:"column:feature_id;type:uuid;primaryKey"`
	PrivilegeID uuid.UUID `gorm:"column:privilege_id;type:uuid;primaryKey"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RoleFeaturePrivilege) TableName() string { return "role_feature_privileges" }
