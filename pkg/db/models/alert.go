package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Alert is an open or closed notice attached to a catalog item.
type Alert struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ItemID    uuid.UUID  `gorm:"column:item_id;type:uuid;not null"`
	AlertName string     `gorm:"column:alert_name;not null"`
	StartedAt time.Time  `gorm:"column:started_at;not null"`
	EndedAt   *time.Time `gorm:"column:ended_at"`
}

func (Alert) TableName() string { return "alerts" }

func (m *Alert) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Current reports whether the alert has not been closed.
func (m Alert) Current() bool {
	return m.EndedAt == nil
}
