package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// Vendor is a supplier orders are placed with.
type Vendor struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	VendorName    string             `gorm:"column:vendor_name;not null"`
	LicenseNumber *string            `gorm:"column:license_number"`
	GSTNumber     *string            `gorm:"column:gst_number"`
	PANNumber     *string            `gorm:"column:pan_number"`
	ContactPerson *string            `gorm:"column:contact_person"`
	ContactMobile *string            `gorm:"column:contact_mobile"`
	ContactEmail  *string            `gorm:"column:contact_email"`
	MobileNumber  *string            `gorm:"column:mobile_number"`
	FullAddress   *string            `gorm:"column:full_address"`
	Status        enums.RecordStatus `gorm:"column:status;not null;default:'Active'"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vendor) TableName() string { return "vendors" }

func (m *Vendor) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
