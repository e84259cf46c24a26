package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// ItemRef identifies a catalog item by id or, failing that, by exact name.
type ItemRef struct {
	ID   *uuid.UUID
	Name string
}

// ResolvedItem is the subset of a catalog item an order line needs.
type ResolvedItem struct {
	ItemID   uuid.UUID
	Name     string
	Unit     enums.Unit
	UnitCost decimal.Decimal
}

// ResolvedVendor is the subset of a vendor an order needs.
type ResolvedVendor struct {
	VendorID uuid.UUID
	Name     string
}

type CreateItemInput struct {
	Name   string           `json:"name" validate:"required,min=1,max=100"`
	Type   string           `json:"type" validate:"required,max=50"`
	Unit   string           `json:"unit" validate:"omitempty,max=20"`
	Cost   *decimal.Decimal `json:"cost" validate:"required"`
	Status string           `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// ItemPatch lists the item columns a client may change; nil fields are left untouched.
type ItemPatch struct {
	Name   *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Type   *string          `json:"type" validate:"omitempty,max=50"`
	Unit   *string          `json:"unit" validate:"omitempty,max=20"`
	Cost   *decimal.Decimal `json:"cost"`
	Status *string          `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

type ItemFilters struct {
	Status *enums.RecordStatus
	Query  string
}

type ItemDTO struct {
	ID        uuid.UUID          `json:"item_id"`
	Name      string             `json:"name"`
	Type      string             `json:"type"`
	Unit      enums.Unit         `json:"unit"`
	Cost      decimal.Decimal    `json:"cost"`
	Status    enums.RecordStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type ItemList struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func itemFromModel(m models.CatalogItem) ItemDTO {
	return ItemDTO{
		ID:        m.ID,
		Name:      m.Name,
		Type:      m.Type,
		Unit:      m.Unit,
		Cost:      m.Cost,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type VendorInput struct {
	VendorName    string  `json:"vendor_name" validate:"required,min=2,max=150"`
	LicenseNumber *string `json:"license_number" validate:"omitempty,max=50"`
	GSTNumber     *string `json:"gst_number" validate:"omitempty,max=20"`
	PANNumber     *string `json:"pan_number" validate:"omitempty,max=20"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=100"`
	ContactMobile *string `json:"contact_mobile" validate:"omitempty,mobile"`
	ContactEmail  *string `json:"contact_email" validate:"omitempty,email"`
	MobileNumber  *string `json:"mobile_number" validate:"omitempty,mobile"`
	FullAddress   *string `json:"full_address" validate:"omitempty,max=500"`
}

// VendorPatch lists the vendor columns a client may change.
type VendorPatch struct {
	VendorName    *string `json:"vendor_name" validate:"omitempty,min=2,max=150"`
	LicenseNumber *string `json:"license_number" validate:"omitempty,max=50"`
	GSTNumber     *string `json:"gst_number" validate:"omitempty,max=20"`
	PANNumber     *string `json:"pan_number" validate:"omitempty,max=20"`
	ContactPerson *string `json:"contact_person" validate:"omitempty,max=100"`
	ContactMobile *string `json:"contact_mobile" validate:"omitempty,mobile"`
	ContactEmail  *string `json:"contact_email" validate:"omitempty,email"`
	MobileNumber  *string `json:"mobile_number" validate:"omitempty,mobile"`
	FullAddress   *string `json:"full_address" validate:"omitempty,max=500"`
	Status        *string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

type VendorDTO struct {
	ID            uuid.UUID          `json:"vendor_id"`
	VendorName    string             `json:"vendor_name"`
	LicenseNumber *string            `json:"license_number,omitempty"`
	GSTNumber     *string            `json:"gst_number,omitempty"`
	PANNumber     *string            `json:"pan_number,omitempty"`
	ContactPerson *string            `json:"contact_person,omitempty"`
	ContactMobile *string            `json:"contact_mobile,omitempty"`
	ContactEmail  *string            `json:"contact_email,omitempty"`
	MobileNumber  *string            `json:"mobile_number,omitempty"`
	FullAddress   *string            `json:"full_address,omitempty"`
	Status        enums.RecordStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type VendorList struct {
	Vendors    []VendorDTO `json:"vendors"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func vendorFromModel(m models.Vendor) VendorDTO {
	return VendorDTO{
		ID:            m.ID,
		VendorName:    m.VendorName,
		LicenseNumber: m.LicenseNumber,
		GSTNumber:     m.GSTNumber,
		PANNumber:     m.PANNumber,
		ContactPerson: m.ContactPerson,
		ContactMobile: m.ContactMobile,
		ContactEmail:  m.ContactEmail,
		MobileNumber:  m.MobileNumber,
		FullAddress:   m.FullAddress,
		Status:        m.Status,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
