package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

// Resolver performs the read-only lookups order writes depend on. Bind it to
// the caller's transaction with WithTx so lookups see the same snapshot as
// the writes that follow.
type Resolver interface {
	WithTx(tx *gorm.DB) Resolver
	ResolveItemCost(ctx context.Context, ref ItemRef) (*ResolvedItem, error)
	ResolveVendor(ctx context.Context, vendorID uuid.UUID) (*ResolvedVendor, error)
}

// Service exposes item and vendor management.
type Service interface {
	Resolver

	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context, filters ItemFilters, params pagination.Params) (*ItemList, error)
	UpdateItem(ctx context.Context, id uuid.UUID, patch ItemPatch) (*ItemDTO, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error

	CreateVendor(ctx context.Context, input VendorInput) (*VendorDTO, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*VendorDTO, error)
	ListVendors(ctx context.Context, params pagination.Params) (*VendorList, error)
	UpdateVendor(ctx context.Context, id uuid.UUID, patch VendorPatch) (*VendorDTO, error)
	DeleteVendor(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Resolver {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) ResolveItemCost(ctx context.Context, ref ItemRef) (*ResolvedItem, error) {
	var (
		item *models.CatalogItem
		err  error
	)
	switch {
	case ref.ID != nil && *ref.ID != uuid.Nil:
		item, err = s.repo.FindItemByID(ctx, *ref.ID)
	case strings.TrimSpace(ref.Name) != "":
		item, err = s.repo.FindItemByName(ctx, strings.TrimSpace(ref.Name))
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item reference is required")
	}
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "item %s not found", ref.label())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve item")
	}
	if !item.Usable() {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "item %s not found", ref.label())
	}

	return &ResolvedItem{
		ItemID:   item.ID,
		Name:     item.Name,
		Unit:     item.Unit,
		UnitCost: item.Cost,
	}, nil
}

func (s *service) ResolveVendor(ctx context.Context, vendorID uuid.UUID) (*ResolvedVendor, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	vendor, err := s.repo.FindVendorByID(ctx, vendorID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "vendor %s not found", vendorID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve vendor")
	}
	if vendor.Status != enums.RecordStatusActive {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "vendor %s not found", vendorID)
	}
	return &ResolvedVendor{VendorID: vendor.ID, Name: vendor.VendorName}, nil
}

func (r ItemRef) label() string {
	if r.ID != nil && *r.ID != uuid.Nil {
		return r.ID.String()
	}
	return strings.TrimSpace(r.Name)
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	fields := pkgerrors.Fields{}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fields.Add("name", "is required")
	}
	if strings.TrimSpace(input.Type) == "" {
		fields.Add("type", "is required")
	}
	if input.Cost == nil {
		fields.Add("cost", "is required")
	} else if input.Cost.IsNegative() {
		fields.Add("cost", "must be greater than or equal to 0")
	}
	unit := enums.UnitUnits
	if strings.TrimSpace(input.Unit) != "" {
		parsed, err := enums.ParseUnit(input.Unit)
		if err != nil {
			fields.Add("unit", "is invalid")
		}
		unit = parsed
	}
	status := enums.RecordStatusActive
	if input.Status != "" {
		parsed, err := enums.ParseRecordStatus(input.Status)
		if err != nil {
			fields.Add("status", "is invalid")
		}
		status = parsed
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	item := &models.CatalogItem{
		Name:   name,
		Type:   strings.TrimSpace(input.Type),
		Unit:   unit,
		Cost:   input.Cost.Round(2),
		Status: status,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "item %q already exists", name)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}

	dto := itemFromModel(*item)
	return &dto, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get item")
	}
	dto := itemFromModel(*item)
	return &dto, nil
}

func (s *service) ListItems(ctx context.Context, filters ItemFilters, params pagination.Params) (*ItemList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListItems(ctx, filters, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}
	rows, next := pagination.Split(rows, params.Limit, func(m models.CatalogItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})

	list := &ItemList{Items: make([]ItemDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		list.Items = append(list.Items, itemFromModel(row))
	}
	return list, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, patch ItemPatch) (*ItemDTO, error) {
	columns, err := patch.columns()
	if err != nil {
		return nil, err
	}

	found, err := s.repo.UpdateItem(ctx, id, columns)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an item with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update item")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return s.GetItem(ctx, id)
}

func (p ItemPatch) columns() (map[string]any, error) {
	fields := pkgerrors.Fields{}
	columns := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			fields.Add("name", "must not be blank")
		}
		columns["name"] = name
	}
	if p.Type != nil {
		columns["type"] = strings.TrimSpace(*p.Type)
	}
	if p.Unit != nil {
		unit, err := enums.ParseUnit(*p.Unit)
		if err != nil {
			fields.Add("unit", "is invalid")
		}
		columns["unit"] = unit
	}
	if p.Cost != nil {
		if p.Cost.IsNegative() {
			fields.Add("cost", "must be greater than or equal to 0")
		}
		columns["cost"] = p.Cost.Round(2)
	}
	if p.Status != nil {
		status, err := enums.ParseRecordStatus(*p.Status)
		if err != nil {
			fields.Add("status", "is invalid")
		}
		columns["status"] = status
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	return columns, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.SoftDeleteItem(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}

func (s *service) CreateVendor(ctx context.Context, input VendorInput) (*VendorDTO, error) {
	name := strings.TrimSpace(input.VendorName)
	if name == "" {
		return nil, pkgerrors.Fields{"vendor_name": "is required"}.Err()
	}

	vendor := &models.Vendor{
		VendorName:    name,
		LicenseNumber: trimmed(input.LicenseNumber),
		GSTNumber:     trimmed(input.GSTNumber),
		PANNumber:     trimmed(input.PANNumber),
		ContactPerson: trimmed(input.ContactPerson),
		ContactMobile: trimmed(input.ContactMobile),
		ContactEmail:  trimmed(input.ContactEmail),
		MobileNumber:  trimmed(input.MobileNumber),
		FullAddress:   trimmed(input.FullAddress),
		Status:        enums.RecordStatusActive,
	}
	if err := s.repo.CreateVendor(ctx, vendor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create vendor")
	}

	dto := vendorFromModel(*vendor)
	return &dto, nil
}

func (s *service) GetVendor(ctx context.Context, id uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.repo.FindVendorByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get vendor")
	}
	if vendor.Status != enums.RecordStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	dto := vendorFromModel(*vendor)
	return &dto, nil
}

// ListVendors returns active vendors only.
func (s *service) ListVendors(ctx context.Context, params pagination.Params) (*VendorList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	active := enums.RecordStatusActive
	rows, err := s.repo.ListVendors(ctx, &active, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list vendors")
	}
	rows, next := pagination.Split(rows, params.Limit, func(m models.Vendor) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})

	list := &VendorList{Vendors: make([]VendorDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		list.Vendors = append(list.Vendors, vendorFromModel(row))
	}
	return list, nil
}

func (s *service) UpdateVendor(ctx context.Context, id uuid.UUID, patch VendorPatch) (*VendorDTO, error) {
	columns, err := patch.columns()
	if err != nil {
		return nil, err
	}

	found, err := s.repo.UpdateVendor(ctx, id, columns)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update vendor")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}

	vendor, err := s.repo.FindVendorByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload vendor")
	}
	dto := vendorFromModel(*vendor)
	return &dto, nil
}

func (p VendorPatch) columns() (map[string]any, error) {
	columns := map[string]any{}
	optional := map[string]*string{
		"license_number": p.LicenseNumber,
		"gst_number":     p.GSTNumber,
		"pan_number":     p.PANNumber,
		"contact_person": p.ContactPerson,
		"contact_mobile": p.ContactMobile,
		"contact_email":  p.ContactEmail,
		"mobile_number":  p.MobileNumber,
		"full_address":   p.FullAddress,
	}
	for column, value := range optional {
		if value != nil {
			columns[column] = trimmed(value)
		}
	}
	if p.VendorName != nil {
		name := strings.TrimSpace(*p.VendorName)
		if name == "" {
			return nil, pkgerrors.Fields{"vendor_name": "must not be blank"}.Err()
		}
		columns["vendor_name"] = name
	}
	if p.Status != nil {
		status, err := enums.ParseRecordStatus(*p.Status)
		if err != nil {
			return nil, pkgerrors.Fields{"status": "is invalid"}.Err()
		}
		columns["status"] = status
	}
	if len(columns) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	return columns, nil
}

// DeleteVendor deactivates the vendor; historical orders keep referencing it.
func (s *service) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.UpdateVendor(ctx, id, map[string]any{"status": enums.RecordStatusInactive})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete vendor")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	return nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
