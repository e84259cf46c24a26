package dashboard

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// Counts is the dashboard summary. AlertNames is never nil.
type Counts struct {
	ItemCount   int64    `json:"item_count"`
	VendorCount int64    `json:"vendor_count"`
	AlertCount  int64    `json:"alert_count"`
	AlertNames  []string `json:"alert_names"`
}

type Service interface {
	Counts(ctx context.Context) (*Counts, error)
}

type service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database required")
	}
	return &service{db: db}, nil
}

func (s *service) Counts(ctx context.Context) (*Counts, error) {
	out := &Counts{AlertNames: []string{}}
	conn := s.db.WithContext(ctx)

	if err := conn.Model(&models.CatalogItem{}).Where("is_deleted = ?", false).Count(&out.ItemCount).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count items")
	}
	if err := conn.Model(&models.Vendor{}).Where("status = ?", enums.RecordStatusActive).Count(&out.VendorCount).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count vendors")
	}
	if err := conn.Model(&models.Alert{}).Where("ended_at IS NULL").Count(&out.AlertCount).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count alerts")
	}

	var names []string
	if err := conn.Model(&models.Alert{}).
		Where("ended_at IS NULL").
		Order("started_at DESC").
		Pluck("alert_name", &names).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list alert names")
	}
	if names != nil {
		out.AlertNames = names
	}
	return out, nil
}
