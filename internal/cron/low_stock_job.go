package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

type lowStockRaiser interface {
	RaiseLowStock(ctx context.Context) (int, error)
}

// NewLowStockAlertJob opens alerts for stock entries below their threshold.
func NewLowStockAlertJob(logg *logger.Logger, alerts lowStockRaiser) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if alerts == nil {
		return nil, fmt.Errorf("alerts service required")
	}
	return &lowStockAlertJob{logg: logg, alerts: alerts}, nil
}

type lowStockAlertJob struct {
	logg   *logger.Logger
	alerts lowStockRaiser
}

func (j *lowStockAlertJob) Name() string { return "low_stock_alerts" }

func (j *lowStockAlertJob) Run(ctx context.Context) error {
	raised, err := j.alerts.RaiseLowStock(ctx)
	if err != nil {
		return fmt.Errorf("raise low stock alerts: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "alerts_raised", raised), "low stock scan complete")
	return nil
}
