package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/users"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StaleLoginJobParams configure the login history sweep.
type StaleLoginJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository users.Repository
	// SessionTTL is the access token lifetime; rows older than it are closed.
	SessionTTL time.Duration
}

// NewStaleLoginJob closes login history rows whose session has expired
// without an explicit logout.
func NewStaleLoginJob(params StaleLoginJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &staleLoginJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
		ttl:  params.SessionTTL,
		now:  time.Now,
	}, nil
}

type staleLoginJob struct {
	logg *logger.Logger
	db   txRunner
	repo users.Repository
	ttl  time.Duration
	now  func() time.Time
}

func (j *staleLoginJob) Name() string { return "stale_logins" }

func (j *staleLoginJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-j.ttl)
	var closed int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.WithTx(tx).ExpireLogins(ctx, cutoff, now)
		if err != nil {
			return err
		}
		closed = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("expire logins: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":      cutoff,
		"rows_closed": closed,
	})
	j.logg.Info(logCtx, "stale login sweep complete")
	return nil
}
