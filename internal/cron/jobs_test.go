package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stockroom-backend/internal/users"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/dbtest"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

type stubRaiser struct {
	raised int
	err    error
	calls  int
}

func (s *stubRaiser) RaiseLowStock(context.Context) (int, error) {
	s.calls++
	return s.raised, s.err
}

func TestLowStockAlertJob(t *testing.T) {
	raiser := &stubRaiser{raised: 3}
	job, err := NewLowStockAlertJob(testLogger(), raiser)
	require.NoError(t, err)
	assert.Equal(t, "low_stock_alerts", job.Name())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, raiser.calls)

	raiser.err = errors.New("db down")
	assert.ErrorContains(t, job.Run(context.Background()), "db down")

	_, err = NewLowStockAlertJob(testLogger(), nil)
	assert.Error(t, err)
}

func TestStaleLoginJobClosesExpiredRows(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	repo := users.NewRepository(conn)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	user := &models.User{Name: "Asha", Role: enums.UserRoleStaff, MobileNumber: "9876543210", Email: "a@example.com", Status: enums.RecordStatusActive}
	require.NoError(t, repo.Create(ctx, user))
	stale := &models.LoginHistory{UserID: user.ID, SessionID: "old", Status: enums.RecordStatusActive, LoginAt: now.Add(-2 * time.Hour)}
	fresh := &models.LoginHistory{UserID: user.ID, SessionID: "new", Status: enums.RecordStatusActive, LoginAt: now.Add(-10 * time.Minute)}
	require.NoError(t, repo.CreateLogin(ctx, stale))
	require.NoError(t, repo.CreateLogin(ctx, fresh))

	job, err := NewStaleLoginJob(StaleLoginJobParams{
		Logger:     testLogger(),
		DB:         db.NewFromGorm(conn),
		Repository: repo,
		SessionTTL: time.Hour,
	})
	require.NoError(t, err)
	job.(*staleLoginJob).now = func() time.Time { return now }

	require.NoError(t, job.Run(ctx))

	var rows []models.LoginHistory
	require.NoError(t, conn.Order("session_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "new", rows[0].SessionID)
	assert.Equal(t, enums.RecordStatusActive, rows[0].Status)
	assert.Equal(t, "old", rows[1].SessionID)
	assert.Equal(t, enums.RecordStatusInactive, rows[1].Status)
	assert.NotNil(t, rows[1].LogoutAt)
}
