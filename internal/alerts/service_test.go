package alerts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

type stubLowStock struct {
	rows []stock.LowStock
}

func (s stubLowStock) ListBelowThreshold(context.Context) ([]stock.LowStock, error) {
	return s.rows, nil
}

func newTestService(t *testing.T, low []stock.LowStock) (Service, catalog.Service) {
	t.Helper()
	conn := dbtest.Open(t)
	cat, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), cat, stubLowStock{rows: low})
	require.NoError(t, err)
	return svc, cat
}

func createItem(t *testing.T, cat catalog.Service, name string) uuid.UUID {
	t.Helper()
	cost := decimal.NewFromInt(1)
	item, err := cat.CreateItem(context.Background(), catalog.CreateItemInput{Name: name, Type: "grain", Cost: &cost})
	require.NoError(t, err)
	return item.ID
}

func TestCreateCloseAndList(t *testing.T) {
	ctx := context.Background()
	svc, cat := newTestService(t, nil)
	itemID := createItem(t, cat, "Rice")

	alert, err := svc.Create(ctx, CreateInput{ItemID: itemID, AlertName: " Expiring soon "})
	require.NoError(t, err)
	assert.Equal(t, "Expiring soon", alert.AlertName)
	assert.True(t, alert.Current)

	closed, err := svc.Close(ctx, alert.ID)
	require.NoError(t, err)
	assert.False(t, closed.Current)
	require.NotNil(t, closed.EndedAt)

	_, err = svc.Close(ctx, alert.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Close(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	current, err := svc.List(ctx, true, 0)
	require.NoError(t, err)
	assert.Empty(t, current.Alerts)

	all, err := svc.List(ctx, false, 0)
	require.NoError(t, err)
	assert.Len(t, all.Alerts, 1)
}

func TestCreateValidatesAndResolvesItem(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	_, err := svc.Create(ctx, CreateInput{AlertName: "no"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	fields := pkgerrors.As(err).Details().(pkgerrors.Fields)
	assert.Contains(t, fields, "item_id")
	assert.Contains(t, fields, "alert_name")

	_, err = svc.Create(ctx, CreateInput{ItemID: uuid.New(), AlertName: "Missing item"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRaiseLowStockIsIdempotentPerItem(t *testing.T) {
	ctx := context.Background()
	itemID := uuid.New()
	low := []stock.LowStock{
		{ItemID: itemID, ItemName: "Rice", VendorID: uuid.New()},
		{ItemID: itemID, ItemName: "Rice", VendorID: uuid.New()},
	}
	svc, _ := newTestService(t, low)

	raised, err := svc.RaiseLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, raised)

	raised, err = svc.RaiseLowStock(ctx)
	require.NoError(t, err)
	assert.Zero(t, raised)

	list, err := svc.List(ctx, true, 0)
	require.NoError(t, err)
	require.Len(t, list.Alerts, 1)
	assert.Equal(t, "Low stock: Rice", list.Alerts[0].AlertName)
}
