package stock

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/pkg/db/dbtest"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

type fixture struct {
	db       *gorm.DB
	svc      Service
	itemID   uuid.UUID
	vendorID uuid.UUID
}

func newFixture(t *testing.T, allowNegative bool) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	ctx := context.Background()

	cat, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	cost := decimal.RequireFromString("2.50")
	item, err := cat.CreateItem(ctx, catalog.CreateItemInput{Name: "Rice", Type: "grain", Unit: "kg", Cost: &cost})
	require.NoError(t, err)
	vendor, err := cat.CreateVendor(ctx, catalog.VendorInput{VendorName: "Acme Foods"})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:          NewRepository(conn),
		Catalog:       cat,
		AllowNegative: allowNegative,
	})
	require.NoError(t, err)
	return fixture{db: conn, svc: svc, itemID: item.ID, vendorID: vendor.ID}
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func dp(v string) *decimal.Decimal {
	x := d(v)
	return &x
}

func quantity(t *testing.T, f fixture) decimal.Decimal {
	t.Helper()
	entry, err := NewRepository(f.db).FindByItemVendor(context.Background(), f.itemID, f.vendorID)
	require.NoError(t, err)
	return entry.Quantity
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestAdjustCreatesThenAccumulates(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	require.NoError(t, f.svc.Adjust(ctx, Adjustment{ItemID: f.itemID, VendorID: f.vendorID, Delta: d("10"), Unit: enums.UnitKilogram, UnitCost: d("2.50")}))
	require.NoError(t, f.svc.Adjust(ctx, Adjustment{ItemID: f.itemID, VendorID: f.vendorID, Delta: d("5.5"), Unit: enums.UnitKilogram, UnitCost: d("2.50")}))
	require.NoError(t, f.svc.Adjust(ctx, Adjustment{ItemID: f.itemID, VendorID: f.vendorID, Delta: d("-3"), Unit: enums.UnitKilogram}))

	assert.True(t, quantity(t, f).Equal(d("12.5")), "got %s", quantity(t, f))
}

func TestAdjustZeroDeltaIsNoop(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.svc.Adjust(context.Background(), Adjustment{ItemID: f.itemID, VendorID: f.vendorID}))

	_, err := NewRepository(f.db).FindByItemVendor(context.Background(), f.itemID, f.vendorID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAdjustAllowsNegativeWhenConfigured(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.svc.Adjust(context.Background(), Adjustment{ItemID: f.itemID, VendorID: f.vendorID, Delta: d("-4")}))
	assert.True(t, quantity(t, f).Equal(d("-4")))
}

func TestAdjustEnforcesFloor(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	require.NoError(t, f.svc.Adjust(ctx, Adjustment{ItemID: f.itemID, VendorID: f.vendorID, Delta: d("3")}))

	err := f.svc.Adjust(ctx, Adjustment{ItemID: f.itemID, VendorID: f.vendorID, Delta: d("-5")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	assert.True(t, quantity(t, f).Equal(d("3")))

	require.NoError(t, f.svc.Adjust(ctx, Adjustment{ItemID: f.itemID, VendorID: f.vendorID, Delta: d("-3")}))
	assert.True(t, quantity(t, f).IsZero())
}

func TestAdjustConcurrentWritersKeepEveryDelta(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.svc.Adjust(ctx, Adjustment{ItemID: f.itemID, VendorID: f.vendorID, Delta: d("1")}))
		}()
	}
	wg.Wait()

	assert.True(t, quantity(t, f).Equal(d("8")), "got %s", quantity(t, f))
}

func TestAdjustWithTxRollsBack(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := f.svc.WithTx(tx).Adjust(ctx, Adjustment{ItemID: f.itemID, VendorID: f.vendorID, Delta: d("7")}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = NewRepository(f.db).FindByItemVendor(ctx, f.itemID, f.vendorID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCreateDerivesStatusAndRejectsDuplicates(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	entry, err := f.svc.Create(ctx, CreateInput{
		ItemID:       f.itemID,
		VendorID:     f.vendorID,
		CurrentStock: dp("4"),
		Unit:         "KG",
		MinThreshold: dp("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Rice", entry.ItemName)
	assert.Equal(t, "Acme Foods", entry.VendorName)
	assert.Equal(t, enums.UnitKilogram, entry.Unit)
	assert.Equal(t, enums.StockStatusLow, entry.Status)
	assert.True(t, entry.UnitCost.Equal(d("2.5")))

	_, err = f.svc.Create(ctx, CreateInput{ItemID: f.itemID, VendorID: f.vendorID, CurrentStock: dp("1"), Unit: "kg"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.svc.Create(context.Background(), CreateInput{ItemID: f.itemID, Unit: "bushel", CurrentStock: dp("-1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	fields, ok := pkgerrors.As(err).Details().(pkgerrors.Fields)
	require.True(t, ok)
	assert.Contains(t, fields, "vendor_id")
	assert.Contains(t, fields, "unit")
	assert.Contains(t, fields, "current_stock")

	_, err = f.svc.Create(context.Background(), CreateInput{ItemID: f.itemID, VendorID: f.vendorID, Unit: "kg", CurrentStock: dp("1.0005"), MinThreshold: dp("0.0001")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	fields, ok = pkgerrors.As(err).Details().(pkgerrors.Fields)
	require.True(t, ok)
	assert.Contains(t, fields, "current_stock")
	assert.Contains(t, fields, "min_threshold")
}

func TestCreateUnknownVendorNotFound(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.svc.Create(context.Background(), CreateInput{ItemID: f.itemID, VendorID: uuid.New(), CurrentStock: dp("1"), Unit: "kg"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestUpdateAndStatusFilter(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	entry, err := f.svc.Create(ctx, CreateInput{ItemID: f.itemID, VendorID: f.vendorID, CurrentStock: dp("20"), Unit: "kg", MinThreshold: dp("5")})
	require.NoError(t, err)
	assert.Equal(t, enums.StockStatusAvailable, entry.Status)

	updated, err := f.svc.Update(ctx, entry.ID, Patch{CurrentStock: dp("0")})
	require.NoError(t, err)
	assert.Equal(t, enums.StockStatusOutOfStock, updated.Status)

	out := enums.StockStatusOutOfStock
	list, err := f.svc.List(ctx, Filters{Status: &out}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, entry.ID, list.Entries[0].ID)

	available := enums.StockStatusAvailable
	list, err = f.svc.List(ctx, Filters{Status: &available}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, list.Entries)

	_, err = f.svc.Update(ctx, entry.ID, Patch{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Update(ctx, uuid.New(), Patch{MinThreshold: dp("1")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListBelowThreshold(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{ItemID: f.itemID, VendorID: f.vendorID, CurrentStock: dp("2"), Unit: "kg", MinThreshold: dp("5")})
	require.NoError(t, err)

	low, err := f.svc.ListBelowThreshold(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Rice", low[0].ItemName)
	assert.True(t, low[0].Quantity.Equal(d("2")))
}
