package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/internal/billing"
	"github.com/angelmondragon/stockroom-backend/internal/catalog"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/dbtest"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/events"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent []events.Envelope
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, env)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.sent))
	for _, env := range p.sent {
		out = append(out, env.Type)
	}
	return out
}

type harness struct {
	db        *gorm.DB
	svc       Service
	billing   billing.Service
	catalog   catalog.Service
	publisher *recordingPublisher
	vendorID  uuid.UUID
	riceID    uuid.UUID
	oilID     uuid.UUID
}

func newHarness(t *testing.T, allowNegative bool) *harness {
	t.Helper()
	ctx := context.Background()
	conn := dbtest.Open(t)
	client := db.NewFromGorm(conn)

	cat, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	bill, err := billing.NewService(billing.NewRepository(conn), client, nil)
	require.NoError(t, err)
	stk, err := stock.NewService(stock.ServiceParams{
		Repo:          stock.NewRepository(conn),
		Catalog:       cat,
		AllowNegative: allowNegative,
	})
	require.NoError(t, err)

	pub := &recordingPublisher{}
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Tx:        client,
		Catalog:   cat,
		Billing:   bill,
		Stock:     stk,
		Publisher: pub,
	})
	require.NoError(t, err)

	rice, err := cat.CreateItem(ctx, catalog.CreateItemInput{Name: "Rice", Type: "grain", Unit: "kg", Cost: decp("2.50")})
	require.NoError(t, err)
	oil, err := cat.CreateItem(ctx, catalog.CreateItemInput{Name: "Oil", Type: "grocery", Unit: "litre", Cost: decp("7.25")})
	require.NoError(t, err)
	vendor, err := cat.CreateVendor(ctx, catalog.VendorInput{VendorName: "Acme Foods"})
	require.NoError(t, err)

	return &harness{
		db:        conn,
		svc:       svc,
		billing:   bill,
		catalog:   cat,
		publisher: pub,
		vendorID:  vendor.ID,
		riceID:    rice.ID,
		oilID:     oil.ID,
	}
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decp(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func (h *harness) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Table(table).Count(&n).Error)
	return n
}

func (h *harness) stockOf(t *testing.T, itemID uuid.UUID) decimal.Decimal {
	t.Helper()
	var entry models.StockEntry
	err := h.db.Where("item_id = ? AND vendor_id = ?", itemID, h.vendorID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero
	}
	require.NoError(t, err)
	return entry.Quantity
}

func (h *harness) billingFor(t *testing.T, orderID uuid.UUID) []billing.RecordDTO {
	t.Helper()
	list, err := h.billing.List(context.Background(), billing.Filters{OrderID: &orderID}, pagination.Params{})
	require.NoError(t, err)
	return list.Records
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCreateRiceScenario(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	order, err := h.svc.Create(ctx, Input{
		VendorID: h.vendorID,
		Lines:    []LineInput{{ItemName: "Rice", QuantityUnit: "10kg", UnitPrice: decp("3.00")}},
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "Acme Foods", order.VendorName)
	assert.Equal(t, "25.00", order.Total.StringFixed(2))
	require.Len(t, order.Lines, 1)
	line := order.Lines[0]
	assert.Equal(t, h.riceID, line.ItemID)
	assert.Equal(t, "10kg", line.QuantityUnit)
	assert.True(t, line.UnitPrice.Equal(dec("2.5")))
	require.NotNil(t, line.QuotedPrice)
	assert.True(t, line.QuotedPrice.Equal(dec("3")))

	records := h.billingFor(t, order.ID)
	require.Len(t, records, 1)
	assert.Equal(t, enums.BillingStatusPending, records[0].Status)
	assert.Equal(t, "25.00", records[0].Total.StringFixed(2))
	assert.Equal(t, line.ID, records[0].OrderLineID)

	assert.True(t, h.stockOf(t, h.riceID).Equal(dec("10")))
	assert.Equal(t, []events.Type{events.OrderCreated}, h.publisher.types())

	stored, err := h.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(order.Total))
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, "Acme Foods", stored.VendorName)
}

func TestCreateTotalIsSumOfCatalogCost(t *testing.T) {
	h := newHarness(t, true)

	order, err := h.svc.Create(context.Background(), Input{
		VendorID: h.vendorID,
		Status:   "Completed",
		Lines: []LineInput{
			{ItemID: &h.riceID, Quantity: decp("4")},
			{ItemID: &h.oilID, Quantity: decp("1.5"), UnitPrice: decp("0")},
		},
	})
	require.NoError(t, err)

	// 4 x 2.50 + 1.5 x 7.25 = 10.00 + 10.875 -> 10.88
	assert.Equal(t, "20.88", order.Total.StringFixed(2))
	assert.Equal(t, enums.OrderStatusCompleted, order.Status)
	assert.Equal(t, enums.UnitLitre, order.Lines[1].Unit)
}

func TestCreateUnresolvedItemWritesNothing(t *testing.T) {
	h := newHarness(t, true)

	_, err := h.svc.Create(context.Background(), Input{
		VendorID: h.vendorID,
		Lines: []LineInput{
			{ItemName: "Rice", Quantity: decp("1")},
			{ItemName: "Saffron", Quantity: decp("1")},
		},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	for _, table := range []string{"orders", "order_lines", "billing_records", "stock_entries"} {
		assert.Zero(t, h.count(t, table), table)
	}
	assert.Empty(t, h.publisher.types())
}

func TestCreateInactiveVendorNotFound(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	require.NoError(t, h.catalog.DeleteVendor(ctx, h.vendorID))

	_, err := h.svc.Create(ctx, Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1")}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t, true)

	cases := map[string]struct {
		input Input
		field string
	}{
		"missing vendor":      {Input{Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1")}}}, "vendor_id"},
		"no lines":            {Input{VendorID: h.vendorID}, "lines"},
		"no item reference":   {Input{VendorID: h.vendorID, Lines: []LineInput{{Quantity: decp("1")}}}, "lines[0].item_id"},
		"zero quantity":       {Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("0")}}}, "lines[0].quantity"},
		"bad quantity unit":   {Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, QuantityUnit: "5 bags"}}}, "lines[0].quantity_unit"},
		"negative price":      {Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1"), UnitPrice: decp("-1")}}}, "lines[0].unit_price"},
		"cancelled on create": {Input{VendorID: h.vendorID, Status: "Cancelled", Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1")}}}, "status"},
		"quantity too precise":      {Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("0.0004")}}}, "lines[0].quantity"},
		"quantity unit too precise": {Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, QuantityUnit: "0.0004kg"}}}, "lines[0].quantity_unit"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.svc.Create(context.Background(), tc.input)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
			fields, ok := pkgerrors.As(err).Details().(pkgerrors.Fields)
			require.True(t, ok)
			assert.Contains(t, fields, tc.field)
		})
	}
	assert.Zero(t, h.count(t, "orders"))

	// Trailing zeros beyond the stored scale lose nothing.
	order, err := h.svc.Create(context.Background(), Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1.2500")}}})
	require.NoError(t, err)
	assert.True(t, order.Lines[0].Quantity.Equal(dec("1.25")))
}

func TestUpdateReplacesLinesExactly(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	created, err := h.svc.Create(ctx, Input{
		VendorID: h.vendorID,
		Lines: []LineInput{
			{ItemID: &h.riceID, Quantity: decp("10")},
			{ItemID: &h.oilID, Quantity: decp("2")},
		},
	})
	require.NoError(t, err)

	updated, err := h.svc.Update(ctx, created.ID, Input{
		VendorID: h.vendorID,
		Status:   "Paid",
		Lines:    []LineInput{{ItemID: &h.oilID, QuantityUnit: "3litre"}},
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPaid, updated.Status)
	assert.Equal(t, "21.75", updated.Total.StringFixed(2))
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, int64(1), h.count(t, "order_lines"))

	records := h.billingFor(t, created.ID)
	require.Len(t, records, 1)
	assert.Equal(t, updated.Lines[0].ID, records[0].OrderLineID)
	assert.Equal(t, "21.75", records[0].Total.StringFixed(2))

	assert.True(t, h.stockOf(t, h.riceID).IsZero())
	assert.True(t, h.stockOf(t, h.oilID).Equal(dec("3")))

	stored, err := h.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(updated.Total))
	assert.WithinDuration(t, created.OrderDate, stored.OrderDate, time.Second)

	_, err = h.svc.Update(ctx, created.ID, Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1")}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "paid orders are final, got %v", err)
}

func TestUpdateRejectsSettledBilling(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	created, err := h.svc.Create(ctx, Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("2")}}})
	require.NoError(t, err)
	records := h.billingFor(t, created.ID)
	_, err = h.billing.UpdateStatus(ctx, records[0].ID, billing.StatusInput{Status: "Paid"})
	require.NoError(t, err)

	_, err = h.svc.Update(ctx, created.ID, Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("5")}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	assert.True(t, h.stockOf(t, h.riceID).Equal(dec("2")))
}

func TestUpdateMissingOrder(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.svc.Update(context.Background(), uuid.New(), Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1")}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCancelCascadesAndRejectsRepeat(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	created, err := h.svc.Create(ctx, Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("6")}}})
	require.NoError(t, err)

	require.NoError(t, h.svc.Cancel(ctx, created.ID))

	stored, err := h.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, stored.Status)
	for _, r := range h.billingFor(t, created.ID) {
		assert.Equal(t, enums.BillingStatusCancelled, r.Status)
	}
	assert.True(t, h.stockOf(t, h.riceID).IsZero())

	err = h.svc.Cancel(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderCancelled}, h.publisher.types())
}

func TestCancelCompletedOrderConflicts(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	created, err := h.svc.Create(ctx, Input{VendorID: h.vendorID, Status: "Completed", Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1")}}})
	require.NoError(t, err)

	err = h.svc.Cancel(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	assert.True(t, pkgerrors.IsCode(h.svc.Cancel(ctx, uuid.New()), pkgerrors.CodeNotFound))
}

func TestCancelRollsBackWhenStockFloorWouldBreak(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	created, err := h.svc.Create(ctx, Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("5")}}})
	require.NoError(t, err)
	require.NoError(t, h.db.Model(&models.StockEntry{}).Where("item_id = ?", h.riceID).Update("quantity", 1).Error)

	err = h.svc.Cancel(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	stored, err := h.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, stored.Status)
	for _, r := range h.billingFor(t, created.ID) {
		assert.Equal(t, enums.BillingStatusPending, r.Status)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	h := newHarness(t, true)
	h.publisher.err = errors.New("broker down")

	order, err := h.svc.Create(context.Background(), Input{VendorID: h.vendorID, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1")}}})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, int64(1), h.count(t, "orders"))
}

func TestListNewestFirstWithStatusFilter(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, status := range []string{"Pending", "Completed", "Pending"} {
		order, err := h.svc.Create(ctx, Input{VendorID: h.vendorID, Status: status, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1")}}})
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}

	all, err := h.svc.List(ctx, Filters{}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, all.Orders, 2)
	require.NotEmpty(t, all.NextCursor)
	assert.Len(t, all.Orders[0].Lines, 1)

	rest, err := h.svc.List(ctx, Filters{}, pagination.Params{Limit: 2, Cursor: all.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)

	seen := map[uuid.UUID]bool{}
	for _, o := range append(all.Orders, rest.Orders...) {
		seen[o.ID] = true
	}
	assert.Len(t, seen, 3)

	completed := enums.OrderStatusCompleted
	filtered, err := h.svc.List(ctx, Filters{Status: &completed}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, filtered.Orders, 1)
	assert.Equal(t, ids[1], filtered.Orders[0].ID)
}

func TestGetMissingOrder(t *testing.T) {
	h := newHarness(t, true)
	_, err := h.svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestParseQuantityUnit(t *testing.T) {
	qty, unit, ok := ParseQuantityUnit("2.5KG")
	require.True(t, ok)
	assert.True(t, qty.Equal(dec("2.5")))
	assert.Equal(t, enums.UnitKilogram, unit)

	qty, unit, ok = ParseQuantityUnit("500ml")
	require.True(t, ok)
	assert.Equal(t, "500ml", FormatQuantityUnit(qty, unit))

	for _, bad := range []string{"", "kg", "5", "-1kg", "5 bags"} {
		_, _, ok := ParseQuantityUnit(bad)
		assert.False(t, ok, bad)
	}
}

func TestCreateKeepsPlainOrderDate(t *testing.T) {
	h := newHarness(t, true)
	day := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	order, err := h.svc.Create(context.Background(), Input{VendorID: h.vendorID, OrderDate: &Date{Time: day}, Lines: []LineInput{{ItemID: &h.riceID, Quantity: decp("1")}}})
	require.NoError(t, err)
	assert.True(t, order.OrderDate.Equal(day))
}
