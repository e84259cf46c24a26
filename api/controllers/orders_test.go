package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stockroom-backend/internal/orders"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

type stubOrderService struct {
	orders.Service

	created     orders.Input
	filters     orders.Filters
	params      pagination.Params
	cancelledID uuid.UUID
	err         error
}

func (s *stubOrderService) Create(_ context.Context, input orders.Input) (*orders.OrderDTO, error) {
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{ID: uuid.New(), VendorID: input.VendorID, Status: enums.OrderStatusPending, Total: decimal.RequireFromString("120.50")}, nil
}

func (s *stubOrderService) List(_ context.Context, filters orders.Filters, params pagination.Params) (*orders.OrderList, error) {
	s.filters = filters
	s.params = params
	return &orders.OrderList{Orders: []orders.OrderDTO{}}, nil
}

func (s *stubOrderService) Get(_ context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &orders.OrderDTO{ID: id}, nil
}

func (s *stubOrderService) Cancel(_ context.Context, id uuid.UUID) error {
	s.cancelledID = id
	return s.err
}

func TestOrderCreate(t *testing.T) {
	vendorID := uuid.New()
	body := map[string]any{
		"vendor_id": vendorID,
		"lines":     []map[string]any{{"item_name": "Rice", "quantity_unit": "5kg"}},
	}

	t.Run("created", func(t *testing.T) {
		svc := &stubOrderService{}
		rec, env := serve(OrderCreate(svc, testLogger()), newRequest(t, http.MethodPost, "/api/orders", body, nil))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), `"total":"120.5"`)
		assert.Equal(t, vendorID, svc.created.VendorID)
		require.Len(t, svc.created.Lines, 1)
		assert.Equal(t, "5kg", svc.created.Lines[0].QuantityUnit)
	})

	t.Run("missing lines", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/api/orders", map[string]any{"vendor_id": vendorID}, nil)
		rec, _ := serve(OrderCreate(&stubOrderService{}, testLogger()), req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := newRequest(t, http.MethodPost, "/api/orders", `{"vendor_id":"`+vendorID.String()+`","bogus":1}`, nil)
		rec, _ := serve(OrderCreate(&stubOrderService{}, testLogger()), req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("item not found", func(t *testing.T) {
		svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeNotFound, "item not found")}
		rec, env := serve(OrderCreate(svc, testLogger()), newRequest(t, http.MethodPost, "/api/orders", body, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", env.Code)
	})
}

func TestOrderList(t *testing.T) {
	vendorID := uuid.New()
	svc := &stubOrderService{}
	req := newRequest(t, http.MethodGet, "/api/orders?status=Pending&vendor_id="+vendorID.String()+"&limit=10&cursor=abc", nil, nil)

	rec, _ := serve(OrderList(svc, testLogger()), req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filters.Status)
	assert.Equal(t, enums.OrderStatusPending, *svc.filters.Status)
	require.NotNil(t, svc.filters.VendorID)
	assert.Equal(t, vendorID, *svc.filters.VendorID)
	assert.Equal(t, pagination.Params{Limit: 10, Cursor: "abc"}, svc.params)

	rec, _ = serve(OrderList(svc, testLogger()), newRequest(t, http.MethodGet, "/api/orders?status=Shipped", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = serve(OrderList(svc, testLogger()), newRequest(t, http.MethodGet, "/api/orders?limit=1000", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderGet(t *testing.T) {
	id := uuid.New()

	rec, _ := serve(OrderGet(&stubOrderService{}, testLogger()), newRequest(t, http.MethodGet, "/api/orders/x", nil, map[string]string{"order_id": "not-a-uuid"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := serve(OrderGet(&stubOrderService{}, testLogger()), newRequest(t, http.MethodGet, "/api/orders/"+id.String(), nil, map[string]string{"order_id": id.String()}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), id.String())
}

func TestOrderCancel(t *testing.T) {
	id := uuid.New()
	params := map[string]string{"order_id": id.String()}

	svc := &stubOrderService{}
	rec, env := serve(OrderCancel(svc, testLogger()), newRequest(t, http.MethodDelete, "/api/orders/"+id.String(), nil, params))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "order cancelled", env.Message)
	assert.Equal(t, id, svc.cancelledID)

	svc = &stubOrderService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "order already cancelled")}
	rec, env = serve(OrderCancel(svc, testLogger()), newRequest(t, http.MethodDelete, "/api/orders/"+id.String(), nil, params))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "STATE_CONFLICT", env.Code)
}
