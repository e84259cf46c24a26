package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stockroom-backend/api/middleware"
	"github.com/angelmondragon/stockroom-backend/internal/inventoryrequests"
	"github.com/angelmondragon/stockroom-backend/internal/users"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

type stubUserService struct {
	users.Service

	registered users.RegisterInput
	filters    users.Filters
	deletedID  uuid.UUID
}

func (s *stubUserService) Register(_ context.Context, input users.RegisterInput) (*users.UserDTO, error) {
	s.registered = input
	return &users.UserDTO{ID: uuid.New(), Name: input.Name, CreatedBy: input.CreatedBy}, nil
}

func (s *stubUserService) List(_ context.Context, filters users.Filters, _ pagination.Params) (*users.UserList, error) {
	s.filters = filters
	return &users.UserList{Users: []users.UserDTO{}}, nil
}

func (s *stubUserService) Delete(_ context.Context, id uuid.UUID) error {
	s.deletedID = id
	return nil
}

func TestUserRegister(t *testing.T) {
	creator := uuid.New()
	body := map[string]string{"name": "Asha Rao", "role": "Staff", "mobile_number": "9876543210", "email": "asha@example.com"}

	svc := &stubUserService{}
	req := newRequest(t, http.MethodPost, "/api/users/register", body, nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), creator.String()))
	rec, _ := serve(UserRegister(svc, testLogger()), req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.registered.CreatedBy)
	assert.Equal(t, creator, *svc.registered.CreatedBy)

	bad := map[string]string{"name": "A1", "role": "Staff", "mobile_number": "98765"}
	rec, env := serve(UserRegister(&stubUserService{}, testLogger()), newRequest(t, http.MethodPost, "/api/users/register", bad, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, env.messages())
}

func TestUserListFilters(t *testing.T) {
	svc := &stubUserService{}
	rec, _ := serve(UserList(svc, testLogger()), newRequest(t, http.MethodGet, "/api/users?role=Manager&status=Active", nil, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.UserRoleManager, *svc.filters.Role)
	assert.Equal(t, enums.RecordStatusActive, *svc.filters.Status)

	rec, _ = serve(UserList(svc, testLogger()), newRequest(t, http.MethodGet, "/api/users?role=owner", nil, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserDelete(t *testing.T) {
	id := uuid.New()
	svc := &stubUserService{}
	rec, env := serve(UserDelete(svc, testLogger()), newRequest(t, http.MethodDelete, "/api/users/"+id.String(), nil, map[string]string{"user_id": id.String()}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user deleted", env.Message)
	assert.Equal(t, id, svc.deletedID)
}

type stubInventoryRequestService struct {
	inventoryrequests.Service

	updated inventoryrequests.Input
}

func (s *stubInventoryRequestService) Update(_ context.Context, id uuid.UUID, input inventoryrequests.Input) (*inventoryrequests.RequestDTO, error) {
	s.updated = input
	return &inventoryrequests.RequestDTO{ID: id, ItemCount: len(input.Items)}, nil
}

func TestInventoryRequestUpdate(t *testing.T) {
	id := uuid.New()
	params := map[string]string{"request_id": id.String()}
	body := map[string]any{
		"requested_by": "Kitchen",
		"items":        []map[string]any{{"item_name": "Flour", "quantity": 2, "price": "40.00"}},
	}

	svc := &stubInventoryRequestService{}
	rec, env := serve(InventoryRequestUpdate(svc, testLogger()), newRequest(t, http.MethodPut, "/api/inventory-requests/"+id.String(), body, params))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"item_count":1`)
	require.Len(t, svc.updated.Items, 1)
	assert.Equal(t, 2, svc.updated.Items[0].Quantity)

	empty := map[string]any{"requested_by": "Kitchen", "items": []any{}}
	rec, _ = serve(InventoryRequestUpdate(svc, testLogger()), newRequest(t, http.MethodPut, "/api/inventory-requests/"+id.String(), empty, params))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
