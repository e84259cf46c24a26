package roles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/stockroom-backend/pkg/db/dbtest"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

type seeded struct {
	svc     Service
	staff   uuid.UUID
	orders  uuid.UUID
	billing uuid.UUID
	read    uuid.UUID
	create  uuid.UUID
}

func seed(t *testing.T) seeded {
	t.Helper()
	conn := dbtest.Open(t)

	mk := func(row any) {
		require.NoError(t, conn.Create(row).Error)
	}
	staff := &models.Role{Name: "staff"}
	admin := &models.Role{Name: "admin"}
	orders := &models.Feature{Name: "orders"}
	billing := &models.Feature{Name: "billing"}
	read := &models.Privilege{Name: "read"}
	create := &models.Privilege{Name: "create"}
	for _, row := range []any{staff, admin, orders, billing, read, create} {
		mk(row)
	}

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return seeded{svc: svc, staff: staff.ID, orders: orders.ID, billing: billing.ID, read: read.ID, create: create.ID}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestListLookupsSortedByName(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	roles, err := s.svc.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "admin", roles[0].Name)

	features, err := s.svc.ListFeatures(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"billing", "orders"}, []string{features[0].Name, features[1].Name})

	privileges, err := s.svc.ListPrivileges(ctx)
	require.NoError(t, err)
	assert.Len(t, privileges, 2)
}

func TestAssignAndListPrivileges(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	require.NoError(t, s.svc.Assign(ctx, AssignInput{RoleID: s.staff, FeatureID: s.orders, PrivilegeID: s.read}))
	require.NoError(t, s.svc.Assign(ctx, AssignInput{RoleID: s.staff, FeatureID: s.orders, PrivilegeID: s.create}))
	require.NoError(t, s.svc.Assign(ctx, AssignInput{RoleID: s.staff, FeatureID: s.billing, PrivilegeID: s.read}))

	got, err := s.svc.PrivilegesFor(ctx, s.staff, s.orders)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, PrivilegeDTO{ID: s.create, Name: "create"}, got[0])
	assert.Equal(t, PrivilegeDTO{ID: s.read, Name: "read"}, got[1])

	err = s.svc.Assign(ctx, AssignInput{RoleID: s.staff, FeatureID: s.orders, PrivilegeID: s.read})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestAssignRejectsUnknownReferences(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	cases := map[string]struct {
		input AssignInput
		code  pkgerrors.Code
	}{
		"missing ids":       {AssignInput{RoleID: s.staff}, pkgerrors.CodeValidation},
		"unknown role":      {AssignInput{RoleID: uuid.New(), FeatureID: s.orders, PrivilegeID: s.read}, pkgerrors.CodeNotFound},
		"unknown feature":   {AssignInput{RoleID: s.staff, FeatureID: uuid.New(), PrivilegeID: s.read}, pkgerrors.CodeNotFound},
		"unknown privilege": {AssignInput{RoleID: s.staff, FeatureID: s.orders, PrivilegeID: uuid.New()}, pkgerrors.CodeNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := s.svc.Assign(ctx, tc.input)
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestPrivilegesForEmptyAndUnknown(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	got, err := s.svc.PrivilegesFor(ctx, s.staff, s.billing)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.svc.PrivilegesFor(ctx, uuid.New(), s.billing)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRevoke(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	grant := AssignInput{RoleID: s.staff, FeatureID: s.orders, PrivilegeID: s.read}

	require.NoError(t, s.svc.Assign(ctx, grant))
	require.NoError(t, s.svc.Revoke(ctx, grant))

	got, err := s.svc.PrivilegesFor(ctx, s.staff, s.orders)
	require.NoError(t, err)
	assert.Empty(t, got)

	err = s.svc.Revoke(ctx, grant)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
