package accesspolicy

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPolicy(t *testing.T) Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{})
	require.NoError(t, err)

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAdminMayDoAnything(t *testing.T) {
	svc := setupPolicy(t)
	ctx := context.Background()

	for _, object := range []string{ObjectCustomer, ObjectShipment, ObjectParcel, ObjectDocument, ObjectInvoice, ObjectInvoiceItem, ObjectSettings, ObjectDashboard} {
		for _, action := range []string{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionExport} {
			assert.NoError(t, svc.Authorize(ctx, identitydomain.RoleAdmin, object, action), "%s %s", object, action)
		}
	}
}

func TestStaffMayNotDelete(t *testing.T) {
	svc := setupPolicy(t)
	ctx := context.Background()

	for _, object := range []string{ObjectCustomer, ObjectShipment, ObjectParcel, ObjectDocument, ObjectInvoice, ObjectInvoiceItem} {
		assert.NoError(t, svc.Authorize(ctx, identitydomain.RoleStaff, object, ActionRead))
		assert.NoError(t, svc.Authorize(ctx, identitydomain.RoleStaff, object, ActionCreate))
		assert.NoError(t, svc.Authorize(ctx, identitydomain.RoleStaff, object, ActionUpdate))
		assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.RoleStaff, object, ActionDelete), ErrForbidden, "staff delete %s", object)
	}
}

func TestStaffSettingsReadOnly(t *testing.T) {
	svc := setupPolicy(t)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, identitydomain.RoleStaff, ObjectSettings, ActionRead))
	assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.RoleStaff, ObjectSettings, ActionUpdate), ErrForbidden)
}

func TestCustomerGrants(t *testing.T) {
	svc := setupPolicy(t)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, identitydomain.RoleCustomer, ObjectShipment, ActionRead))
	assert.NoError(t, svc.Authorize(ctx, identitydomain.RoleCustomer, ObjectCustomer, ActionUpdate))
	assert.NoError(t, svc.Authorize(ctx, identitydomain.RoleCustomer, ObjectInvoice, ActionExport))
	assert.NoError(t, svc.Authorize(ctx, identitydomain.RoleCustomer, ObjectSettings, ActionRead))

	assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.RoleCustomer, ObjectShipment, ActionCreate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.RoleCustomer, ObjectInvoice, ActionUpdate), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.RoleCustomer, ObjectParcel, ActionDelete), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.RoleCustomer, ObjectDashboard, ActionRead), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.RoleCustomer, ObjectSettings, ActionUpdate), ErrForbidden)
}

func TestAuthorizeInputValidation(t *testing.T) {
	svc := setupPolicy(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.Role("root"), ObjectCustomer, ActionRead), ErrInvalidRole)
	assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.RoleAdmin, " ", ActionRead), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, identitydomain.RoleAdmin, ObjectCustomer, ""), ErrInvalidAction)
}

// memoryDSN names a private shared-cache database per test so every
// pooled connection lands on the same in-memory store.
func memoryDSN(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return "file:" + name + "?mode=memory&cache=shared"
}
