// Package accesspolicy decides which role may perform which action on
// which resource. Row-level visibility is handled separately by the
// scope package; this package only answers the coarse allow/deny.
package accesspolicy

import (
	"context"
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"

	_ "embed"

	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

// Objects gate API resources.
const (
	ObjectCustomer    = "customer"
	ObjectShipment    = "shipment"
	ObjectParcel      = "parcel"
	ObjectDocument    = "document"
	ObjectInvoice     = "invoice"
	ObjectInvoiceItem = "invoice_item"
	ObjectSettings    = "settings"
	ObjectDashboard   = "dashboard"
)

// Actions are the verbs the API maps HTTP methods onto.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
)

var (
	ErrInvalidRole   = errors.New("invalid_role")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)

type Service interface {
	// Authorize returns nil when the role may perform action on object,
	// ErrForbidden when the policy denies it.
	Authorize(ctx context.Context, role identitydomain.Role, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("accesspolicy.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role identitydomain.Role, object, action string) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	allowed, err := s.enforcer.Enforce(roleSubject(role), object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("access denied",
			zap.String("role", string(role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func roleSubject(role identitydomain.Role) string {
	return "role:" + string(role)
}

// seedPolicies installs the default role grants. Admin is unrestricted.
// Staff covers every resource except deletion. Customers read their own
// rows, maintain their own record, and export their own invoices.
func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	resources := []string{
		ObjectCustomer,
		ObjectShipment,
		ObjectParcel,
		ObjectDocument,
		ObjectInvoice,
		ObjectInvoiceItem,
	}

	policies := [][]string{
		{"role:admin", "*", "*"},
	}

	for _, object := range resources {
		policies = append(policies,
			[]string{"role:staff", object, ActionRead},
			[]string{"role:staff", object, ActionCreate},
			[]string{"role:staff", object, ActionUpdate},
			[]string{"role:customer", object, ActionRead},
		)
	}

	policies = append(policies,
		[]string{"role:staff", ObjectInvoice, ActionExport},
		[]string{"role:staff", ObjectSettings, ActionRead},
		[]string{"role:staff", ObjectDashboard, ActionRead},
		[]string{"role:customer", ObjectCustomer, ActionUpdate},
		[]string{"role:customer", ObjectInvoice, ActionExport},
		[]string{"role:customer", ObjectSettings, ActionRead},
	)

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
