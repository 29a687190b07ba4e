package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smartlogix/cargopro/internal/accesspolicy"
	"github.com/smartlogix/cargopro/internal/config"
	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	customerrepository "github.com/smartlogix/cargopro/internal/customer/repository"
	customerservice "github.com/smartlogix/cargopro/internal/customer/service"
	dashboardservice "github.com/smartlogix/cargopro/internal/dashboard/service"
	documentdomain "github.com/smartlogix/cargopro/internal/document/domain"
	documentrepository "github.com/smartlogix/cargopro/internal/document/repository"
	documentservice "github.com/smartlogix/cargopro/internal/document/service"
	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	identityrepository "github.com/smartlogix/cargopro/internal/identity/repository"
	identityservice "github.com/smartlogix/cargopro/internal/identity/service"
	"github.com/smartlogix/cargopro/internal/identity/token"
	invoicedomain "github.com/smartlogix/cargopro/internal/invoice/domain"
	invoicerepository "github.com/smartlogix/cargopro/internal/invoice/repository"
	invoiceservice "github.com/smartlogix/cargopro/internal/invoice/service"
	parceldomain "github.com/smartlogix/cargopro/internal/parcel/domain"
	parcelrepository "github.com/smartlogix/cargopro/internal/parcel/repository"
	parcelservice "github.com/smartlogix/cargopro/internal/parcel/service"
	"github.com/smartlogix/cargopro/internal/pdfexport"
	"github.com/smartlogix/cargopro/internal/providers/pdf"
	settingsdomain "github.com/smartlogix/cargopro/internal/settings/domain"
	settingsservice "github.com/smartlogix/cargopro/internal/settings/service"
	shipmentdomain "github.com/smartlogix/cargopro/internal/shipment/domain"
	shipmentrepository "github.com/smartlogix/cargopro/internal/shipment/repository"
	shipmentservice "github.com/smartlogix/cargopro/internal/shipment/service"
	"github.com/smartlogix/cargopro/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	server *Server
	db     *gorm.DB
	node   *snowflake.Node
	tokens *token.Issuer
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(memoryDSN(t)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&identitydomain.User{},
		&identitydomain.Group{},
		&identitydomain.UserGroup{},
		&identitydomain.UserProfile{},
		&settingsdomain.SystemSettings{},
		&customerdomain.Customer{},
		&shipmentdomain.Shipment{},
		&parceldomain.Parcel{},
		&documentdomain.Document{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{
		Environment: "test",
		MediaRoot:   t.TempDir(),
	}

	issuer, err := token.NewIssuer("server-test-secret", 30*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	enforcer, err := accesspolicy.NewEnforcer(db)
	require.NoError(t, err)
	policySvc := accesspolicy.NewService(accesspolicy.Params{Log: log, Enforcer: enforcer})

	identitySvc := identityservice.New(identityservice.Params{
		DB: db, Log: log, GenID: node, Repo: identityrepository.Provide(),
	})
	customerSvc := customerservice.New(customerservice.Params{
		DB: db, Log: log, GenID: node, Repo: customerrepository.Provide(),
	})
	shipmentSvc := shipmentservice.New(shipmentservice.Params{
		DB: db, Log: log, Repo: shipmentrepository.Provide(),
	})
	parcelSvc := parcelservice.New(parcelservice.Params{
		DB: db, Log: log, Repo: parcelrepository.Provide(),
	})
	store, err := storage.NewLocal(storage.Params{Config: cfg, Log: log})
	require.NoError(t, err)
	documentSvc := documentservice.New(documentservice.Params{
		DB: db, Log: log, Repo: documentrepository.Provide(), Store: store,
	})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Repo: invoicerepository.Provide(),
	})
	settingsSvc := settingsservice.New(settingsservice.Params{DB: db, Log: log})

	holder, err := config.NewDashboardConfigHolder()
	require.NoError(t, err)
	dashboardSvc := dashboardservice.New(dashboardservice.Params{
		DB: db, Log: log, Config: holder,
	})

	pdfExportSvc := pdfexport.New(pdfexport.Params{
		DB: db, Log: log, Provider: pdf.New(), Settings: settingsSvc,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		Tokens:       issuer,
		IdentitySvc:  identitySvc,
		PolicySvc:    policySvc,
		CustomerSvc:  customerSvc,
		ShipmentSvc:  shipmentSvc,
		ParcelSvc:    parcelSvc,
		DocumentSvc:  documentSvc,
		InvoiceSvc:   invoiceSvc,
		SettingsSvc:  settingsSvc,
		DashboardSvc: dashboardSvc,
		PDFExportSvc: pdfExportSvc,
	})

	return &testEnv{server: srv, db: db, node: node, tokens: issuer}
}

// newUser registers an account and forces the stored role. Returns a
// bearer token whose identity the middleware reloads per request.
func (e *testEnv) newUser(t *testing.T, username, email string, role identitydomain.Role) string {
	t.Helper()

	id := e.register(t, username, email)
	if role != identitydomain.RoleCustomer {
		require.NoError(t, e.db.Model(&identitydomain.User{}).
			Where("id = ?", id.User.ID).
			Update("role", role).Error)
		id.Role = role
	}

	pair, err := e.tokens.IssuePair(id)
	require.NoError(t, err)
	return pair.Access
}

func (e *testEnv) register(t *testing.T, username, email string) identitydomain.Identity {
	t.Helper()

	body := map[string]string{
		"username":  username,
		"email":     email,
		"password":  "sw0rdfish-pass",
		"password2": "sw0rdfish-pass",
	}
	rec := e.do(t, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user identitydomain.User
	require.NoError(t, e.db.Where("username = ?", username).First(&user).Error)
	return identitydomain.Identity{User: user, Role: identitydomain.RoleCustomer}
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

// assertAmount compares decimal amounts by value so formatting
// differences between dialects do not matter.
func assertAmount(t *testing.T, want string, got any) {
	t.Helper()
	raw, ok := got.(string)
	require.True(t, ok, "expected string amount, got %T", got)
	gotDec, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	wantDec, err := decimal.NewFromString(want)
	require.NoError(t, err)
	assert.True(t, wantDec.Equal(gotDec), "want %s, got %s", want, raw)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var envelope errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Error
}

func (e *testEnv) seedShipment(t *testing.T, shipmentNo, admin string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/shipments", admin, map[string]any{
		"shipment_no": shipmentNo,
		"transport":   "Sea",
		"vessel":      "MV Amani",
		"weight":      1200.0,
		"weight_unit": "kg",
		"volume":      8.0,
		"volume_unit": "m3",
		"origin":      "Dar es Salaam",
		"destination": "Mwanza",
		"status":      "In-transit",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func (e *testEnv) seedCustomer(t *testing.T, admin, name, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/customers", admin, map[string]any{
		"name":   name,
		"email":  email,
		"status": "Active",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeData(t, rec)["id"].(string)
}

func (e *testEnv) seedParcel(t *testing.T, admin, parcelNo, shipmentNo, customerID, charge string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/parcels", admin, map[string]any{
		"parcel_no":      parcelNo,
		"shipment_no":    shipmentNo,
		"customer_id":    customerID,
		"weight":         10.0,
		"weight_unit":    "kg",
		"volume":         0.2,
		"volume_unit":    "m3",
		"charge":         charge,
		"payment":        "Unpaid",
		"commodity_type": "Box",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	env := setupTestServer(t)

	for _, path := range []string{"/customers", "/shipments", "/parcels", "/invoices", "/settings", "/users/me"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRegisterPasswordMismatch(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodPost, "/register", "", map[string]string{
		"username":  "neema",
		"email":     "neema@example.com",
		"password":  "one-password",
		"password2": "another-password",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "password2", payload.Errors[0].Field)
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := setupTestServer(t)

	env.register(t, "juma", "juma@example.com")

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "juma",
		"password": "sw0rdfish-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	access := data["access"].(string)
	refresh := data["refresh"].(string)
	require.NotEmpty(t, access)

	rec = env.do(t, http.MethodGet, "/users/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeData(t, rec)
	assert.Equal(t, "customer", me["role"])

	// refresh rotates into a fresh pair; access tokens are rejected
	rec = env.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh": access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupTestServer(t)
	env.register(t, "juma", "juma@example.com")

	rec := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "juma",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStaffCannotDelete(t *testing.T) {
	env := setupTestServer(t)
	admin := env.newUser(t, "admin1", "admin1@example.com", identitydomain.RoleAdmin)
	staff := env.newUser(t, "staff1", "staff1@example.com", identitydomain.RoleStaff)

	env.seedShipment(t, "SHP-001", admin)
	customerID := env.seedCustomer(t, admin, "Atlas Traders", "atlas@example.com")

	rec := env.do(t, http.MethodDelete, "/shipments/SHP-001", staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodDelete, "/customers/"+customerID, staff, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the same deletes succeed for admin
	rec = env.do(t, http.MethodDelete, "/shipments/SHP-001", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodDelete, "/customers/"+customerID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestStaffCanCreateAndUpdate(t *testing.T) {
	env := setupTestServer(t)
	staff := env.newUser(t, "staff1", "staff1@example.com", identitydomain.RoleStaff)

	env.seedShipment(t, "SHP-001", staff)

	rec := env.do(t, http.MethodPatch, "/shipments/SHP-001", staff, map[string]any{
		"status": "Delivered",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Delivered", decodeData(t, rec)["status"])
}

func TestCustomerScoping(t *testing.T) {
	env := setupTestServer(t)
	admin := env.newUser(t, "admin1", "admin1@example.com", identitydomain.RoleAdmin)
	mine := env.newUser(t, "asha", "asha@example.com", identitydomain.RoleCustomer)

	ownID := env.seedCustomer(t, admin, "Asha Hassan", "asha@example.com")
	otherID := env.seedCustomer(t, admin, "Someone Else", "else@example.com")

	// list is filtered to the caller's own record
	rec := env.do(t, http.MethodGet, "/customers", mine, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	customers := data["customers"].([]any)
	require.Len(t, customers, 1)
	assert.Equal(t, ownID, customers[0].(map[string]any)["id"])

	// out-of-scope rows read as absent, not forbidden
	rec = env.do(t, http.MethodGet, "/customers/"+otherID, mine, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/customers/"+ownID, mine, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// creating resources stays a back-office power
	rec = env.do(t, http.MethodPost, "/customers", mine, map[string]any{
		"name": "X", "email": "x@example.com",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCustomerSeesOnlyOwnParcels(t *testing.T) {
	env := setupTestServer(t)
	admin := env.newUser(t, "admin1", "admin1@example.com", identitydomain.RoleAdmin)
	mine := env.newUser(t, "asha", "asha@example.com", identitydomain.RoleCustomer)

	ownID := env.seedCustomer(t, admin, "Asha Hassan", "asha@example.com")
	otherID := env.seedCustomer(t, admin, "Someone Else", "else@example.com")
	env.seedShipment(t, "SHP-001", admin)
	env.seedParcel(t, admin, "PCL-001", "SHP-001", ownID, "1000")
	env.seedParcel(t, admin, "PCL-002", "SHP-001", otherID, "2500")

	rec := env.do(t, http.MethodGet, "/parcels", mine, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	parcels := decodeData(t, rec)["parcels"].([]any)
	require.Len(t, parcels, 1)
	assert.Equal(t, "PCL-001", parcels[0].(map[string]any)["parcel_no"])

	rec = env.do(t, http.MethodGet, "/parcels/PCL-002", mine, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParcelStatusMirrorsShipment(t *testing.T) {
	env := setupTestServer(t)
	admin := env.newUser(t, "admin1", "admin1@example.com", identitydomain.RoleAdmin)

	customerID := env.seedCustomer(t, admin, "Atlas Traders", "atlas@example.com")
	env.seedShipment(t, "SHP-001", admin)
	env.seedParcel(t, admin, "PCL-001", "SHP-001", customerID, "500")

	rec := env.do(t, http.MethodGet, "/parcels/PCL-001", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "In-transit", decodeData(t, rec)["status"])

	rec = env.do(t, http.MethodPatch, "/shipments/SHP-001", admin, map[string]any{"status": "Delivered"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/parcels/PCL-001", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Delivered", decodeData(t, rec)["status"])
}

func TestInvoiceTotalsOverAPI(t *testing.T) {
	env := setupTestServer(t)
	admin := env.newUser(t, "admin1", "admin1@example.com", identitydomain.RoleAdmin)

	customerID := env.seedCustomer(t, admin, "Atlas Traders", "atlas@example.com")
	env.seedShipment(t, "SHP-001", admin)
	env.seedParcel(t, admin, "PCL-001", "SHP-001", customerID, "1000")
	env.seedParcel(t, admin, "PCL-002", "SHP-001", customerID, "2500")

	due := time.Now().UTC().AddDate(0, 1, 0).Format(time.RFC3339)
	rec := env.do(t, http.MethodPost, "/invoices", admin, map[string]any{
		"invoice_no":  "INV-001",
		"customer_id": customerID,
		"due_date":    due,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assertAmount(t, "3500", data["total_amount"])
	assertAmount(t, "3500", data["final_amount"])

	// a later parcel is attached by the next save
	env.seedParcel(t, admin, "PCL-003", "SHP-001", customerID, "500")
	rec = env.do(t, http.MethodPatch, "/invoices/INV-001", admin, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assertAmount(t, "4000", decodeData(t, rec)["total_amount"])

	rec = env.do(t, http.MethodGet, "/invoices/INV-001/items", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// duplicate invoice numbers conflict
	rec = env.do(t, http.MethodPost, "/invoices", admin, map[string]any{
		"invoice_no":  "INV-001",
		"customer_id": customerID,
		"due_date":    due,
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestSettingsAccess(t *testing.T) {
	env := setupTestServer(t)
	admin := env.newUser(t, "admin1", "admin1@example.com", identitydomain.RoleAdmin)
	staff := env.newUser(t, "staff1", "staff1@example.com", identitydomain.RoleStaff)
	customer := env.newUser(t, "asha", "asha@example.com", identitydomain.RoleCustomer)

	for name, bearer := range map[string]string{"admin": admin, "staff": staff, "customer": customer} {
		rec := env.do(t, http.MethodGet, "/settings", bearer, nil)
		assert.Equal(t, http.StatusOK, rec.Code, name)
	}

	update := map[string]any{"site_name": "CargoPro Ltd"}
	rec := env.do(t, http.MethodPut, "/settings", staff, update)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(t, http.MethodPut, "/settings", customer, update)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/settings", admin, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "CargoPro Ltd", decodeData(t, rec)["site_name"])
}

func TestChartDataRequiresBackOfficeRole(t *testing.T) {
	env := setupTestServer(t)
	staff := env.newUser(t, "staff1", "staff1@example.com", identitydomain.RoleStaff)
	customer := env.newUser(t, "asha", "asha@example.com", identitydomain.RoleCustomer)

	rec := env.do(t, http.MethodGet, "/chart-data", staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/chart-data", customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerateInvoicePDF(t *testing.T) {
	env := setupTestServer(t)
	admin := env.newUser(t, "admin1", "admin1@example.com", identitydomain.RoleAdmin)

	customerID := env.seedCustomer(t, admin, "Atlas Traders", "atlas@example.com")
	env.seedShipment(t, "SHP-001", admin)
	env.seedParcel(t, admin, "PCL-001", "SHP-001", customerID, "1000")

	due := time.Now().UTC().AddDate(0, 1, 0).Format(time.RFC3339)
	rec := env.do(t, http.MethodPost, "/invoices", admin, map[string]any{
		"invoice_no":  "INV-001",
		"customer_id": customerID,
		"due_date":    due,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/customers/%s/generate-invoice", customerID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")), "expected a PDF stream")

	// a customer with no invoices reads as absent
	otherID := env.seedCustomer(t, admin, "Empty Co", "empty@example.com")
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/customers/%s/generate-invoice", otherID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// memoryDSN names a private shared-cache database per test so every
// pooled connection lands on the same in-memory store.
func memoryDSN(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return "file:" + name + "?mode=memory&cache=shared"
}
