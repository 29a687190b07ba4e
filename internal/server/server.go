package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smartlogix/cargopro/internal/accesspolicy"
	"github.com/smartlogix/cargopro/internal/config"
	"github.com/smartlogix/cargopro/internal/customer"
	customerdomain "github.com/smartlogix/cargopro/internal/customer/domain"
	"github.com/smartlogix/cargopro/internal/dashboard"
	dashboarddomain "github.com/smartlogix/cargopro/internal/dashboard/domain"
	"github.com/smartlogix/cargopro/internal/document"
	documentdomain "github.com/smartlogix/cargopro/internal/document/domain"
	"github.com/smartlogix/cargopro/internal/identity"
	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	"github.com/smartlogix/cargopro/internal/identity/token"
	"github.com/smartlogix/cargopro/internal/invoice"
	invoicedomain "github.com/smartlogix/cargopro/internal/invoice/domain"
	"github.com/smartlogix/cargopro/internal/observability"
	obslogger "github.com/smartlogix/cargopro/internal/observability/logger"
	obsmetrics "github.com/smartlogix/cargopro/internal/observability/metrics"
	obstracing "github.com/smartlogix/cargopro/internal/observability/tracing"
	"github.com/smartlogix/cargopro/internal/parcel"
	parceldomain "github.com/smartlogix/cargopro/internal/parcel/domain"
	"github.com/smartlogix/cargopro/internal/pdfexport"
	"github.com/smartlogix/cargopro/internal/providers/pdf"
	"github.com/smartlogix/cargopro/internal/settings"
	settingsdomain "github.com/smartlogix/cargopro/internal/settings/domain"
	"github.com/smartlogix/cargopro/internal/shipment"
	shipmentdomain "github.com/smartlogix/cargopro/internal/shipment/domain"
	"github.com/smartlogix/cargopro/internal/storage"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(provideTokenIssuer),
	accesspolicy.Module,
	identity.Module,
	customer.Module,
	shipment.Module,
	parcel.Module,
	storage.Module,
	document.Module,
	invoice.Module,
	settings.Module,
	dashboard.Module,
	pdf.Module,
	pdfexport.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func provideTokenIssuer(cfg config.Config) (*token.Issuer, error) {
	secret := cfg.JWTSecret
	if secret == "" && cfg.Environment != "production" {
		secret = "cargopro-dev-secret"
	}
	return token.NewIssuer(secret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	tokens       *token.Issuer
	identitySvc  identitydomain.Service
	policySvc    accesspolicy.Service
	customerSvc  customerdomain.Service
	shipmentSvc  shipmentdomain.Service
	parcelSvc    parceldomain.Service
	documentSvc  documentdomain.Service
	invoiceSvc   invoicedomain.Service
	settingsSvc  settingsdomain.Service
	dashboardSvc dashboarddomain.Service
	pdfExportSvc pdfexport.Service
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Tokens       *token.Issuer
	IdentitySvc  identitydomain.Service
	PolicySvc    accesspolicy.Service
	CustomerSvc  customerdomain.Service
	ShipmentSvc  shipmentdomain.Service
	ParcelSvc    parceldomain.Service
	DocumentSvc  documentdomain.Service
	InvoiceSvc   invoicedomain.Service
	SettingsSvc  settingsdomain.Service
	DashboardSvc dashboarddomain.Service
	PDFExportSvc pdfexport.Service
	ObsMetrics   *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		tokens:       p.Tokens,
		identitySvc:  p.IdentitySvc,
		policySvc:    p.PolicySvc,
		customerSvc:  p.CustomerSvc,
		shipmentSvc:  p.ShipmentSvc,
		parcelSvc:    p.ParcelSvc,
		documentSvc:  p.DocumentSvc,
		invoiceSvc:   p.InvoiceSvc,
		settingsSvc:  p.SettingsSvc,
		dashboardSvc: p.DashboardSvc,
		pdfExportSvc: p.PDFExportSvc,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	s.engine.POST("/register", s.Register)

	auth := s.engine.Group("/auth")
	auth.POST("/login", s.Login)
	auth.POST("/refresh", s.Refresh)

	s.engine.GET("/users/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/", s.AuthRequired())

	// -------- Customers --------
	api.GET("/customers", s.RequireAction(accesspolicy.ObjectCustomer, accesspolicy.ActionRead), s.ListCustomers)
	api.POST("/customers", s.RequireAction(accesspolicy.ObjectCustomer, accesspolicy.ActionCreate), s.CreateCustomer)
	api.GET("/customers/:id", s.RequireAction(accesspolicy.ObjectCustomer, accesspolicy.ActionRead), s.GetCustomerByID)
	api.PUT("/customers/:id", s.RequireAction(accesspolicy.ObjectCustomer, accesspolicy.ActionUpdate), s.UpdateCustomer)
	api.PATCH("/customers/:id", s.RequireAction(accesspolicy.ObjectCustomer, accesspolicy.ActionUpdate), s.UpdateCustomer)
	api.DELETE("/customers/:id", s.RequireAction(accesspolicy.ObjectCustomer, accesspolicy.ActionDelete), s.DeleteCustomer)
	api.GET("/customers/:id/generate-invoice", s.RequireAction(accesspolicy.ObjectInvoice, accesspolicy.ActionExport), s.GenerateCustomerInvoice)

	// -------- Shipments --------
	api.GET("/shipments", s.RequireAction(accesspolicy.ObjectShipment, accesspolicy.ActionRead), s.ListShipments)
	api.POST("/shipments", s.RequireAction(accesspolicy.ObjectShipment, accesspolicy.ActionCreate), s.CreateShipment)
	api.GET("/shipments/:shipment_no", s.RequireAction(accesspolicy.ObjectShipment, accesspolicy.ActionRead), s.GetShipment)
	api.PUT("/shipments/:shipment_no", s.RequireAction(accesspolicy.ObjectShipment, accesspolicy.ActionUpdate), s.UpdateShipment)
	api.PATCH("/shipments/:shipment_no", s.RequireAction(accesspolicy.ObjectShipment, accesspolicy.ActionUpdate), s.UpdateShipment)
	api.DELETE("/shipments/:shipment_no", s.RequireAction(accesspolicy.ObjectShipment, accesspolicy.ActionDelete), s.DeleteShipment)
	api.GET("/shipments/:shipment_no/customers", s.RequireAction(accesspolicy.ObjectShipment, accesspolicy.ActionRead), s.ListShipmentCustomers)

	// -------- Parcels --------
	api.GET("/parcels", s.RequireAction(accesspolicy.ObjectParcel, accesspolicy.ActionRead), s.ListParcels)
	api.POST("/parcels", s.RequireAction(accesspolicy.ObjectParcel, accesspolicy.ActionCreate), s.CreateParcel)
	api.GET("/parcels/:parcel_no", s.RequireAction(accesspolicy.ObjectParcel, accesspolicy.ActionRead), s.GetParcel)
	api.PUT("/parcels/:parcel_no", s.RequireAction(accesspolicy.ObjectParcel, accesspolicy.ActionUpdate), s.UpdateParcel)
	api.PATCH("/parcels/:parcel_no", s.RequireAction(accesspolicy.ObjectParcel, accesspolicy.ActionUpdate), s.UpdateParcel)
	api.DELETE("/parcels/:parcel_no", s.RequireAction(accesspolicy.ObjectParcel, accesspolicy.ActionDelete), s.DeleteParcel)

	// -------- Documents --------
	api.GET("/documents", s.RequireAction(accesspolicy.ObjectDocument, accesspolicy.ActionRead), s.ListDocuments)
	api.POST("/documents", s.RequireAction(accesspolicy.ObjectDocument, accesspolicy.ActionCreate), s.CreateDocument)
	api.GET("/documents/:document_no", s.RequireAction(accesspolicy.ObjectDocument, accesspolicy.ActionRead), s.GetDocument)
	api.PUT("/documents/:document_no", s.RequireAction(accesspolicy.ObjectDocument, accesspolicy.ActionUpdate), s.UpdateDocument)
	api.PATCH("/documents/:document_no", s.RequireAction(accesspolicy.ObjectDocument, accesspolicy.ActionUpdate), s.UpdateDocument)
	api.DELETE("/documents/:document_no", s.RequireAction(accesspolicy.ObjectDocument, accesspolicy.ActionDelete), s.DeleteDocument)

	// -------- Invoices --------
	api.GET("/invoices", s.RequireAction(accesspolicy.ObjectInvoice, accesspolicy.ActionRead), s.ListInvoices)
	api.POST("/invoices", s.RequireAction(accesspolicy.ObjectInvoice, accesspolicy.ActionCreate), s.CreateInvoice)
	api.GET("/invoices/:invoice_no", s.RequireAction(accesspolicy.ObjectInvoice, accesspolicy.ActionRead), s.GetInvoice)
	api.PUT("/invoices/:invoice_no", s.RequireAction(accesspolicy.ObjectInvoice, accesspolicy.ActionUpdate), s.UpdateInvoice)
	api.PATCH("/invoices/:invoice_no", s.RequireAction(accesspolicy.ObjectInvoice, accesspolicy.ActionUpdate), s.UpdateInvoice)
	api.DELETE("/invoices/:invoice_no", s.RequireAction(accesspolicy.ObjectInvoice, accesspolicy.ActionDelete), s.DeleteInvoice)

	api.GET("/invoices/:invoice_no/items", s.RequireAction(accesspolicy.ObjectInvoiceItem, accesspolicy.ActionRead), s.ListInvoiceItems)
	api.POST("/invoices/:invoice_no/items", s.RequireAction(accesspolicy.ObjectInvoiceItem, accesspolicy.ActionCreate), s.CreateInvoiceItem)
	api.PATCH("/invoices/:invoice_no/items/:item_id", s.RequireAction(accesspolicy.ObjectInvoiceItem, accesspolicy.ActionUpdate), s.UpdateInvoiceItem)
	api.DELETE("/invoices/:invoice_no/items/:item_id", s.RequireAction(accesspolicy.ObjectInvoiceItem, accesspolicy.ActionDelete), s.DeleteInvoiceItem)

	// -------- Dashboard --------
	api.GET("/chart-data", s.RequireAction(accesspolicy.ObjectDashboard, accesspolicy.ActionRead), s.GetChartData)

	// -------- Settings --------
	api.GET("/settings", s.RequireAction(accesspolicy.ObjectSettings, accesspolicy.ActionRead), s.GetSettings)
	api.PUT("/settings", s.RequireAction(accesspolicy.ObjectSettings, accesspolicy.ActionUpdate), s.UpdateSettings)
	api.PATCH("/settings", s.RequireAction(accesspolicy.ObjectSettings, accesspolicy.ActionUpdate), s.UpdateSettings)
}
