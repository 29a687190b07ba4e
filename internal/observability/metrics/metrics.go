package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	invoiceRecomputes metric.Int64Counter
	documentUploads   metric.Int64Counter
	authLogins        metric.Int64Counter
	pdfRenders        metric.Int64Counter
	accessDenied      metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "cargopro"
	}
	meter := provider.Meter(name)

	invoiceRecomputes, err := meter.Int64Counter("cargopro_invoice_recomputes_total")
	if err != nil {
		return nil, err
	}
	documentUploads, err := meter.Int64Counter("cargopro_document_uploads_total")
	if err != nil {
		return nil, err
	}
	authLogins, err := meter.Int64Counter("cargopro_auth_logins_total")
	if err != nil {
		return nil, err
	}
	pdfRenders, err := meter.Int64Counter("cargopro_pdf_renders_total")
	if err != nil {
		return nil, err
	}
	accessDenied, err := meter.Int64Counter("cargopro_access_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		invoiceRecomputes: invoiceRecomputes,
		documentUploads:   documentUploads,
		authLogins:        authLogins,
		pdfRenders:        pdfRenders,
		accessDenied:      accessDenied,
	}, nil
}

// RecordInvoiceRecompute increments invoice recompute counts.
func (m *Metrics) RecordInvoiceRecompute(ctx context.Context, trigger string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("trigger", strings.TrimSpace(trigger)))
	m.invoiceRecomputes.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDocumentUpload increments document upload counts.
func (m *Metrics) RecordDocumentUpload(ctx context.Context, documentType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("document_type", strings.TrimSpace(documentType)))
	m.documentUploads.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLogin increments login counts by outcome.
func (m *Metrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.authLogins.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPDFRender increments invoice PDF render counts.
func (m *Metrics) RecordPDFRender(ctx context.Context) {
	if m == nil {
		return
	}
	m.pdfRenders.Add(ctx, 1)
}

// RecordAccessDenied increments authorization denial counts.
func (m *Metrics) RecordAccessDenied(ctx context.Context, resource, action string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("resource", strings.TrimSpace(resource)),
		attribute.String("action", strings.TrimSpace(action)),
	)
	m.accessDenied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"trigger":       {},
	"document_type": {},
	"outcome":       {},
	"resource":      {},
	"action":        {},
	"status_code":   {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
