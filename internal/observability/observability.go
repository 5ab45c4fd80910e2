package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-payment-reminder/internal/observability/tracing"
)

const instrumentationName = "github.com/KasumiMercury/primind-payment-reminder"

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	SamplingRate   float64
	// OTLPEndpoint is the collector base URL, e.g. http://otel-collector:4318.
	// Empty keeps telemetry in process.
	OTLPEndpoint   string
	MetricInterval time.Duration
}

type Resources struct {
	Tracing         *tracing.Provider
	Metrics         *metrics.Provider
	HTTPMetrics     *metrics.HTTPMetrics
	ReminderMetrics *metrics.ReminderMetrics
}

// Init installs global tracer and meter providers and the W3C propagators.
// Extra readers are attached to the meter provider next to the OTLP one.
func Init(ctx context.Context, cfg Config, readers ...sdkmetric.Reader) (*Resources, error) {
	var exporters []sdktrace.SpanExporter

	if cfg.OTLPEndpoint != "" {
		spanExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}

		metricExporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.OTLPEndpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}

		interval := cfg.MetricInterval
		if interval <= 0 {
			interval = time.Minute
		}

		exporters = append(exporters, spanExporter)
		readers = append(readers, sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval)))
	}

	tp := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		SamplingRate:   cfg.SamplingRate,
	}, exporters...)

	mp := metrics.NewProvider(ctx, metrics.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
	}, readers...)

	otel.SetTracerProvider(tp.TracerProvider())
	otel.SetMeterProvider(mp.MeterProvider())
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	meter := mp.Meter(instrumentationName)

	httpMetrics, err := metrics.NewHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}

	reminderMetrics, err := metrics.NewReminderMetrics(meter)
	if err != nil {
		return nil, err
	}

	return &Resources{
		Tracing:         tp,
		Metrics:         mp,
		HTTPMetrics:     httpMetrics,
		ReminderMetrics: reminderMetrics,
	}, nil
}

func (r *Resources) Shutdown(ctx context.Context) error {
	return errors.Join(
		r.Tracing.Shutdown(ctx),
		r.Metrics.Shutdown(ctx),
	)
}
