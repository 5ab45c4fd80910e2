package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
}

type Provider struct {
	mp *sdkmetric.MeterProvider
}

// NewProvider builds a MeterProvider tagged with the service resource. Extra
// readers (exporters) are optional; without one nothing leaves the process.
func NewProvider(_ context.Context, cfg Config, readers ...sdkmetric.Reader) *Provider {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	return &Provider{mp: sdkmetric.NewMeterProvider(opts...)}
}

func (p *Provider) MeterProvider() metric.MeterProvider {
	return p.mp
}

func (p *Provider) Meter(name string) metric.Meter {
	return p.mp.Meter(name)
}

func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}
