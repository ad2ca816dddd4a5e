package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"

	"github.com/eventhub/backend/internal/infrastructure/config"
)

// ServiceVersion is reported on every exported span, metric and log record.
// Overridden at build time with -ldflags "-X .../telemetry.ServiceVersion=...".
var ServiceVersion = "dev"

// Config holds the settings shared by the trace, metric and log providers.
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Environment       string
	Insecure          bool
}

// FromAppConfig maps application settings onto the provider settings.
// Metrics and logs are enabled individually on top of the master switch.
func FromAppConfig(app config.AppConfig, tel config.TelemetryConfig) (traces, metrics, logs Config) {
	base := Config{
		CollectorEndpoint: tel.CollectorEndpoint,
		SamplingRatio:     tel.SamplingRatio,
		ServiceName:       tel.ServiceName,
		Environment:       app.Env,
		Insecure:          tel.Insecure,
	}
	if base.ServiceName == "" {
		base.ServiceName = app.Name
	}

	traces, metrics, logs = base, base, base
	traces.Enabled = tel.Enabled
	metrics.Enabled = tel.Enabled && tel.MetricsEnabled
	logs.Enabled = tel.Enabled && tel.LogsEnabled
	return traces, metrics, logs
}

func newResource(cfg Config) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(ServiceVersion),
			attribute.String("deployment.environment.name", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
