package config

type TelemetryConfig interface {
	GetOtelEndpoint() string
	GetOtelEnabled() bool
}

type Telemetry struct {
	OtelEndpoint string `env:"OTEL_ENDPOINT"`
	OtelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

var _ TelemetryConfig = Telemetry{}

func (t Telemetry) GetOtelEndpoint() string {
	return t.OtelEndpoint
}

// GetOtelEnabled reports whether tracing should be exported. Tracing also
// needs an endpoint.
func (t Telemetry) GetOtelEnabled() bool {
	return t.OtelEnabled && t.OtelEndpoint != ""
}
