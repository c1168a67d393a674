package observability

import (
	"time"

	"jobmatch/internal/config"
)

// ObservabilityConfig holds the settings the manager needs, resolved from
// the application config
type ObservabilityConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	ConsoleOutput      bool
	TracingEnabled     bool
	SampleRate         float64
	MetricsEnabled     bool
	CollectionInterval time.Duration
	Prometheus         PrometheusConfig
	OTLP               config.OTLPConfig
}

// FromConfig creates observability config from the application config.
// version fills in the service version when none is configured.
func FromConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:        "jobmatch",
			ServiceVersion:     version,
			ServiceInstance:    "jobmatch-1",
			Enabled:            true,
			TracingEnabled:     true,
			SampleRate:         1.0,
			MetricsEnabled:     true,
			CollectionInterval: 15 * time.Second,
			Prometheus:         PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		}
	}

	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}
	interval := obs.Metrics.CollectionInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return ObservabilityConfig{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		ConsoleOutput:      obs.ConsoleOutput,
		TracingEnabled:     obs.Tracing.Enabled,
		SampleRate:         obs.Tracing.SampleRate,
		MetricsEnabled:     obs.Metrics.Enabled,
		CollectionInterval: interval,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
		},
		OTLP: obs.OTLP,
	}
}
