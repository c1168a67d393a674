package observability

import (
	"context"
	"fmt"
	"net/http"

	"jobmatch/internal/ai"
	"jobmatch/internal/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Metrics holds all custom metrics for jobmatch. A zero Metrics records nothing.
type Metrics struct {
	// Matching
	MatchesComputed metric.Int64Counter
	MatchScore      metric.Int64Histogram
	MatchDuration   metric.Float64Histogram

	// Explanations
	ExplanationCount    metric.Int64Counter
	ExplanationDuration metric.Float64Histogram
	AITokenUsage        metric.Int64Histogram

	// Job sources
	SourceFetches metric.Int64Counter
	SourceJobs    metric.Int64Counter

	// Server
	RateLimitHits metric.Int64Counter
	AliasReloads  metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config         ObservabilityConfig
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
	metricsHandler http.Handler
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: obsConfig, metrics: &Metrics{}}
	if !obsConfig.Enabled {
		return om, nil
	}

	if err := om.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if obsConfig.TracingEnabled {
		if err := om.initTracing(); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if obsConfig.MetricsEnabled {
		if err := om.initMetrics(); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	return om, nil
}

func (om *ObservabilityManager) initResource() error {
	instance := om.config.ServiceInstance
	if instance == "" {
		instance = "jobmatch-1"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			semconv.ServiceInstanceID(instance),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res
	return nil
}

func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case om.config.OTLP.Enabled:
		exporter, err = om.createOTLPExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(om.config.SampleRate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics(mp.Meter(om.config.ServiceName))
}

func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(om.config.CollectionInterval)))
	}

	if om.config.OTLP.Enabled {
		reader, err := om.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if om.config.Prometheus.Enabled {
		reader, handler, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, err
		}
		readers = append(readers, reader)
		om.metricsHandler = handler
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

func (om *ObservabilityManager) initCustomMetrics(meter metric.Meter) error {
	m := &Metrics{}
	var err error

	if m.MatchesComputed, err = meter.Int64Counter("jobmatch_matches_computed_total",
		metric.WithDescription("Total number of resume-job matches computed")); err != nil {
		return fmt.Errorf("failed to create matches computed metric: %w", err)
	}
	if m.MatchScore, err = meter.Int64Histogram("jobmatch_match_score",
		metric.WithDescription("Distribution of overall match scores"),
		metric.WithExplicitBucketBoundaries(30, 50, 70, 90, 100)); err != nil {
		return fmt.Errorf("failed to create match score metric: %w", err)
	}
	if m.MatchDuration, err = meter.Float64Histogram("jobmatch_match_duration_seconds",
		metric.WithDescription("Time spent matching a resume against a batch of jobs"),
		metric.WithUnit("s")); err != nil {
		return fmt.Errorf("failed to create match duration metric: %w", err)
	}

	if m.ExplanationCount, err = meter.Int64Counter("jobmatch_explanations_total",
		metric.WithDescription("Total number of recommendation explanations by source")); err != nil {
		return fmt.Errorf("failed to create explanation count metric: %w", err)
	}
	if m.ExplanationDuration, err = meter.Float64Histogram("jobmatch_explanation_duration_seconds",
		metric.WithDescription("Time spent producing a recommendation explanation"),
		metric.WithUnit("s")); err != nil {
		return fmt.Errorf("failed to create explanation duration metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram("jobmatch_ai_token_usage",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens")); err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	if m.SourceFetches, err = meter.Int64Counter("jobmatch_source_fetches_total",
		metric.WithDescription("Total number of job source fetches")); err != nil {
		return fmt.Errorf("failed to create source fetches metric: %w", err)
	}
	if m.SourceJobs, err = meter.Int64Counter("jobmatch_source_jobs_total",
		metric.WithDescription("Total number of jobs returned by job sources")); err != nil {
		return fmt.Errorf("failed to create source jobs metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter("jobmatch_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits")); err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}
	if m.AliasReloads, err = meter.Int64Counter("jobmatch_alias_reloads_total",
		metric.WithDescription("Total number of skill alias file reloads")); err != nil {
		return fmt.Errorf("failed to create alias reloads metric: %w", err)
	}

	om.metrics = m
	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// MetricsHandler returns the Prometheus scrape handler, or nil when disabled
func (om *ObservabilityManager) MetricsHandler() http.Handler {
	return om.metricsHandler
}

// MetricsEndpoint returns the path the scrape handler is mounted on
func (om *ObservabilityManager) MetricsEndpoint() string {
	if om.config.Prometheus.Endpoint == "" {
		return "/metrics"
	}
	return om.config.Prometheus.Endpoint
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{}
	if om.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(om.tracerProvider))
	}
	if om.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(om.meterProvider))
	}
	return otelhttp.NewMiddleware(om.config.ServiceName, opts...)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops all exporters
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RecordMatches records one batch of computed matches
func (m *Metrics) RecordMatches(ctx context.Context, operation string, results []types.MatchResult, durationSeconds float64) {
	attrs := metric.WithAttributes(attribute.String("operation", operation))
	if m.MatchesComputed != nil {
		m.MatchesComputed.Add(ctx, int64(len(results)), attrs)
	}
	if m.MatchScore != nil {
		for _, r := range results {
			m.MatchScore.Record(ctx, int64(r.OverallScore), attrs)
		}
	}
	if m.MatchDuration != nil {
		m.MatchDuration.Record(ctx, durationSeconds, attrs)
	}
}

// RecordExplanation implements ai.Recorder
func (m *Metrics) RecordExplanation(ctx context.Context, source string, durationSeconds float64, usage *ai.TokenUsage, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("source", source),
		attribute.Bool("success", err == nil),
	}
	if m.ExplanationCount != nil {
		m.ExplanationCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if m.ExplanationDuration != nil {
		m.ExplanationDuration.Record(ctx, durationSeconds, metric.WithAttributes(attrs...))
	}
	m.recordTokenUsage(ctx, usage)
}

func (m *Metrics) recordTokenUsage(ctx context.Context, usage *ai.TokenUsage) {
	if usage == nil || m.AITokenUsage == nil {
		return
	}

	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}
	for _, tt := range tokenTypes {
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(attribute.String("token_type", tt.tokenType)))
	}
}

// RecordSourceFetch implements sources.Recorder
func (m *Metrics) RecordSourceFetch(ctx context.Context, source string, jobs int, _ float64, err error) {
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.Bool("success", err == nil),
	)
	if m.SourceFetches != nil {
		m.SourceFetches.Add(ctx, 1, attrs)
	}
	if m.SourceJobs != nil && jobs > 0 {
		m.SourceJobs.Add(ctx, int64(jobs), metric.WithAttributes(attribute.String("source", source)))
	}
}

// RecordRateLimitHit counts a rejected request; by is "ip" or "api_key"
func (m *Metrics) RecordRateLimitHit(ctx context.Context, by string) {
	if m.RateLimitHits != nil {
		m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limited_by", by)))
	}
}

// RecordAliasReload counts a skill alias file reload attempt
func (m *Metrics) RecordAliasReload(ctx context.Context, success bool) {
	if m.AliasReloads != nil {
		m.AliasReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}

// No-op exporter for when neither console nor OTLP output is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.config.OTLP

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(otlpConfig.Endpoint)}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.config.OTLP

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(otlpConfig.Endpoint)}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(om.config.CollectionInterval)), nil
}
