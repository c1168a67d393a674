package observability

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobmatch/internal/ai"
	"jobmatch/internal/config"
	"jobmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability.Enabled = true
	cfg.Observability.ServiceName = "jobmatch"
	cfg.Observability.Tracing.SampleRate = 0.5
	cfg.Observability.Prometheus.Enabled = true
	cfg.Observability.Prometheus.Endpoint = "/prom"

	obs := FromConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", obs.ServiceVersion, "app version fills an empty service version")
	assert.Equal(t, 0.5, obs.SampleRate)
	assert.Equal(t, "/prom", obs.Prometheus.Endpoint)
	assert.Positive(t, obs.CollectionInterval)

	cfg.Observability.ServiceVersion = "pinned"
	assert.Equal(t, "pinned", FromConfig(cfg, "1.2.3").ServiceVersion)

	fallback := FromConfig(nil, "dev")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, "/metrics", fallback.Prometheus.Endpoint)
}

func TestDisabledManagerIsInert(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false})
	require.NoError(t, err)

	assert.Nil(t, om.MetricsHandler())
	assert.Equal(t, "/metrics", om.MetricsEndpoint())

	metrics := om.GetMetrics()
	ctx := context.Background()
	metrics.RecordMatches(ctx, "match", []types.MatchResult{{OverallScore: 80}}, 0.1)
	metrics.RecordExplanation(ctx, ai.SourceTemplate, 0.01, nil, nil)
	metrics.RecordSourceFetch(ctx, "files", 3, 0.2, nil)
	metrics.RecordRateLimitHit(ctx, "ip")
	metrics.RecordAliasReload(ctx, true)

	handler := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	assert.NoError(t, om.Shutdown(ctx))
}

func TestPrometheusExportsDomainMetrics(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{
		ServiceName:    "jobmatch-test",
		ServiceVersion: "test",
		Enabled:        true,
		MetricsEnabled: true,
		Prometheus:     PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	ctx := context.Background()
	metrics := om.GetMetrics()
	metrics.RecordMatches(ctx, "rank", []types.MatchResult{{OverallScore: 92}, {OverallScore: 41}}, 0.05)
	metrics.RecordExplanation(ctx, ai.SourceAI, 1.2, &ai.TokenUsage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120}, nil)
	metrics.RecordExplanation(ctx, ai.SourceTemplate, 0.001, nil, stderrors.New("quota"))
	metrics.RecordSourceFetch(ctx, "files", 4, 0.3, nil)
	metrics.RecordRateLimitHit(ctx, "api_key")

	require.NotNil(t, om.MetricsHandler())
	srv := httptest.NewServer(om.MetricsHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	for _, name := range []string{
		"jobmatch_matches_computed",
		"jobmatch_match_score",
		"jobmatch_explanations",
		"jobmatch_ai_token_usage",
		"jobmatch_source_fetches",
		"jobmatch_rate_limit_hits",
	} {
		assert.Contains(t, text, name)
	}
}
