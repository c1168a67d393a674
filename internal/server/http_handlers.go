package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"jobmatch/internal/errors"
	"jobmatch/internal/formatters"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultHealthCheckTimeout = 5 * time.Second

// breakerReporter is implemented by providers guarded by circuit breakers
type breakerReporter interface {
	CircuitBreakerStats() map[string]any
}

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	if s.AppConfig == nil || s.AppConfig.Observability.Health.Timeout <= 0 {
		return defaultHealthCheckTimeout
	}
	return s.AppConfig.Observability.Health.Timeout
}

// healthHandler reports service health including the explanation model
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.getHealthCheckTimeout())
	defer cancel()

	engine := s.Pipeline.Engine()
	response := map[string]any{
		"status":  "healthy",
		"service": "jobmatch",
		"version": s.Version,
		"engine": map[string]any{
			"workers": engine.Workers(),
			"skills":  engine.Resolver().Size(),
		},
	}

	aiStatus, healthy := s.checkAIHealth(ctx)
	response["ai"] = aiStatus

	if s.AliasWatcher != nil {
		response["alias_watcher"] = s.AliasWatcher.Status()
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// checkAIHealth checks the explanation model. Without a provider every
// explanation uses the template, which is healthy.
func (s *Server) checkAIHealth(ctx context.Context) (map[string]any, bool) {
	provider := s.Pipeline.Explainer().Provider()
	if provider == nil {
		return map[string]any{"enabled": false, "fallback": "template"}, true
	}

	info := provider.GetModelInfo(ctx)
	status := map[string]any{
		"enabled": true,
		"model":   info,
	}
	if breaker, ok := provider.(breakerReporter); ok {
		status["circuit_breakers"] = breaker.CircuitBreakerStats()
	}
	return status, info != nil && info.Available
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	engine := s.Pipeline.Engine()
	response := map[string]any{
		"service":        "jobmatch",
		"version":        s.Version,
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_jobs_per_request":   maxJobsPerRequest,
			"auth_enabled":           len(s.APIKeys) > 0,
		},
		"engine": map[string]any{
			"workers": engine.Workers(),
			"skills":  engine.Resolver().Size(),
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.AliasWatcher != nil {
		response["alias_watcher"] = s.AliasWatcher.Status()
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// writeResult writes an operation result as JSON, or as text or markdown
// when the format query parameter asks for it
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, span trace.Span, data any) {
	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, data)
		return
	}

	output, err := formatters.GlobalRegistry.Format(data, format)
	if err != nil {
		s.writeAppError(w, span, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported format %q", format), err).
			WithContext("supported", formatters.GlobalRegistry.GetSupportedFormats()))
		return
	}

	contentType := "text/plain; charset=utf-8"
	if format == "markdown" {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, output); err != nil {
		span.RecordError(err)
	}
}

// writeAppError maps validation errors to 400 and everything else to 500
func (s *Server) writeAppError(w http.ResponseWriter, span trace.Span, err error) {
	span.RecordError(err)

	appErr, ok := errors.AsAppError(err)
	if !ok {
		s.Logger.LogError(err, "Request failed")
		span.SetAttributes(attribute.String("error.type", string(errors.ErrorTypeInternal)))
		writeErrorResponse(w, "Request failed", err.Error(), http.StatusInternalServerError)
		return
	}

	span.SetAttributes(
		attribute.String("error.type", string(appErr.Type)),
		attribute.String("error.code", appErr.Code),
	)

	status := http.StatusInternalServerError
	title := "Request failed"
	if appErr.Type == errors.ErrorTypeValidation {
		status = http.StatusBadRequest
		title = "Invalid input"
	} else {
		s.Logger.LogError(err, "Request failed")
	}

	writeJSON(w, status, ErrorResponse{
		Error:   title,
		Message: appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Context,
	})
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
