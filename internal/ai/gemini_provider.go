package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"jobmatch/internal/config"
	"jobmatch/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const (
	modelCheckTimeout = 10 * time.Second
	maxBackoff        = 30 * time.Second
)

// GeminiProvider implements Provider with Google Gemini
type GeminiProvider struct {
	client       *genai.Client
	config       config.OperationAIConfig
	prompts      *PromptSet
	breaker      *Breaker[*genai.GenerateContentResponse]
	modelBreaker *Breaker[*genai.Model]
	logger       *errors.Logger
	// backoff returns the wait before a retry; replaced in tests
	backoff func(attempt int) time.Duration
}

var _ Provider = (*GeminiProvider)(nil)

// explanationResponse is the JSON shape requested from the model
type explanationResponse struct {
	Recommendation string `json:"recommendation"`
}

// NewGeminiProvider creates a Gemini provider for recommendation explanations
func NewGeminiProvider(cfg config.OperationAIConfig, logger *errors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey, "Gemini API key is not configured", nil)
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	prompts, err := NewPromptSet(cfg.Prompts.System, cfg.Prompts.User)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid explanation prompt", err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:       client,
		config:       cfg,
		prompts:      prompts,
		breaker:      NewBreaker[*genai.GenerateContentResponse](breakerName("gemini", "explain"), cfg.CircuitBreaker, logger),
		modelBreaker: NewBreaker[*genai.Model](breakerName("gemini", "model"), cfg.CircuitBreaker, logger),
		logger:       logger,
		backoff:      jitteredBackoff,
	}, nil
}

// Explain asks the model for a short recommendation text
func (g *GeminiProvider) Explain(ctx context.Context, input ExplainInput) (string, *TokenUsage, error) {
	ctx, span := otel.Tracer("jobmatch.ai.gemini").Start(ctx, "gemini.explain_match")
	defer span.End()

	if g.config.Timeout != nil && *g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *g.config.Timeout)
		defer cancel()
	}

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.String("job.id", input.Job.ID),
		attribute.Int("match.overall_score", input.Match.OverallScore),
	)

	userPrompt, err := g.prompts.RenderUser(input)
	if err != nil {
		span.RecordError(err)
		return "", nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to build explanation prompt", err)
	}

	genaiConfig := g.buildExplainConfig()
	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, "explain_match", func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to generate explanation", err)
	}

	text, err := parseExplanation(result.Text())
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, errors.NewAIError("AI_RESPONSE_PARSE_FAILED", "Failed to parse explanation", err)
	}

	usage := extractTokenUsage(result)
	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))
	return text, usage, nil
}

// parseExplanation accepts the structured response and rejects empty text
func parseExplanation(raw string) (string, error) {
	var resp explanationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Recommendation)
	if text == "" {
		return "", fmt.Errorf("empty recommendation")
	}
	return text, nil
}

func (g *GeminiProvider) buildExplainConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(g.prompts.System, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"recommendation": {Type: genai.TypeString},
			},
			Required: []string{"recommendation"},
		},
	}
	if g.config.Temperature != nil && *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}
	return cfg
}

// GetModelInfo checks that the configured model is reachable
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.config.Model}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed", "model", g.config.Model, "error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

// CircuitBreakerStats reports both breakers
func (g *GeminiProvider) CircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.breaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.breaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	return nil
}

// executeWithRetry retries transient failures with exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	maxRetries := 0
	if g.config.MaxRetries != nil {
		maxRetries = *g.config.MaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			break
		}
	}

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, maxRetries, lastErr)
}

// jitteredBackoff doubles from one second with up to 10% jitter, capped at maxBackoff
func jitteredBackoff(attempt int) time.Duration {
	base := time.Second << (attempt - 1)
	jitter := time.Duration(0)
	if n, err := rand.Int(rand.Reader, big.NewInt(int64(base/10)+1)); err == nil {
		jitter = time.Duration(n.Int64())
	}
	return min(base+jitter, maxBackoff)
}

// isRetryableError reports whether err is a network failure or a transient API status
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
