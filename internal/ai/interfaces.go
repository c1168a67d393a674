package ai

import (
	"context"

	"jobmatch/internal/types"
)

// ExplainInput carries everything a provider may use to explain a match
type ExplainInput struct {
	Resume types.ResumeProfile
	Job    types.JobPosting
	Match  types.MatchResult
}

// Provider generates recommendation text for a computed match.
// Token usage may be nil when the backend does not report it.
type Provider interface {
	Explain(ctx context.Context, input ExplainInput) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// Recorder receives one observation per explanation attempt
type Recorder interface {
	RecordExplanation(ctx context.Context, source string, durationSeconds float64, usage *TokenUsage, err error)
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
