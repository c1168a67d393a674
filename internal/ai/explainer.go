package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"jobmatch/internal/config"
	"jobmatch/internal/errors"
	"jobmatch/internal/types"

	"golang.org/x/sync/errgroup"
)

// Recommendation sources
const (
	SourceAI       = "ai"
	SourceTemplate = "template"
)

// ExplainerConfig configures an Explainer. Zero values select defaults.
type ExplainerConfig struct {
	Timeout  time.Duration // per explanation, default 10s
	Workers  int           // ExplainAll parallelism, default GOMAXPROCS
	Recorder Recorder
}

// Explainer attaches recommendation text to computed matches. Scores are
// never modified and a failed or slow provider degrades to the template.
type Explainer struct {
	provider Provider
	timeout  time.Duration
	workers  int
	recorder Recorder
	logger   *errors.Logger
}

// NewExplainer creates an explainer. provider may be nil, in which case every
// explanation uses the template.
func NewExplainer(provider Provider, cfg ExplainerConfig, logger *errors.Logger) *Explainer {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	e := &Explainer{
		provider: provider,
		timeout:  cfg.Timeout,
		workers:  cfg.Workers,
		recorder: cfg.Recorder,
		logger:   logger,
	}
	if e.timeout <= 0 {
		e.timeout = 10 * time.Second
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	return e
}

// NewProvider builds the provider named by cfg
func NewProvider(cfg config.OperationAIConfig, logger *errors.Logger) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}

// Provider returns the configured provider, or nil
func (e *Explainer) Provider() Provider {
	return e.provider
}

// Explain returns match with Recommendation and RecommendationSource set
func (e *Explainer) Explain(ctx context.Context, resume types.ResumeProfile, job types.JobPosting, match types.MatchResult) types.MatchResult {
	if e.provider == nil {
		return withRecommendation(match, TemplateRecommendation(match), SourceTemplate)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	text, usage, err := e.provider.Explain(callCtx, ExplainInput{Resume: resume, Job: job, Match: match})
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("provider returned an empty explanation")
	}
	if err != nil && stderrors.Is(callCtx.Err(), context.DeadlineExceeded) {
		err = errors.NewAIError(errors.ErrCodeAITimeout, "explanation timed out", err).
			WithContext("timeout", e.timeout.String())
	}
	e.record(ctx, start, usage, err)

	if err != nil {
		e.logger.Warn("Falling back to template recommendation",
			"job_id", job.ID,
			"error", err.Error())
		return withRecommendation(match, TemplateRecommendation(match), SourceTemplate)
	}
	return withRecommendation(match, strings.TrimSpace(text), SourceAI)
}

// ExplainAll explains matches[i] against jobs[i] in parallel. The result is in
// input order. jobs and matches must have the same length.
func (e *Explainer) ExplainAll(ctx context.Context, resume types.ResumeProfile, jobs []types.JobPosting, matches []types.MatchResult) ([]types.MatchResult, error) {
	if len(jobs) != len(matches) {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("got %d jobs for %d matches", len(jobs), len(matches)), nil)
	}

	results := make([]types.MatchResult, len(matches))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range matches {
		g.Go(func() error {
			results[i] = e.Explain(ctx, resume, jobs[i], matches[i])
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (e *Explainer) record(ctx context.Context, start time.Time, usage *TokenUsage, err error) {
	if e.recorder == nil {
		return
	}
	source := SourceAI
	if err != nil {
		source = SourceTemplate
	}
	e.recorder.RecordExplanation(ctx, source, time.Since(start).Seconds(), usage, err)
}

func withRecommendation(match types.MatchResult, text, source string) types.MatchResult {
	match.Recommendation = text
	match.RecommendationSource = source
	return match
}

// TemplateRecommendation builds the deterministic fallback text from the scores
func TemplateRecommendation(match types.MatchResult) string {
	fit := "may require some additional skill development"
	if match.OverallScore >= 60 {
		fit = "aligns well with your background"
	}

	sentences := []string{
		fmt.Sprintf("With a %d%% match score, this position %s.", match.OverallScore, fit),
	}
	if len(match.MatchedSkills) > 0 {
		strengths := match.MatchedSkills[:min(3, len(match.MatchedSkills))]
		sentences = append(sentences,
			fmt.Sprintf("Your strengths in %s are valuable for this role.", strings.Join(strengths, ", ")))
	}
	if len(match.MissingSkills) > 0 {
		gaps := match.MissingSkills[:min(2, len(match.MissingSkills))]
		sentences = append(sentences,
			fmt.Sprintf("Consider highlighting transferable skills related to %s.", strings.Join(gaps, " and ")))
	}
	return strings.Join(sentences, " ")
}
