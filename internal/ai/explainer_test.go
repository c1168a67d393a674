package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	text  string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeProvider) Explain(ctx context.Context, input ExplainInput) (string, *TokenUsage, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
	if f.err != nil {
		return "", nil, f.err
	}
	return fmt.Sprintf(f.text, input.Job.Title), &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil
}

func (f *fakeProvider) GetModelInfo(context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake", Available: true}
}

func (f *fakeProvider) Close() error { return nil }

type recordedCall struct {
	source string
	usage  *TokenUsage
	err    error
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (r *fakeRecorder) RecordExplanation(_ context.Context, source string, _ float64, usage *TokenUsage, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{source: source, usage: usage, err: err})
}

func sampleMatch() types.MatchResult {
	return types.MatchResult{
		JobID:           "job-1",
		OverallScore:    72,
		SkillsScore:     80,
		ExperienceScore: 65,
		MatchedSkills:   []string{"Go", "Docker", "Kubernetes", "gRPC"},
		MissingSkills:   []string{"AWS", "Terraform", "Rust"},
	}
}

func TestTemplateRecommendation(t *testing.T) {
	tests := []struct {
		name     string
		match    types.MatchResult
		expected string
	}{
		{
			name:  "strong match with gaps",
			match: sampleMatch(),
			expected: "With a 72% match score, this position aligns well with your background. " +
				"Your strengths in Go, Docker, Kubernetes are valuable for this role. " +
				"Consider highlighting transferable skills related to AWS and Terraform.",
		},
		{
			name:     "weak match without skills",
			match:    types.MatchResult{OverallScore: 59},
			expected: "With a 59% match score, this position may require some additional skill development.",
		},
		{
			name:  "single missing skill",
			match: types.MatchResult{OverallScore: 60, MissingSkills: []string{"SQL"}},
			expected: "With a 60% match score, this position aligns well with your background. " +
				"Consider highlighting transferable skills related to SQL.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TemplateRecommendation(tt.match))
		})
	}
}

func TestExplainUsesProvider(t *testing.T) {
	provider := &fakeProvider{text: "Great fit for %s."}
	recorder := &fakeRecorder{}
	explainer := NewExplainer(provider, ExplainerConfig{Recorder: recorder}, nil)

	match := sampleMatch()
	got := explainer.Explain(context.Background(), types.ResumeProfile{}, types.JobPosting{ID: "job-1", Title: "Go Engineer"}, match)

	assert.Equal(t, "Great fit for Go Engineer.", got.Recommendation)
	assert.Equal(t, SourceAI, got.RecommendationSource)
	assert.Equal(t, match.OverallScore, got.OverallScore)
	assert.Empty(t, match.Recommendation, "input match is not modified")

	require.Len(t, recorder.calls, 1)
	assert.Equal(t, SourceAI, recorder.calls[0].source)
	assert.Equal(t, int64(15), recorder.calls[0].usage.TotalTokens)
}

func TestExplainFallsBackOnError(t *testing.T) {
	provider := &fakeProvider{err: stderrors.New("quota exceeded")}
	recorder := &fakeRecorder{}
	explainer := NewExplainer(provider, ExplainerConfig{Recorder: recorder}, nil)

	match := sampleMatch()
	got := explainer.Explain(context.Background(), types.ResumeProfile{}, types.JobPosting{ID: "job-1"}, match)

	assert.Equal(t, TemplateRecommendation(match), got.Recommendation)
	assert.Equal(t, SourceTemplate, got.RecommendationSource)
	require.Len(t, recorder.calls, 1)
	assert.Equal(t, SourceTemplate, recorder.calls[0].source)
	assert.Error(t, recorder.calls[0].err)
}

func TestExplainFallsBackOnTimeout(t *testing.T) {
	provider := &fakeProvider{text: "late", delay: time.Second}
	recorder := &fakeRecorder{}
	explainer := NewExplainer(provider, ExplainerConfig{Timeout: 20 * time.Millisecond, Recorder: recorder}, nil)

	start := time.Now()
	got := explainer.Explain(context.Background(), types.ResumeProfile{}, types.JobPosting{}, sampleMatch())

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, SourceTemplate, got.RecommendationSource)
	require.Len(t, recorder.calls, 1)
	assert.ErrorContains(t, recorder.calls[0].err, "AI_TIMEOUT")
}

func TestExplainWithoutProvider(t *testing.T) {
	explainer := NewExplainer(nil, ExplainerConfig{}, nil)
	got := explainer.Explain(context.Background(), types.ResumeProfile{}, types.JobPosting{}, sampleMatch())
	assert.Equal(t, SourceTemplate, got.RecommendationSource)
	assert.Nil(t, explainer.Provider())
}

func TestExplainAllKeepsOrder(t *testing.T) {
	provider := &fakeProvider{text: "Fit: %s"}
	explainer := NewExplainer(provider, ExplainerConfig{Workers: 3}, nil)

	var jobs []types.JobPosting
	var matches []types.MatchResult
	for i := range 10 {
		id := fmt.Sprintf("job-%d", i)
		jobs = append(jobs, types.JobPosting{ID: id, Title: id})
		matches = append(matches, types.MatchResult{JobID: id, OverallScore: i * 10})
	}

	results, err := explainer.ExplainAll(context.Background(), types.ResumeProfile{}, jobs, matches)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))
	for i, r := range results {
		assert.Equal(t, jobs[i].ID, r.JobID)
		assert.Equal(t, "Fit: "+jobs[i].ID, r.Recommendation)
		assert.Equal(t, i*10, r.OverallScore)
	}
	assert.Equal(t, int32(10), provider.calls.Load())
}

func TestExplainAllLengthMismatch(t *testing.T) {
	explainer := NewExplainer(nil, ExplainerConfig{}, nil)
	_, err := explainer.ExplainAll(context.Background(), types.ResumeProfile{}, make([]types.JobPosting, 2), make([]types.MatchResult, 1))
	assert.Error(t, err)
}
