package common

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobmatch/internal/ai"
	"jobmatch/internal/errors"
	"jobmatch/internal/matching"
	"jobmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *matching.Engine {
	return matching.NewEngine(matching.EngineConfig{Workers: 2, Clock: func() time.Time { return testNow }})
}

func testResume() types.ResumeProfile {
	return types.ResumeProfile{
		ID:     "r-1",
		Skills: []string{"Go", "Kubernetes", "PostgreSQL", "Docker"},
		Experience: []types.Experience{
			{Title: "Senior Backend Engineer", Company: "Hooli", Description: "Built Go microservices on Kubernetes", StartDate: "2019-01"},
		},
		Summary: "Backend engineer focused on Go and cloud infrastructure",
	}
}

func testJobs() []types.JobPosting {
	posted := func(age time.Duration) *time.Time {
		t := testNow.Add(-age)
		return &t
	}
	return NormalizeJobs([]types.JobPosting{
		{ID: "go", Title: "Senior Backend Engineer", Description: "Go microservices on Kubernetes",
			SkillsRequired: []string{"Go", "Kubernetes", "Postgres"}, Location: "Remote", PostedDate: posted(2 * time.Hour)},
		{ID: "ml", Title: "Machine Learning Scientist", Description: "PyTorch research",
			SkillsRequired: []string{"Python", "PyTorch", "CUDA"}, Location: "Berlin", PostedDate: posted(10 * 24 * time.Hour)},
		{ID: "ops", Title: "DevOps Engineer", Description: "Docker and Kubernetes platform",
			SkillsRequired: []string{"Docker", "Kubernetes", "Terraform"}, Location: "Hybrid, Austin", PostedDate: posted(20 * time.Hour)},
	}, "test")
}

type recordedBatch struct {
	operation string
	count     int
}

type fakeMatchRecorder struct {
	mu      sync.Mutex
	batches []recordedBatch
}

func (r *fakeMatchRecorder) RecordMatches(_ context.Context, operation string, results []types.MatchResult, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, recordedBatch{operation: operation, count: len(results)})
}

func TestPipelineMatchKeepsOrderAndWindow(t *testing.T) {
	recorder := &fakeMatchRecorder{}
	p := NewPipeline(testEngine(), nil, recorder, nil)

	report, err := p.Match(context.Background(), testResume(), testJobs(), MatchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "r-1", report.ResumeID)
	require.Len(t, report.Results, 3)
	assert.Equal(t, []string{"go", "ml", "ops"}, resultIDs(report.Results))
	assert.Empty(t, report.Results[0].Recommendation, "no explanation unless requested")

	windowed, err := p.Match(context.Background(), testResume(), testJobs(), MatchOptions{Window: matching.Window24h})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "ops"}, resultIDs(windowed.Results))

	assert.Equal(t, []recordedBatch{{"match", 3}, {"match", 2}}, recorder.batches)
}

func TestPipelineMatchExplainUsesTemplateWithoutProvider(t *testing.T) {
	p := NewPipeline(testEngine(), nil, nil, nil)

	report, err := p.Match(context.Background(), testResume(), testJobs(), MatchOptions{Explain: true})
	require.NoError(t, err)
	for _, r := range report.Results {
		assert.Equal(t, ai.SourceTemplate, r.RecommendationSource)
		assert.Equal(t, ai.TemplateRecommendation(r), r.Recommendation)
	}
}

func TestPipelineRank(t *testing.T) {
	p := NewPipeline(testEngine(), nil, nil, nil)
	prefs := types.Preferences{MinMatchScore: 0, ExcludeDismissed: true, PreferredWorkTypes: []string{types.WorkTypeRemote}}

	report, err := p.Rank(context.Background(), testResume(), testJobs(), prefs,
		JobActions{Dismissed: []string{"ml"}}, MatchOptions{Explain: true})
	require.NoError(t, err)

	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, "go", report.Recommendations[0].Job.ID)
	for _, rec := range report.Recommendations {
		assert.NotEqual(t, "ml", rec.Job.ID, "dismissed jobs are excluded")
		assert.NotEmpty(t, rec.Match.Recommendation)
	}

	_, err = p.Rank(context.Background(), testResume(), testJobs(),
		types.Preferences{MinMatchScore: 101}, JobActions{}, MatchOptions{})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestPipelineFilter(t *testing.T) {
	p := NewPipeline(testEngine(), nil, nil, nil)

	list, err := p.Filter(testJobs(), types.JobFilter{Keywords: "kubernetes", SortBy: matching.SortByDate})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, []string{"go", "ops"}, jobIDs(list.Jobs))

	lo, hi := 200.0, 100.0
	_, err = p.Filter(testJobs(), types.JobFilter{SalaryMin: &lo, SalaryMax: &hi})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = p.Filter(testJobs(), types.JobFilter{WorkTypes: []string{"space"}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestPipelineExplain(t *testing.T) {
	p := NewPipeline(testEngine(), nil, nil, nil)
	job := testJobs()[0]

	computed, err := p.Explain(context.Background(), testResume(), job, nil)
	require.NoError(t, err)
	assert.Equal(t, "go", computed.JobID)
	assert.Positive(t, computed.OverallScore)
	assert.Equal(t, ai.SourceTemplate, computed.RecommendationSource)

	given := types.MatchResult{JobID: "go", OverallScore: 42, MatchedSkills: []string{"Go"}}
	explained, err := p.Explain(context.Background(), testResume(), job, &given)
	require.NoError(t, err)
	assert.Equal(t, 42, explained.OverallScore, "supplied scores are kept")
	assert.Contains(t, explained.Recommendation, "42%")

	_, err = p.Explain(context.Background(), testResume(), job, &types.MatchResult{JobID: "other"})
	assert.Error(t, err)
}

func TestPipelineSwapResolver(t *testing.T) {
	p := NewPipeline(testEngine(), nil, nil, nil)
	before := p.Engine()

	resolver := matching.NewSkillResolver(map[string][]string{"golang": {"gopher"}})
	p.SwapResolver(resolver)

	assert.NotSame(t, before, p.Engine())
	assert.Same(t, resolver, p.Engine().Resolver())
	assert.Equal(t, testNow, p.Engine().Now(), "other engine settings survive the swap")
	assert.NotSame(t, resolver, before.Resolver(), "the previous engine is untouched")
}

func TestPipelineMatchCancelled(t *testing.T) {
	p := NewPipeline(testEngine(), nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Match(ctx, testResume(), testJobs(), MatchOptions{})
	assert.Error(t, err)
}

func resultIDs(results []types.MatchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.JobID)
	}
	return out
}

func jobIDs(jobs []types.JobPosting) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}
