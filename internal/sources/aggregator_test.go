package sources

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"jobmatch/internal/errors"
	"jobmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	name  string
	jobs  []types.JobPosting
	err   error
	delay time.Duration
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Fetch(ctx context.Context) ([]types.JobPosting, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.jobs, s.err
}

type recordedFetch struct {
	source string
	jobs   int
	failed bool
}

type fakeRecorder struct {
	mu      sync.Mutex
	fetches []recordedFetch
}

func (r *fakeRecorder) RecordSourceFetch(_ context.Context, source string, jobs int, _ float64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, recordedFetch{source: source, jobs: jobs, failed: err != nil})
}

func TestAggregatorKeepsHealthySources(t *testing.T) {
	recorder := &fakeRecorder{}
	agg := NewAggregator([]Source{
		staticSource{name: "board-a", jobs: []types.JobPosting{{ID: "a1", Title: "Go Developer"}, {ID: "a2"}}},
		staticSource{name: "broken", err: stderrors.New("connection refused")},
		staticSource{name: "board-b", jobs: []types.JobPosting{{ID: "b1", Title: "Senior SRE", Location: "Hybrid, Paris"}}},
	}, AggregatorConfig{Recorder: recorder}, nil)

	jobs, reports, err := agg.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2", "b1"}, jobIDs(jobs))
	assert.Equal(t, "board-a", jobs[0].Source)
	assert.Equal(t, "board-b", jobs[2].Source)
	assert.Equal(t, types.WorkTypeHybrid, jobs[2].WorkType, "jobs are normalized")
	assert.Equal(t, types.SenioritySenior, jobs[2].Seniority)

	require.Len(t, reports, 3)
	assert.Equal(t, 2, reports[0].Jobs)
	assert.True(t, reports[1].Failed())
	assert.Contains(t, reports[1].Error, "connection refused")
	assert.Equal(t, 1, reports[2].Jobs)

	assert.Len(t, recorder.fetches, 3)
}

func TestAggregatorDeduplicatesBySourceAndExternalID(t *testing.T) {
	agg := NewAggregator([]Source{
		staticSource{name: "board", jobs: []types.JobPosting{
			{ID: "1", ExternalID: "ext-1", Title: "First"},
			{ID: "2", ExternalID: "ext-1", Title: "Second"},
			{ID: "3", ExternalID: "ext-2"},
		}},
		staticSource{name: "other", jobs: []types.JobPosting{{ID: "4", ExternalID: "ext-1"}}},
	}, AggregatorConfig{}, nil)

	jobs, reports, err := agg.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3", "4"}, jobIDs(jobs), "first occurrence wins; other sources may reuse IDs")
	assert.Equal(t, "First", jobs[0].Title)
	assert.Equal(t, 1, reports[0].Duplicates)
	assert.Equal(t, 0, reports[1].Duplicates)
}

func TestAggregatorAllSourcesFail(t *testing.T) {
	agg := NewAggregator([]Source{
		staticSource{name: "a", err: stderrors.New("boom")},
		staticSource{name: "b", err: errors.NewIOError(errors.ErrCodeFileNotFound, "missing", nil)},
	}, AggregatorConfig{}, nil)

	jobs, reports, err := agg.Collect(context.Background())
	require.Error(t, err)
	assert.Nil(t, jobs)
	assert.Len(t, reports, 2)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeSourceFailed, appErr.Code)
}

func TestAggregatorSourceTimeout(t *testing.T) {
	agg := NewAggregator([]Source{
		staticSource{name: "slow", delay: time.Second, jobs: []types.JobPosting{{ID: "late"}}},
		staticSource{name: "fast", jobs: []types.JobPosting{{ID: "quick"}}},
	}, AggregatorConfig{Timeout: 20 * time.Millisecond}, nil)

	jobs, reports, err := agg.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"quick"}, jobIDs(jobs))
	assert.True(t, reports[0].Failed())
}

func TestAggregatorNoSources(t *testing.T) {
	_, _, err := NewAggregator(nil, AggregatorConfig{}, nil).Collect(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestFileSourceReadsDirectoriesInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("- id: from-b\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`[{"id": "from-a"}]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	extra := filepath.Join(t.TempDir(), "extra.json")
	require.NoError(t, os.WriteFile(extra, []byte(`{"id": "extra"}`), 0o600))

	src := NewFileSource("", 0, dir, extra)
	assert.Equal(t, filepath.Base(dir), src.Name())

	jobs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"from-a", "from-b", "extra"}, jobIDs(jobs))
}

func TestFileSourceMissingPath(t *testing.T) {
	src := NewFileSource("jobs", 0, filepath.Join(t.TempDir(), "nope.json"))
	_, err := src.Fetch(context.Background())
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}

func jobIDs(jobs []types.JobPosting) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}
