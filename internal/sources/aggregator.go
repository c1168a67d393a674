package sources

import (
	"context"
	"fmt"
	"time"

	"jobmatch/internal/errors"
	"jobmatch/internal/matching"
	"jobmatch/internal/types"

	"golang.org/x/sync/errgroup"
)

// Recorder receives per-source fetch outcomes
type Recorder interface {
	RecordSourceFetch(ctx context.Context, source string, jobs int, durationSeconds float64, err error)
}

// SourceReport summarizes one source's contribution to a collection run
type SourceReport struct {
	Source     string        `json:"source"`
	Jobs       int           `json:"jobs"`
	Duplicates int           `json:"duplicates"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Failed reports whether the source returned an error
func (r SourceReport) Failed() bool {
	return r.Error != ""
}

// AggregatorConfig holds aggregator settings
type AggregatorConfig struct {
	// Timeout bounds each source's Fetch. Zero means no per-source limit.
	Timeout  time.Duration
	Recorder Recorder
}

// Aggregator fans out over sources and merges their jobs
type Aggregator struct {
	sources []Source
	config  AggregatorConfig
	logger  *errors.Logger
}

// NewAggregator creates an aggregator over the given sources
func NewAggregator(sources []Source, cfg AggregatorConfig, logger *errors.Logger) *Aggregator {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Aggregator{sources: sources, config: cfg, logger: logger}
}

type fetchResult struct {
	jobs     []types.JobPosting
	err      error
	duration time.Duration
}

// Collect queries every source concurrently. Failing sources are logged and
// reported but do not fail the run unless every source fails. Jobs are
// normalized and de-duplicated by (source, external ID), keeping the first
// occurrence in source order.
func (a *Aggregator) Collect(ctx context.Context) ([]types.JobPosting, []SourceReport, error) {
	if len(a.sources) == 0 {
		return nil, nil, errors.NewValidationError(errors.ErrCodeInvalidInput, "no job sources configured", nil)
	}

	results := make([]fetchResult, len(a.sources))
	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			results[i] = a.fetch(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	var (
		jobs     []types.JobPosting
		reports  = make([]SourceReport, len(a.sources))
		seen     = make(map[string]struct{})
		failures int
		lastErr  error
	)
	for i, src := range a.sources {
		res := results[i]
		report := SourceReport{Source: src.Name(), Duration: res.duration}

		if res.err != nil {
			failures++
			lastErr = res.err
			report.Error = res.err.Error()
			a.logger.LogError(res.err, "Job source failed", "source", src.Name())
			reports[i] = report
			continue
		}

		for _, job := range res.jobs {
			job = matching.NormalizeJob(job, src.Name())
			key := job.Source + "\x00" + job.ExternalID
			if _, dup := seen[key]; dup {
				report.Duplicates++
				continue
			}
			seen[key] = struct{}{}
			jobs = append(jobs, job)
			report.Jobs++
		}
		reports[i] = report
	}

	if failures == len(a.sources) {
		return nil, reports, errors.NewSourceError(errors.ErrCodeSourceFailed,
			fmt.Sprintf("all %d job sources failed", failures), lastErr)
	}

	a.logger.Info("Collected jobs", "sources", len(a.sources), "failed", failures, "jobs", len(jobs))
	return jobs, reports, nil
}

func (a *Aggregator) fetch(ctx context.Context, src Source) fetchResult {
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	jobs, err := src.Fetch(ctx)
	duration := time.Since(start)

	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if _, ok := errors.AsAppError(err); !ok {
			err = errors.NewSourceError(errors.ErrCodeSourceFailed,
				fmt.Sprintf("source %s failed", src.Name()), err)
		}
		jobs = nil
	}

	if a.config.Recorder != nil {
		a.config.Recorder.RecordSourceFetch(ctx, src.Name(), len(jobs), duration.Seconds(), err)
	}
	return fetchResult{jobs: jobs, err: err, duration: duration}
}
