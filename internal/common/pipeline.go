package common

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"jobmatch/internal/ai"
	"jobmatch/internal/errors"
	"jobmatch/internal/matching"
	"jobmatch/internal/types"
)

// MatchRecorder receives one observation per batch of computed matches
type MatchRecorder interface {
	RecordMatches(ctx context.Context, operation string, results []types.MatchResult, durationSeconds float64)
}

// MatchOptions tune a match or rank run
type MatchOptions struct {
	Window  string // time window key; empty means all
	Explain bool   // attach recommendation text
}

// JobActions are the caller's saved/applied/dismissed job IDs
type JobActions struct {
	Saved     []string `json:"saved,omitempty"`
	Applied   []string `json:"applied,omitempty"`
	Dismissed []string `json:"dismissed,omitempty"`
}

// Pipeline runs the matching operations shared by the CLI and the HTTP
// server. The engine can be swapped while requests are in flight.
type Pipeline struct {
	engine    atomic.Pointer[matching.Engine]
	explainer *ai.Explainer
	recorder  MatchRecorder
	logger    *errors.Logger
}

// NewPipeline creates a pipeline. explainer and recorder may be nil.
func NewPipeline(engine *matching.Engine, explainer *ai.Explainer, recorder MatchRecorder, logger *errors.Logger) *Pipeline {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	if explainer == nil {
		explainer = ai.NewExplainer(nil, ai.ExplainerConfig{}, logger)
	}
	p := &Pipeline{explainer: explainer, recorder: recorder, logger: logger}
	p.engine.Store(engine)
	return p
}

// Engine returns the current engine
func (p *Pipeline) Engine() *matching.Engine {
	return p.engine.Load()
}

// Explainer returns the recommendation explainer
func (p *Pipeline) Explainer() *ai.Explainer {
	return p.explainer
}

// SwapResolver replaces the engine's skill resolver. Requests already running
// keep the engine they started with.
func (p *Pipeline) SwapResolver(r *matching.SkillResolver) {
	for {
		current := p.engine.Load()
		if p.engine.CompareAndSwap(current, current.WithResolver(r)) {
			return
		}
	}
}

// NormalizeJobs applies job normalization with source as the default source name
func NormalizeJobs(jobs []types.JobPosting, source string) []types.JobPosting {
	out := make([]types.JobPosting, len(jobs))
	for i, job := range jobs {
		out[i] = matching.NormalizeJob(job, source)
	}
	return out
}

// Match scores a resume against jobs posted within the window
func (p *Pipeline) Match(ctx context.Context, resume types.ResumeProfile, jobs []types.JobPosting, opts MatchOptions) (types.MatchReport, error) {
	engine := p.Engine()
	jobs = matching.FilterByWindow(jobs, opts.Window, engine.Now())

	results, err := p.matchAll(ctx, engine, "match", resume, jobs)
	if err != nil {
		return types.MatchReport{}, err
	}

	if opts.Explain {
		results, err = p.explainer.ExplainAll(ctx, resume, jobs, results)
		if err != nil {
			return types.MatchReport{}, err
		}
	}

	return types.MatchReport{ResumeID: resume.ID, Results: results}, nil
}

// Rank matches a resume against jobs and orders them by preference. When
// explaining, only the ranked recommendations are explained.
func (p *Pipeline) Rank(ctx context.Context, resume types.ResumeProfile, jobs []types.JobPosting, prefs types.Preferences, actions JobActions, opts MatchOptions) (types.RankReport, error) {
	if err := ValidateStruct(prefs); err != nil {
		return types.RankReport{}, err
	}

	engine := p.Engine()
	jobs = matching.FilterByWindow(jobs, opts.Window, engine.Now())

	results, err := p.matchAll(ctx, engine, "rank", resume, jobs)
	if err != nil {
		return types.RankReport{}, err
	}
	applyActions(results, actions)

	recs := matching.Rank(jobs, results, prefs)

	if opts.Explain && len(recs) > 0 {
		recJobs := make([]types.JobPosting, len(recs))
		recMatches := make([]types.MatchResult, len(recs))
		for i, rec := range recs {
			recJobs[i], recMatches[i] = rec.Job, rec.Match
		}
		explained, err := p.explainer.ExplainAll(ctx, resume, recJobs, recMatches)
		if err != nil {
			return types.RankReport{}, err
		}
		for i := range recs {
			recs[i].Match = explained[i]
		}
	}

	return types.RankReport{Preferences: prefs, Recommendations: recs}, nil
}

// Filter narrows and sorts a job list
func (p *Pipeline) Filter(jobs []types.JobPosting, filter types.JobFilter) (types.JobList, error) {
	if err := ValidateStruct(filter); err != nil {
		return types.JobList{}, err
	}
	if filter.SalaryMin != nil && filter.SalaryMax != nil && *filter.SalaryMin > *filter.SalaryMax {
		return types.JobList{}, errors.NewValidationError(errors.ErrCodeInvalidInput,
			"salaryMin must not exceed salaryMax", nil)
	}

	filtered := matching.FilterJobs(jobs, filter, p.Engine().Now())
	return types.JobList{Total: len(filtered), Jobs: filtered}, nil
}

// Insights summarizes match results
func (p *Pipeline) Insights(matches []types.MatchResult) types.MatchInsights {
	return matching.Insights(matches)
}

// Explain scores one job when match is nil and attaches recommendation text
func (p *Pipeline) Explain(ctx context.Context, resume types.ResumeProfile, job types.JobPosting, match *types.MatchResult) (types.MatchResult, error) {
	var result types.MatchResult
	if match != nil {
		if match.JobID != "" && match.JobID != job.ID {
			return types.MatchResult{}, errors.NewValidationError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("match is for job %q, not %q", match.JobID, job.ID), nil)
		}
		result = *match
	} else {
		results, err := p.matchAll(ctx, p.Engine(), "explain", resume, []types.JobPosting{job})
		if err != nil {
			return types.MatchResult{}, err
		}
		result = results[0]
	}
	return p.explainer.Explain(ctx, resume, job, result), nil
}

func (p *Pipeline) matchAll(ctx context.Context, engine *matching.Engine, operation string, resume types.ResumeProfile, jobs []types.JobPosting) ([]types.MatchResult, error) {
	start := time.Now()
	results, err := engine.MatchAll(ctx, resume, jobs)
	if err != nil {
		return nil, errors.NewInternalError("MATCH_CANCELLED", "matching was cancelled", err)
	}

	duration := time.Since(start)
	if p.recorder != nil {
		p.recorder.RecordMatches(ctx, operation, results, duration.Seconds())
	}
	p.logger.Debug("Matched jobs",
		"operation", operation,
		"resume_id", resume.ID,
		"jobs", len(jobs),
		"duration", duration)
	return results, nil
}

func applyActions(results []types.MatchResult, actions JobActions) {
	saved := toSet(actions.Saved)
	applied := toSet(actions.Applied)
	dismissed := toSet(actions.Dismissed)
	for i := range results {
		id := results[i].JobID
		results[i].IsSaved = results[i].IsSaved || saved[id]
		results[i].IsApplied = results[i].IsApplied || applied[id]
		results[i].IsDismissed = results[i].IsDismissed || dismissed[id]
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
