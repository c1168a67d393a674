package matching

import (
	"context"
	"runtime"
	"time"

	"jobmatch/internal/types"

	"golang.org/x/sync/errgroup"
)

// EngineConfig configures an Engine. Zero values select defaults.
type EngineConfig struct {
	Resolver *SkillResolver   // defaults to the built-in alias table
	Workers  int              // defaults to GOMAXPROCS
	Clock    func() time.Time // defaults to time.Now
}

// Engine scores resumes against jobs. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	resolver *SkillResolver
	workers  int
	now      func() time.Time
}

// NewEngine creates an engine from cfg
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		resolver: cfg.Resolver,
		workers:  cfg.Workers,
		now:      cfg.Clock,
	}
	if e.resolver == nil {
		e.resolver = defaultResolver
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

var defaultEngine = NewEngine(EngineConfig{})

// Resolver returns the skill resolver used by the engine
func (e *Engine) Resolver() *SkillResolver {
	return e.resolver
}

// Workers returns the batch parallelism limit
func (e *Engine) Workers() int {
	return e.workers
}

// Now returns the engine's current time
func (e *Engine) Now() time.Time {
	return e.now()
}

// WithResolver returns a copy of the engine that uses r
func (e *Engine) WithResolver(r *SkillResolver) *Engine {
	clone := *e
	clone.resolver = r
	return &clone
}

// ComputeMatch scores one resume against one job. It never fails: missing
// data lowers the score instead.
func (e *Engine) ComputeMatch(resume types.ResumeProfile, job types.JobPosting) types.MatchResult {
	return e.computeMatch(resume, job)
}

// ComputeMatch scores one resume against one job with the default engine.
func ComputeMatch(resume types.ResumeProfile, job types.JobPosting) types.MatchResult {
	return defaultEngine.computeMatch(resume, job)
}

// MatchAll scores a resume against every job in parallel. Results are in job
// order. Only context cancellation makes it fail.
func (e *Engine) MatchAll(ctx context.Context, resume types.ResumeProfile, jobs []types.JobPosting) ([]types.MatchResult, error) {
	results := make([]types.MatchResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.computeMatch(resume, jobs[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
