package server

import (
	"fmt"
	"net/http"

	"jobmatch/internal/common"
	"jobmatch/internal/errors"
	"jobmatch/internal/observability"
	"jobmatch/internal/sources"
	"jobmatch/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "jobmatch.api"

// createMatchHandler scores every job in the request against the résumé
func (s *Server) createMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.match")
		defer span.End()

		var req MatchRequest
		if !s.decodeRequest(w, r, span, &req) {
			return
		}

		resume, jobs, err := decodeResumeAndJobs(req.Resume, req.Jobs)
		if err != nil {
			s.writeAppError(w, span, err)
			return
		}

		opts := common.MatchOptions{Window: s.window(req.Window), Explain: req.Explain}
		span.SetAttributes(
			attribute.String("operation", "match"),
			attribute.Int("request.jobs", len(jobs)),
			attribute.String("request.window", opts.Window),
			attribute.Bool("request.explain", opts.Explain),
		)

		report, err := s.Pipeline.Match(ctx, resume, jobs, opts)
		if err != nil {
			s.writeAppError(w, span, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.results", len(report.Results)),
		)
		s.writeResult(w, r, span, report)
	}
}

// createRankHandler returns the recommendations that clear the caller's preferences
func (s *Server) createRankHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.rank")
		defer span.End()

		var req RankRequest
		if !s.decodeRequest(w, r, span, &req) {
			return
		}

		resume, jobs, err := decodeResumeAndJobs(req.Resume, req.Jobs)
		if err != nil {
			s.writeAppError(w, span, err)
			return
		}

		prefs := s.AppConfig.GetDefaultPreferences()
		if len(req.Preferences) > 0 {
			if prefs, err = sources.DecodePreferences(req.Preferences, ".json"); err != nil {
				s.writeAppError(w, span, err)
				return
			}
		}

		opts := common.MatchOptions{Window: s.window(req.Window), Explain: req.Explain}
		span.SetAttributes(
			attribute.String("operation", "rank"),
			attribute.Int("request.jobs", len(jobs)),
			attribute.Int("request.min_match_score", prefs.MinMatchScore),
			attribute.Bool("request.explain", opts.Explain),
		)

		report, err := s.Pipeline.Rank(ctx, resume, jobs, prefs, req.Actions, opts)
		if err != nil {
			s.writeAppError(w, span, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.recommendations", len(report.Recommendations)),
		)
		s.writeResult(w, r, span, report)
	}
}

// createFilterHandler lists the jobs that pass the request's filter
func (s *Server) createFilterHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := om.Tracer(tracerName).Start(r.Context(), "api.filter")
		defer span.End()

		var req FilterRequest
		if !s.decodeRequest(w, r, span, &req) {
			return
		}

		jobs, err := decodeJobs(req.Jobs)
		if err != nil {
			s.writeAppError(w, span, err)
			return
		}

		span.SetAttributes(
			attribute.String("operation", "filter"),
			attribute.Int("request.jobs", len(jobs)),
		)

		list, err := s.Pipeline.Filter(jobs, req.Filter)
		if err != nil {
			s.writeAppError(w, span, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.total", list.Total),
		)
		s.writeResult(w, r, span, list)
	}
}

// createInsightsHandler summarizes matches, computing them first when the
// request carries a résumé and jobs instead
func (s *Server) createInsightsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.insights")
		defer span.End()

		var req InsightsRequest
		if !s.decodeRequest(w, r, span, &req) {
			return
		}

		matches := req.Matches
		if matches == nil {
			resume, jobs, err := decodeResumeAndJobs(req.Resume, req.Jobs)
			if err != nil {
				s.writeAppError(w, span, err)
				return
			}
			report, err := s.Pipeline.Match(ctx, resume, jobs, common.MatchOptions{Window: s.window(req.Window)})
			if err != nil {
				s.writeAppError(w, span, err)
				return
			}
			matches = report.Results
		}

		insights := s.Pipeline.Insights(matches)
		span.SetAttributes(
			attribute.String("operation", "insights"),
			attribute.Bool("success", true),
			attribute.Int("response.total_matches", insights.TotalMatches),
		)
		s.writeResult(w, r, span, insights)
	}
}

// createExplainHandler attaches recommendation text to one match
func (s *Server) createExplainHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.explain")
		defer span.End()

		var req ExplainRequest
		if !s.decodeRequest(w, r, span, &req) {
			return
		}

		resume, err := sources.DecodeResume(req.Resume, ".json")
		if err != nil {
			s.writeAppError(w, span, err)
			return
		}
		jobs, err := decodeJobs(req.Job)
		if err != nil {
			s.writeAppError(w, span, err)
			return
		}
		if len(jobs) != 1 {
			s.writeAppError(w, span, errors.NewValidationError(errors.ErrCodeInvalidInput,
				fmt.Sprintf("job must be a single posting, got %d", len(jobs)), nil))
			return
		}

		span.SetAttributes(
			attribute.String("operation", "explain"),
			attribute.String("request.job_id", jobs[0].ID),
			attribute.Bool("request.has_match", req.Match != nil),
		)

		result, err := s.Pipeline.Explain(ctx, resume, jobs[0], req.Match)
		if err != nil {
			s.writeAppError(w, span, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("response.recommendation_source", result.RecommendationSource),
		)
		s.writeResult(w, r, span, result)
	}
}

// decodeRequest parses and validates a JSON request body, writing the error
// response itself when it returns false
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, span trace.Span, v any) bool {
	if err := parseJSONRequest(r, v); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", string(errors.ErrorTypeValidation)))
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	if err := common.ValidateStruct(v); err != nil {
		s.writeAppError(w, span, err)
		return false
	}
	return true
}

// window falls back to the configured default window
func (s *Server) window(requested string) string {
	if requested != "" || s.AppConfig == nil {
		return requested
	}
	return s.AppConfig.Matching.DefaultWindow
}

func decodeResumeAndJobs(rawResume, rawJobs []byte) (types.ResumeProfile, []types.JobPosting, error) {
	resume, err := sources.DecodeResume(rawResume, ".json")
	if err != nil {
		return types.ResumeProfile{}, nil, withField(err, "resume")
	}
	jobs, err := decodeJobs(rawJobs)
	if err != nil {
		return types.ResumeProfile{}, nil, err
	}
	return resume, jobs, nil
}

// decodeJobs validates and normalizes the jobs of a request
func decodeJobs(raw []byte) ([]types.JobPosting, error) {
	jobs, err := sources.DecodeJobs(raw, ".json")
	if err != nil {
		return nil, withField(err, "jobs")
	}
	if len(jobs) > maxJobsPerRequest {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("too many jobs: %d (limit is %d)", len(jobs), maxJobsPerRequest), nil).
			WithContext("field", "jobs")
	}
	return common.NormalizeJobs(jobs, ""), nil
}

func withField(err error, field string) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithContext("field", field)
	}
	return err
}
