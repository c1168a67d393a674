package matching

import (
	"fmt"
	"slices"

	"jobmatch/internal/types"
)

const maxReasons = 3

// Rank turns jobs and their match results into recommendations ordered by
// preference-adjusted score. Jobs without a match are skipped. When several
// matches share a job ID the last one wins. Equal scores keep input order.
func Rank(jobs []types.JobPosting, matches []types.MatchResult, prefs types.Preferences) []types.Recommendation {
	byJob := make(map[string]types.MatchResult, len(matches))
	for _, m := range matches {
		byJob[m.JobID] = m
	}

	workTypes := newSet(prefs.PreferredWorkTypes...)
	seniority := newSet(prefs.PreferredSeniority...)

	recs := make([]types.Recommendation, 0, len(jobs))
	for _, job := range jobs {
		match, ok := byJob[job.ID]
		if !ok {
			continue
		}
		if prefs.ExcludeDismissed && match.IsDismissed {
			continue
		}

		score := recommendationScore(job, match, prefs, workTypes, seniority)
		if score < prefs.MinMatchScore {
			continue
		}

		recs = append(recs, types.Recommendation{
			Job:                 job,
			Match:               match,
			RecommendationScore: score,
			Reasons:             recommendationReasons(job, match, workTypes),
		})
	}

	slices.SortStableFunc(recs, func(a, b types.Recommendation) int {
		return b.RecommendationScore - a.RecommendationScore
	})
	return recs
}

func recommendationScore(job types.JobPosting, match types.MatchResult, prefs types.Preferences, workTypes, seniority stringSet) int {
	score := match.OverallScore

	if len(workTypes) > 0 && workTypes.has(job.WorkType) {
		score += 10
	}
	if len(seniority) > 0 && seniority.has(job.Seniority) {
		score += 8
	}
	if prefs.BoostSaved && match.IsSaved {
		score += 15
	}
	if !prefs.BoostApplied && match.IsApplied {
		score -= 20
	}
	if match.SkillsScore >= 70 {
		score += 5
	}
	if match.ExperienceScore >= 60 {
		score += 5
	}

	return clampScore(score)
}

func recommendationReasons(job types.JobPosting, match types.MatchResult, workTypes stringSet) []types.Reason {
	reasons := make([]types.Reason, 0, maxReasons)

	if match.SkillsScore >= 70 {
		reasons = append(reasons, types.Reason{
			Kind: types.ReasonSkills,
			Text: fmt.Sprintf("%d skills match", len(match.MatchedSkills)),
		})
	}
	if match.ExperienceScore >= 60 {
		reasons = append(reasons, types.Reason{Kind: types.ReasonExperience, Text: "Relevant experience"})
	}
	if workTypes.has(job.WorkType) {
		reasons = append(reasons, types.Reason{
			Kind: types.ReasonPreference,
			Text: fmt.Sprintf("%s work", job.WorkType),
		})
	}
	if match.IsSaved {
		reasons = append(reasons, types.Reason{Kind: types.ReasonSaved, Text: "You saved this"})
	}

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return reasons
}
