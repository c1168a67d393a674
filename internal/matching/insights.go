package matching

import (
	"cmp"
	"math"
	"slices"

	"jobmatch/internal/types"
)

const (
	topMatchedSkillsLimit = 8
	topMissingSkillsLimit = 6
)

func scoreBuckets() []types.ScoreBucket {
	return []types.ScoreBucket{
		{Label: "90-100", Min: 90, Max: 100},
		{Label: "70-89", Min: 70, Max: 89},
		{Label: "50-69", Min: 50, Max: 69},
		{Label: "30-49", Min: 30, Max: 49},
		{Label: "0-29", Min: 0, Max: 29},
	}
}

// Insights summarizes match results: score distribution, the most common
// matched and missing skills and user action counts.
func Insights(matches []types.MatchResult) types.MatchInsights {
	insights := types.MatchInsights{
		TotalMatches:      len(matches),
		ScoreDistribution: scoreBuckets(),
		TopMatchedSkills:  []types.SkillCount{},
		TopMissingSkills:  []types.SkillCount{},
	}
	if len(matches) == 0 {
		return insights
	}

	matched := make(map[string]int)
	missing := make(map[string]int)
	total := 0

	for _, m := range matches {
		score := clampScore(m.OverallScore)
		total += score
		for i := range insights.ScoreDistribution {
			b := &insights.ScoreDistribution[i]
			if score >= b.Min && score <= b.Max {
				b.Count++
				break
			}
		}

		countSkills(matched, m.MatchedSkills)
		countSkills(missing, m.MissingSkills)

		if m.IsSaved {
			insights.SavedCount++
		}
		if m.IsApplied {
			insights.AppliedCount++
		}
		if m.IsDismissed {
			insights.DismissedCount++
		}
	}

	insights.AverageScore = math.Round(float64(total)/float64(len(matches))*10) / 10
	insights.TopMatchedSkills = topSkills(matched, topMatchedSkillsLimit)
	insights.TopMissingSkills = topSkills(missing, topMissingSkillsLimit)
	return insights
}

// countSkills counts each skill once per match, case-insensitively.
func countSkills(counts map[string]int, skills []string) {
	seen := newSet()
	for _, s := range skills {
		key := NormalizeSkill(s)
		if key == "" || seen.has(key) {
			continue
		}
		seen.add(key)
		counts[key]++
	}
}

// topSkills orders skills by count, then name, and keeps the first limit.
func topSkills(counts map[string]int, limit int) []types.SkillCount {
	out := make([]types.SkillCount, 0, len(counts))
	for skill, n := range counts {
		out = append(out, types.SkillCount{Skill: skill, Count: n})
	}
	slices.SortFunc(out, func(a, b types.SkillCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Skill, b.Skill)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
