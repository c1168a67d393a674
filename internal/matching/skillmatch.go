package matching

import (
	"maps"
	"math"
	"slices"
)

// SkillMatch is the outcome of comparing resume skills with a job's required skills.
type SkillMatch struct {
	Score   int
	Matched []string
	Missing []string
}

// skillWeight gives earlier job skills more weight, floored at 0.5.
func skillWeight(position int) float64 {
	return math.Max(0.5, 1-float64(position)*0.05)
}

// MatchSkills scores resume skills against job skills with the default resolver.
func MatchSkills(resumeSkills, jobSkills []string) SkillMatch {
	return defaultResolver.MatchSkills(resumeSkills, jobSkills)
}

// MatchSkills scores resume skills against job skills. Matched and Missing
// keep the job's order and spelling and together cover every job skill.
func (r *SkillResolver) MatchSkills(resumeSkills, jobSkills []string) SkillMatch {
	if len(resumeSkills) == 0 || len(jobSkills) == 0 {
		return SkillMatch{
			Score:   0,
			Matched: []string{},
			Missing: append([]string{}, jobSkills...),
		}
	}

	result := SkillMatch{
		Matched: make([]string, 0, len(jobSkills)),
		Missing: make([]string, 0, len(jobSkills)),
	}

	var totalWeight, matchedWeight float64
	for i, jobSkill := range jobSkills {
		weight := skillWeight(i)
		totalWeight += weight

		if r.anyMatches(resumeSkills, jobSkill) {
			matchedWeight += weight
			result.Matched = append(result.Matched, jobSkill)
		} else {
			result.Missing = append(result.Missing, jobSkill)
		}
	}

	if totalWeight > 0 {
		result.Score = clampScore(int(math.Round(100 * matchedWeight / totalWeight)))
	}
	return result
}

func (r *SkillResolver) anyMatches(candidates []string, target string) bool {
	for _, c := range candidates {
		if r.SkillsMatch(c, target) {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	return max(0, min(100, score))
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
