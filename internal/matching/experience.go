package matching

import (
	"fmt"
	"math"
	"strings"
	"time"

	"jobmatch/internal/types"
)

// titlePatterns groups title fragments that denote the same kind of role.
var titlePatterns = [][]string{
	{"software engineer", "developer", "programmer", "coder", "software developer", "swe", "sde"},
	{"frontend", "front end", "front-end", "ui", "client side", "web developer"},
	{"backend", "back end", "back-end", "server side", "api developer"},
	{"fullstack", "full stack", "full-stack"},
	{"devops", "sre", "site reliability", "platform engineer", "infrastructure"},
	{"data scientist", "data analyst", "ml engineer", "machine learning engineer"},
	{"product manager", "pm", "product owner", "po"},
	{"designer", "ux", "ui", "ux/ui", "ui/ux", "product designer"},
	{"senior", "sr", "sr.", "lead", "principal", "staff"},
	{"junior", "jr", "jr.", "entry level", "associate"},
}

// TitlesAreSimilar scores how alike two job titles are, from 0 to 1. An
// empty title is contained in any other, so it scores 0.9.
func TitlesAreSimilar(title1, title2 string) float64 {
	t1 := strings.ToLower(strings.TrimSpace(title1))
	t2 := strings.ToLower(strings.TrimSpace(title2))

	if t1 == t2 {
		return 1.0
	}
	if strings.Contains(t1, t2) || strings.Contains(t2, t1) {
		return 0.9
	}
	if sharesTitlePattern(t1, t2) {
		return 0.8
	}

	common := commonTitleWords(t1, t2)
	switch {
	case len(common) >= 2:
		return 0.7
	case len(common) == 1 && len(common[0]) > 4:
		return 0.5
	}
	return 0
}

func sharesTitlePattern(t1, t2 string) bool {
	for _, bucket := range titlePatterns {
		if containsAny(t1, bucket) && containsAny(t2, bucket) {
			return true
		}
	}
	return false
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func commonTitleWords(t1, t2 string) []string {
	second := newSet()
	for _, w := range strings.Fields(t2) {
		if len(w) > 2 {
			second.add(w)
		}
	}

	var common []string
	for _, w := range strings.Fields(t1) {
		if len(w) > 2 && second.has(w) {
			common = append(common, w)
		}
	}
	return common
}

// ExperienceMatch is the outcome of comparing work history with a job.
type ExperienceMatch struct {
	Score           int
	Evidence        []types.ExperienceEvidence
	YearsExperience float64
}

// MatchExperience scores work history (most recent first) against a job title
// and description. now anchors ongoing roles.
func MatchExperience(experiences []types.Experience, jobTitle, jobDescription string, now time.Time) ExperienceMatch {
	if len(experiences) == 0 {
		return ExperienceMatch{Evidence: []types.ExperienceEvidence{}}
	}

	jobKeywords := ExtractKeywords(jobTitle + " " + jobDescription)
	jobKeywordSet := newSet(jobKeywords...)

	var (
		bestTitleSimilarity   float64
		totalKeywordRelevance float64
		evidence              = make([]types.ExperienceEvidence, 0, len(experiences))
	)

	for idx, exp := range experiences {
		titleSim := TitlesAreSimilar(exp.Title, jobTitle)
		bestTitleSimilarity = math.Max(bestTitleSimilarity, titleSim)

		expKeywords := ExtractKeywords(exp.Title + " " + exp.Company + " " + exp.Description)
		relevance := overlapPercent(expKeywords, jobKeywordSet, len(jobKeywords))

		recencyWeight := math.Max(0.5, 1-float64(idx)*0.1)
		totalKeywordRelevance += relevance * recencyWeight

		if relevance > 10 || titleSim > 0.5 {
			evidence = append(evidence, types.ExperienceEvidence{
				Title:         jobTitle,
				EvidenceText:  fmt.Sprintf("%s at %s", exp.Title, exp.Company),
				RelevanceTier: relevanceTier(titleSim, relevance),
			})
		}
	}

	years := YearsOfExperience(experiences, now)
	avgKeywordRelevance := totalKeywordRelevance / float64(len(experiences))
	score := int(math.Round(bestTitleSimilarity*60 + math.Min(40, avgKeywordRelevance*0.4)))

	if bestTitleSimilarity > 0.5 {
		switch {
		case years >= 5:
			score += 10
		case years >= 3:
			score += 5
		}
	}

	return ExperienceMatch{
		Score:           clampScore(score),
		Evidence:        evidence,
		YearsExperience: years,
	}
}

// overlapPercent counts experience keywords found in the job, repeats
// included, as a percentage of jobTotal (the job's keyword count, repeats
// included). It can exceed 100.
func overlapPercent(expKeywords []string, jobKeywords stringSet, jobTotal int) float64 {
	if jobTotal == 0 {
		return 0
	}
	overlap := 0
	for _, kw := range expKeywords {
		if jobKeywords.has(kw) {
			overlap++
		}
	}
	return float64(overlap) / float64(jobTotal) * 100
}

func relevanceTier(titleSim, relevance float64) string {
	switch {
	case titleSim > 0.7:
		return types.RelevanceHigh
	case titleSim > 0.4 || relevance > 30:
		return types.RelevanceMedium
	default:
		return types.RelevanceLow
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01",
	"01/2006",
	"Jan 2006",
	"January 2006",
	"2006",
}

// ParseDate parses the date formats found in parsed resumes.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// YearsOfExperience sums the length of every entry in years, rounded to one
// decimal. Entries with an unparseable start date count as zero.
func YearsOfExperience(experiences []types.Experience, now time.Time) float64 {
	var totalMonths float64
	for _, exp := range experiences {
		start, err := ParseDate(exp.StartDate)
		if err != nil {
			continue
		}

		end := now
		if !isOngoing(exp.EndDate) {
			parsed, err := ParseDate(exp.EndDate)
			if err != nil {
				// an unreadable end date is treated like an ongoing role
				parsed = now
			}
			end = parsed
		}

		days := end.Sub(start).Hours() / 24
		totalMonths += math.Max(0, days/30)
	}
	return math.Round(totalMonths/12*10) / 10
}

func isOngoing(endDate string) bool {
	endDate = strings.TrimSpace(endDate)
	return endDate == "" || strings.EqualFold(endDate, "present")
}
