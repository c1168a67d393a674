package matching

import (
	"testing"
	"time"

	"jobmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestTitlesAreSimilar(t *testing.T) {
	tests := []struct {
		name     string
		t1, t2   string
		expected float64
	}{
		{"exact ignoring case and spaces", "Software Engineer", " software engineer ", 1.0},
		{"containment", "Senior Software Engineer", "Software Engineer", 0.9},
		{"pattern bucket", "Senior Software Engineer", "Lead Developer", 0.8},
		{"two shared words", "Data Warehouse Architect", "Cloud Data Architect", 0.7},
		{"one long shared word", "Marketing Coordinator", "Sales Coordinator", 0.5},
		{"nothing in common", "Accountant", "Chef", 0},
		{"empty title is contained in any title", "", "Developer", 0.9},
		{"both empty", "", "  ", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TitlesAreSimilar(tt.t1, tt.t2), 1e-9)
			assert.InDelta(t, tt.expected, TitlesAreSimilar(tt.t2, tt.t1), 1e-9)
		})
	}
}

func TestMatchExperienceEmpty(t *testing.T) {
	result := MatchExperience(nil, "Developer", "Build things", fixedNow)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Evidence)
	assert.Zero(t, result.YearsExperience)
}

func TestMatchExperienceSeniorityBoost(t *testing.T) {
	entry := func(yearsAgo int) types.Experience {
		return types.Experience{
			Title:       "Senior Software Engineer",
			Company:     "Acme",
			Description: "Built Go services",
			StartDate:   fixedNow.AddDate(-yearsAgo, 0, 0).Format("2006-01-02"),
			EndDate:     "Present",
		}
	}

	long := MatchExperience([]types.Experience{entry(5)}, "Lead Developer", "Lead our backend development", fixedNow)
	require.Len(t, long.Evidence, 1)
	assert.Equal(t, types.RelevanceHigh, long.Evidence[0].RelevanceTier)
	assert.Equal(t, "Senior Software Engineer at Acme", long.Evidence[0].EvidenceText)
	assert.GreaterOrEqual(t, long.YearsExperience, 5.0)
	assert.InDelta(t, 5.0, long.YearsExperience, 0.15)
	// 0.8 title similarity * 60, no keyword overlap, +10 for five years
	assert.Equal(t, 58, long.Score)

	mid := MatchExperience([]types.Experience{entry(4)}, "Lead Developer", "Lead our backend development", fixedNow)
	assert.Equal(t, 53, mid.Score)

	short := MatchExperience([]types.Experience{entry(2)}, "Lead Developer", "Lead our backend development", fixedNow)
	assert.Equal(t, 48, short.Score)
}

func TestMatchExperienceKeywordRelevance(t *testing.T) {
	experiences := []types.Experience{
		{
			Title:       "Platform Engineer",
			Company:     "Initech",
			Description: "Kubernetes operators, Terraform modules and Prometheus monitoring",
			StartDate:   "2021-01-01",
		},
		{
			Title:       "Barista",
			Company:     "Cafe",
			Description: "Coffee",
			StartDate:   "2019-01-01",
			EndDate:     "2020-12-31",
		},
	}

	result := MatchExperience(experiences, "Site Reliability Engineer", "Kubernetes, Terraform, Prometheus", fixedNow)
	require.NotEmpty(t, result.Evidence)
	assert.Equal(t, "Platform Engineer at Initech", result.Evidence[0].EvidenceText)
	assert.Greater(t, result.Score, 48)
	assert.LessOrEqual(t, result.Score, 100)
}

func TestMatchExperienceCountsRepeatedKeywords(t *testing.T) {
	experiences := []types.Experience{{
		Title:       "Baker",
		Description: "kubernetes kubernetes kubernetes terraform",
	}}

	// four of the five job keywords, repeats included: 80% relevance
	result := MatchExperience(experiences, "Chef", "kubernetes terraform cooking recipes", fixedNow)
	assert.Equal(t, 32, result.Score)
	require.Len(t, result.Evidence, 1)
	assert.Equal(t, types.RelevanceMedium, result.Evidence[0].RelevanceTier)
}

func TestMatchExperienceUntitledEntry(t *testing.T) {
	experiences := []types.Experience{{Company: "Acme", Description: "Go services"}}

	result := MatchExperience(experiences, "Backend Developer", "Build Go services", fixedNow)
	require.Len(t, result.Evidence, 1)
	assert.Equal(t, types.RelevanceHigh, result.Evidence[0].RelevanceTier)
	assert.GreaterOrEqual(t, result.Score, 54)
}

func TestRelevanceTier(t *testing.T) {
	assert.Equal(t, types.RelevanceHigh, relevanceTier(0.8, 0))
	assert.Equal(t, types.RelevanceMedium, relevanceTier(0.5, 0))
	assert.Equal(t, types.RelevanceMedium, relevanceTier(0, 35))
	assert.Equal(t, types.RelevanceLow, relevanceTier(0, 15))
}

func TestYearsOfExperience(t *testing.T) {
	experiences := []types.Experience{
		{StartDate: "2020-01-01", EndDate: "2021-01-01"},
		{StartDate: "not a date", EndDate: "2021-01-01"},
		{StartDate: "2021-01", EndDate: "2022-01"},
	}
	assert.InDelta(t, 2.0, YearsOfExperience(experiences, fixedNow), 1e-9)

	ongoing := []types.Experience{{StartDate: "2024-06-15", EndDate: "PRESENT"}}
	assert.InDelta(t, 1.0, YearsOfExperience(ongoing, fixedNow), 1e-9)

	reversed := []types.Experience{{StartDate: "2022-01-01", EndDate: "2020-01-01"}}
	assert.Zero(t, YearsOfExperience(reversed, fixedNow))
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2021-03-04", "2021-03", "2021", "03/2021", "Mar 2021", "March 2021", "2021-03-04T10:00:00Z"} {
		_, err := ParseDate(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseDate("soon")
	assert.Error(t, err)
}
