package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"jobmatch/internal/types"
)

func sampleMatch() types.MatchResult {
	return types.MatchResult{
		ResumeID:        "r-1",
		JobID:           "job-42",
		OverallScore:    78,
		SkillsScore:     85,
		ExperienceScore: 60,
		MatchedSkills:   []string{"Go", "Docker"},
		MissingSkills:   []string{"AWS"},
		ExperienceEvidence: []types.ExperienceEvidence{
			{Title: "Backend Engineer", EvidenceText: "Backend Engineer at Hooli", RelevanceTier: types.RelevanceHigh},
		},
		YearsExperience:      4.5,
		Recommendation:       "Strong backend fit.",
		RecommendationSource: "template",
	}
}

func sampleJob() types.JobPosting {
	lo, hi := 120000.0, 150000.0
	return types.JobPosting{
		ID: "job-42", Title: "Go Developer", Company: "Pied | Piper", Location: "Remote",
		WorkType: types.WorkTypeRemote, JobType: types.JobTypeFullTime, Seniority: types.SeniorityMid,
		SalaryMin: &lo, SalaryMax: &hi, SalaryCurrency: "USD", SkillsRequired: []string{"Go", "AWS"},
	}
}

func TestFormatDispatch(t *testing.T) {
	registry := NewFormatterRegistry()

	tests := []struct {
		name     string
		data     any
		format   string
		contains []string
	}{
		{
			name:     "match report text",
			data:     types.MatchReport{ResumeID: "r-1", Results: []types.MatchResult{sampleMatch()}},
			format:   "text",
			contains: []string{"=== MATCH RESULTS ===", "Job job-42", "Overall: 78/100", "Missing skills: AWS", "[High] Backend Engineer at Hooli"},
		},
		{
			name:     "match report markdown",
			data:     types.MatchReport{Results: []types.MatchResult{sampleMatch()}},
			format:   "markdown",
			contains: []string{"# Match Results", "| job-42 | 78 | 85 | 60 | AWS |", "## job-42"},
		},
		{
			name: "rank report text",
			data: types.RankReport{
				Preferences: types.DefaultPreferences(),
				Recommendations: []types.Recommendation{{
					Job: sampleJob(), Match: sampleMatch(), RecommendationScore: 88,
					Reasons: []types.Reason{{Kind: types.ReasonSkills, Text: "2 skills match"}},
				}},
			},
			format:   "text",
			contains: []string{"1. Go Developer at Pied | Piper (88/100)", "- 2 skills match", "Minimum score: 50"},
		},
		{
			name:     "empty rank report markdown",
			data:     types.RankReport{},
			format:   "markdown",
			contains: []string{"_No jobs met the minimum score._"},
		},
		{
			name:     "job list markdown escapes pipes",
			data:     types.JobList{Total: 1, Jobs: []types.JobPosting{sampleJob()}},
			format:   "markdown",
			contains: []string{"# Jobs (1)", `Pied \| Piper`, "USD 120000 - 150000"},
		},
		{
			name:     "job list text",
			data:     types.JobList{Total: 1, Jobs: []types.JobPosting{sampleJob()}},
			format:   "text",
			contains: []string{"Go Developer - Pied | Piper", "Skills: Go, AWS"},
		},
		{
			name: "insights text",
			data: types.MatchInsights{
				TotalMatches: 2, AverageScore: 61.5,
				ScoreDistribution: []types.ScoreBucket{{Label: "90-100", Count: 1}, {Label: "0-29", Count: 1}},
				TopMissingSkills:  []types.SkillCount{{Skill: "aws", Count: 2}},
			},
			format:   "text",
			contains: []string{"Average score: 61.5", "90-100", "Top missing skills:", "aws (2)"},
		},
		{
			name:     "match result markdown",
			data:     sampleMatch(),
			format:   "markdown",
			contains: []string{"# Match for job-42", "## Recommendation", "Strong backend fit."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := registry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Format failed: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, output)
				}
			}
		})
	}
}

func TestJSONFormatterHandlesAnyType(t *testing.T) {
	output, err := GlobalRegistry.Format(types.MatchReport{ResumeID: "r-9"}, "json")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("Expected valid JSON: %v", err)
	}
	if decoded["resumeId"] != "r-9" {
		t.Errorf("Expected resumeId r-9, got %v", decoded["resumeId"])
	}
}

func TestFormatUnknownCombinations(t *testing.T) {
	if _, err := GlobalRegistry.Format(types.MatchReport{}, "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
	if _, err := GlobalRegistry.Format(map[string]int{"a": 1}, "text"); err == nil {
		t.Error("Expected error for text formatting of an unregistered type")
	}
}

func TestSupportedFormats(t *testing.T) {
	got := strings.Join(GlobalRegistry.GetSupportedFormats(), ",")
	if got != "json,markdown,text" {
		t.Errorf("Expected json,markdown,text, got %s", got)
	}
}

func TestFormatterRejectsWrongType(t *testing.T) {
	if _, err := (&RankReportTextFormatter{}).Format(types.JobList{}); err == nil {
		t.Error("Expected type mismatch error")
	}
}
