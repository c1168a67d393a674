package formatters

import (
	"fmt"
	"strings"

	"jobmatch/internal/types"
)

// MatchReportTextFormatter handles text formatting for match reports
type MatchReportTextFormatter struct{}

func (f *MatchReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.MatchReport)
	if !ok {
		return "", unexpected(TypeMatchReport, data)
	}

	var out strings.Builder
	out.WriteString("=== MATCH RESULTS ===\n")
	if report.ResumeID != "" {
		fmt.Fprintf(&out, "Resume: %s\n", report.ResumeID)
	}
	fmt.Fprintf(&out, "Jobs scored: %d\n", len(report.Results))

	for i, result := range report.Results {
		fmt.Fprintf(&out, "\n[%d] Job %s\n", i+1, result.JobID)
		writeMatchText(&out, result, "    ")
	}
	return out.String(), nil
}

func (f *MatchReportTextFormatter) SupportedType() string {
	return TypeMatchReport
}

// RankReportTextFormatter handles text formatting for ranked recommendations
type RankReportTextFormatter struct{}

func (f *RankReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.RankReport)
	if !ok {
		return "", unexpected(TypeRankReport, data)
	}

	var out strings.Builder
	out.WriteString("=== RECOMMENDATIONS ===\n")
	fmt.Fprintf(&out, "Minimum score: %d\n", report.Preferences.MinMatchScore)
	if len(report.Recommendations) == 0 {
		out.WriteString("\nNo jobs met the minimum score.\n")
		return out.String(), nil
	}

	for i, rec := range report.Recommendations {
		fmt.Fprintf(&out, "\n%d. %s at %s (%d/100)\n", i+1, rec.Job.Title, rec.Job.Company, rec.RecommendationScore)
		fmt.Fprintf(&out, "   %s | %s | %s\n", rec.Job.Location, rec.Job.WorkType, rec.Job.Seniority)
		for _, reason := range rec.Reasons {
			fmt.Fprintf(&out, "   - %s\n", reason.Text)
		}
		if rec.Match.Recommendation != "" {
			fmt.Fprintf(&out, "   %s\n", rec.Match.Recommendation)
		}
	}
	return out.String(), nil
}

func (f *RankReportTextFormatter) SupportedType() string {
	return TypeRankReport
}

// JobListTextFormatter handles text formatting for filtered job lists
type JobListTextFormatter struct{}

func (f *JobListTextFormatter) Format(data any) (string, error) {
	list, ok := data.(types.JobList)
	if !ok {
		return "", unexpected(TypeJobList, data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== JOBS (%d) ===\n", list.Total)
	for _, job := range list.Jobs {
		fmt.Fprintf(&out, "\n%s - %s\n", job.Title, job.Company)
		fmt.Fprintf(&out, "  ID: %s  Source: %s\n", job.ID, job.Source)
		fmt.Fprintf(&out, "  %s | %s | %s | %s\n", job.Location, job.WorkType, job.JobType, job.Seniority)
		if salary := salaryRange(job); salary != "" {
			fmt.Fprintf(&out, "  Salary: %s\n", salary)
		}
		if date, ok := job.EffectiveDate(); ok {
			fmt.Fprintf(&out, "  Posted: %s\n", date.Format("2006-01-02"))
		}
		if len(job.SkillsRequired) > 0 {
			fmt.Fprintf(&out, "  Skills: %s\n", strings.Join(job.SkillsRequired, ", "))
		}
	}
	return out.String(), nil
}

func (f *JobListTextFormatter) SupportedType() string {
	return TypeJobList
}

// InsightsTextFormatter handles text formatting for match insights
type InsightsTextFormatter struct{}

func (f *InsightsTextFormatter) Format(data any) (string, error) {
	insights, ok := data.(types.MatchInsights)
	if !ok {
		return "", unexpected(TypeMatchInsights, data)
	}

	var out strings.Builder
	out.WriteString("=== MATCH INSIGHTS ===\n")
	fmt.Fprintf(&out, "Total matches: %d\n", insights.TotalMatches)
	fmt.Fprintf(&out, "Average score: %.1f\n", insights.AverageScore)
	fmt.Fprintf(&out, "Saved: %d  Applied: %d  Dismissed: %d\n",
		insights.SavedCount, insights.AppliedCount, insights.DismissedCount)

	out.WriteString("\nScore distribution:\n")
	for _, bucket := range insights.ScoreDistribution {
		fmt.Fprintf(&out, "  %-7s %s %d\n", bucket.Label, strings.Repeat("#", bucket.Count), bucket.Count)
	}

	writeSkillCounts(&out, "Top matched skills", insights.TopMatchedSkills)
	writeSkillCounts(&out, "Top missing skills", insights.TopMissingSkills)
	return out.String(), nil
}

func (f *InsightsTextFormatter) SupportedType() string {
	return TypeMatchInsights
}

// MatchResultTextFormatter handles text formatting for a single explained match
type MatchResultTextFormatter struct{}

func (f *MatchResultTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.MatchResult)
	if !ok {
		return "", unexpected(TypeMatchResult, data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== MATCH: JOB %s ===\n", result.JobID)
	writeMatchText(&out, result, "")
	return out.String(), nil
}

func (f *MatchResultTextFormatter) SupportedType() string {
	return TypeMatchResult
}

func writeMatchText(out *strings.Builder, r types.MatchResult, indent string) {
	fmt.Fprintf(out, "%sOverall: %d/100 (skills %d, experience %d)\n", indent, r.OverallScore, r.SkillsScore, r.ExperienceScore)
	if r.EmbeddingSimilarity > 0 {
		fmt.Fprintf(out, "%sSemantic similarity: %.2f\n", indent, r.EmbeddingSimilarity)
	}
	fmt.Fprintf(out, "%sExperience: %.1f years\n", indent, r.YearsExperience)
	if len(r.MatchedSkills) > 0 {
		fmt.Fprintf(out, "%sMatched skills: %s\n", indent, strings.Join(r.MatchedSkills, ", "))
	}
	if len(r.MissingSkills) > 0 {
		fmt.Fprintf(out, "%sMissing skills: %s\n", indent, strings.Join(r.MissingSkills, ", "))
	}
	for _, ev := range r.ExperienceEvidence {
		fmt.Fprintf(out, "%s  [%s] %s\n", indent, ev.RelevanceTier, ev.EvidenceText)
	}
	if r.Recommendation != "" {
		fmt.Fprintf(out, "%sRecommendation (%s): %s\n", indent, r.RecommendationSource, r.Recommendation)
	}
}

func writeSkillCounts(out *strings.Builder, title string, counts []types.SkillCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, sc := range counts {
		fmt.Fprintf(out, "  %s (%d)\n", sc.Skill, sc.Count)
	}
}

func salaryRange(job types.JobPosting) string {
	switch {
	case job.SalaryMin != nil && job.SalaryMax != nil:
		return fmt.Sprintf("%s %.0f - %.0f", job.SalaryCurrency, *job.SalaryMin, *job.SalaryMax)
	case job.SalaryMin != nil:
		return fmt.Sprintf("%s %.0f+", job.SalaryCurrency, *job.SalaryMin)
	case job.SalaryMax != nil:
		return fmt.Sprintf("up to %s %.0f", job.SalaryCurrency, *job.SalaryMax)
	default:
		return ""
	}
}
