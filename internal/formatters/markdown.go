package formatters

import (
	"fmt"
	"strings"

	"jobmatch/internal/types"
)

// MatchReportMarkdownFormatter handles markdown formatting for match reports
type MatchReportMarkdownFormatter struct{}

func (f *MatchReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.MatchReport)
	if !ok {
		return "", unexpected(TypeMatchReport, data)
	}

	var out strings.Builder
	out.WriteString("# Match Results\n\n")
	if report.ResumeID != "" {
		fmt.Fprintf(&out, "**Resume:** %s\n\n", report.ResumeID)
	}
	out.WriteString("| Job | Overall | Skills | Experience | Missing skills |\n")
	out.WriteString("|-----|--------:|-------:|-----------:|----------------|\n")
	for _, r := range report.Results {
		fmt.Fprintf(&out, "| %s | %d | %d | %d | %s |\n",
			escapeCell(r.JobID), r.OverallScore, r.SkillsScore, r.ExperienceScore, escapeCell(strings.Join(r.MissingSkills, ", ")))
	}

	for _, r := range report.Results {
		if r.Recommendation == "" {
			continue
		}
		fmt.Fprintf(&out, "\n## %s\n\n%s\n", r.JobID, r.Recommendation)
	}
	return out.String(), nil
}

func (f *MatchReportMarkdownFormatter) SupportedType() string {
	return TypeMatchReport
}

// RankReportMarkdownFormatter handles markdown formatting for ranked recommendations
type RankReportMarkdownFormatter struct{}

func (f *RankReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.RankReport)
	if !ok {
		return "", unexpected(TypeRankReport, data)
	}

	var out strings.Builder
	out.WriteString("# Recommendations\n\n")
	if len(report.Recommendations) == 0 {
		out.WriteString("_No jobs met the minimum score._\n")
		return out.String(), nil
	}

	for i, rec := range report.Recommendations {
		fmt.Fprintf(&out, "## %d. %s at %s\n\n", i+1, rec.Job.Title, rec.Job.Company)
		fmt.Fprintf(&out, "**Score:** %d/100 (match %d)  \n", rec.RecommendationScore, rec.Match.OverallScore)
		fmt.Fprintf(&out, "**Where:** %s, %s\n\n", rec.Job.Location, rec.Job.WorkType)
		for _, reason := range rec.Reasons {
			fmt.Fprintf(&out, "- %s\n", reason.Text)
		}
		if rec.Match.Recommendation != "" {
			fmt.Fprintf(&out, "\n> %s\n", rec.Match.Recommendation)
		}
		out.WriteString("\n")
	}
	return out.String(), nil
}

func (f *RankReportMarkdownFormatter) SupportedType() string {
	return TypeRankReport
}

// JobListMarkdownFormatter handles markdown formatting for job lists
type JobListMarkdownFormatter struct{}

func (f *JobListMarkdownFormatter) Format(data any) (string, error) {
	list, ok := data.(types.JobList)
	if !ok {
		return "", unexpected(TypeJobList, data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# Jobs (%d)\n\n", list.Total)
	out.WriteString("| Title | Company | Location | Type | Seniority | Salary |\n")
	out.WriteString("|-------|---------|----------|------|-----------|--------|\n")
	for _, job := range list.Jobs {
		title := escapeCell(job.Title)
		if job.URL != "" {
			title = fmt.Sprintf("[%s](%s)", title, job.URL)
		}
		fmt.Fprintf(&out, "| %s | %s | %s | %s | %s | %s |\n",
			title, escapeCell(job.Company), escapeCell(job.Location), job.WorkType, job.Seniority, salaryRange(job))
	}
	return out.String(), nil
}

func (f *JobListMarkdownFormatter) SupportedType() string {
	return TypeJobList
}

// InsightsMarkdownFormatter handles markdown formatting for match insights
type InsightsMarkdownFormatter struct{}

func (f *InsightsMarkdownFormatter) Format(data any) (string, error) {
	insights, ok := data.(types.MatchInsights)
	if !ok {
		return "", unexpected(TypeMatchInsights, data)
	}

	var out strings.Builder
	out.WriteString("# Match Insights\n\n")
	fmt.Fprintf(&out, "- **Total matches:** %d\n", insights.TotalMatches)
	fmt.Fprintf(&out, "- **Average score:** %.1f\n", insights.AverageScore)
	fmt.Fprintf(&out, "- **Saved / applied / dismissed:** %d / %d / %d\n\n",
		insights.SavedCount, insights.AppliedCount, insights.DismissedCount)

	out.WriteString("## Score distribution\n\n| Range | Count |\n|-------|------:|\n")
	for _, bucket := range insights.ScoreDistribution {
		fmt.Fprintf(&out, "| %s | %d |\n", bucket.Label, bucket.Count)
	}

	writeSkillList(&out, "Top matched skills", insights.TopMatchedSkills)
	writeSkillList(&out, "Top missing skills", insights.TopMissingSkills)
	return out.String(), nil
}

func (f *InsightsMarkdownFormatter) SupportedType() string {
	return TypeMatchInsights
}

// MatchResultMarkdownFormatter handles markdown formatting for a single match
type MatchResultMarkdownFormatter struct{}

func (f *MatchResultMarkdownFormatter) Format(data any) (string, error) {
	r, ok := data.(types.MatchResult)
	if !ok {
		return "", unexpected(TypeMatchResult, data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# Match for %s\n\n", r.JobID)
	fmt.Fprintf(&out, "**Overall:** %d/100 (skills %d, experience %d)\n\n", r.OverallScore, r.SkillsScore, r.ExperienceScore)
	if len(r.MatchedSkills) > 0 {
		fmt.Fprintf(&out, "**Matched skills:** %s\n\n", strings.Join(r.MatchedSkills, ", "))
	}
	if len(r.MissingSkills) > 0 {
		fmt.Fprintf(&out, "**Missing skills:** %s\n\n", strings.Join(r.MissingSkills, ", "))
	}
	if len(r.ExperienceEvidence) > 0 {
		out.WriteString("## Experience\n\n")
		for _, ev := range r.ExperienceEvidence {
			fmt.Fprintf(&out, "- %s (%s)\n", ev.EvidenceText, ev.RelevanceTier)
		}
		out.WriteString("\n")
	}
	if r.Recommendation != "" {
		fmt.Fprintf(&out, "## Recommendation\n\n%s\n", r.Recommendation)
	}
	return out.String(), nil
}

func (f *MatchResultMarkdownFormatter) SupportedType() string {
	return TypeMatchResult
}

func writeSkillList(out *strings.Builder, title string, counts []types.SkillCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(out, "\n## %s\n\n", title)
	for _, sc := range counts {
		fmt.Fprintf(out, "- %s (%d)\n", sc.Skill, sc.Count)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
