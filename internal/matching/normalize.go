package matching

import (
	"strings"
	"time"

	"jobmatch/internal/types"

	"github.com/google/uuid"
)

// Defaults applied to jobs missing these fields.
const (
	DefaultJobTitle = "Untitled Position"
	DefaultCompany  = "Unknown Company"
	DefaultLocation = "Remote"
	DefaultCurrency = "USD"
	ManualJobSource = "manual"
)

// NormalizeJob fills defaults and maps free-form work type, job type and
// seniority values onto their canonical sets. source is used when the job
// does not name one. A job without any date is posted today.
func NormalizeJob(job types.JobPosting, source string) types.JobPosting {
	return NormalizeJobAt(job, source, time.Now())
}

// NormalizeJobAt is NormalizeJob with today taken from now.
func NormalizeJobAt(job types.JobPosting, source string, now time.Time) types.JobPosting {
	rawLocation := job.Location

	if job.Source == "" {
		job.Source = source
	}
	if job.Source == "" {
		job.Source = ManualJobSource
	}
	if strings.TrimSpace(job.Title) == "" {
		job.Title = DefaultJobTitle
	}
	if strings.TrimSpace(job.Company) == "" {
		job.Company = DefaultCompany
	}
	if strings.TrimSpace(job.Location) == "" {
		job.Location = DefaultLocation
	}
	if job.SalaryCurrency == "" {
		job.SalaryCurrency = DefaultCurrency
	}

	// the work type comes from the location as given, not the default
	workType := job.WorkType
	if workType == "" {
		workType = rawLocation
	}
	job.WorkType = NormalizeWorkType(workType)
	job.JobType = NormalizeJobType(job.JobType)

	seniority := job.Seniority
	if seniority == "" {
		seniority = job.Title
	}
	job.Seniority = NormalizeSeniority(seniority)

	if job.ExternalID == "" {
		if job.ID != "" {
			job.ExternalID = job.ID
		} else {
			job.ExternalID = job.Source + "-" + uuid.NewString()
		}
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.SkillsRequired == nil {
		job.SkillsRequired = []string{}
	}
	if job.PostedDate == nil && job.CreatedDate == nil {
		y, m, d := now.UTC().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		job.PostedDate = &today
	}
	return job
}

// NormalizeWorkType maps a value onto remote, hybrid or onsite.
func NormalizeWorkType(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.Contains(v, "remote") || v == "true":
		return types.WorkTypeRemote
	case strings.Contains(v, "hybrid"):
		return types.WorkTypeHybrid
	default:
		return types.WorkTypeOnsite
	}
}

// NormalizeJobType maps an employment type onto the canonical job types.
// Unknown and empty values are full time.
func NormalizeJobType(value string) string {
	v := strings.ToLower(value)
	switch {
	case v == "":
		return types.JobTypeFullTime
	case strings.Contains(v, "part"):
		return types.JobTypePartTime
	case strings.Contains(v, "contract") || strings.Contains(v, "freelance"):
		return types.JobTypeContract
	case strings.Contains(v, "intern"):
		return types.JobTypeInternship
	case strings.Contains(v, "temp"):
		return types.JobTypeTemporary
	default:
		return types.JobTypeFullTime
	}
}

var seniorityLevels = newSet(
	types.SeniorityEntry, types.SeniorityMid, types.SenioritySenior,
	types.SeniorityLead, types.SeniorityExecutive,
)

// NormalizeSeniority maps a seniority label or job title onto a level.
// Canonical levels pass through; otherwise checks run in order, so
// "Senior Lead" is senior.
func NormalizeSeniority(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case seniorityLevels.has(v):
		return v
	case v == "":
		return types.SeniorityMid
	case containsAny(v, []string{"junior", "entry", "jr"}):
		return types.SeniorityEntry
	case containsAny(v, []string{"senior", "sr", "lead"}):
		return types.SenioritySenior
	case containsAny(v, []string{"principal", "staff"}):
		return types.SeniorityLead
	case containsAny(v, []string{"director", "vp", "chief", "head"}):
		return types.SeniorityExecutive
	default:
		return types.SeniorityMid
	}
}
