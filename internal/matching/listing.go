package matching

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"jobmatch/internal/types"
)

// Sort keys accepted by SortJobs.
const (
	SortByDate       = "date"
	SortBySalaryHigh = "salary_high"
	SortBySalaryLow  = "salary_low"
	SortByCompany    = "company"
)

// FilterJobs applies the time window and every non-empty criterion of f,
// then sorts by f.SortBy.
func FilterJobs(jobs []types.JobPosting, f types.JobFilter, now time.Time) []types.JobPosting {
	windowed := FilterByWindow(jobs, f.Window, now)

	workTypes := newSet(f.WorkTypes...)
	jobTypes := newSet(f.JobTypes...)
	seniority := newSet(f.Seniority...)
	companies := newSet(f.Companies...)
	keywords := strings.ToLower(strings.TrimSpace(f.Keywords))
	title := strings.ToLower(strings.TrimSpace(f.Title))
	location := strings.ToLower(strings.TrimSpace(f.Location))

	out := make([]types.JobPosting, 0, len(windowed))
	for _, job := range windowed {
		if keywords != "" && !strings.Contains(searchText(job), keywords) {
			continue
		}
		if title != "" && !strings.Contains(strings.ToLower(job.Title), title) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(job.Location), location) {
			continue
		}
		if len(workTypes) > 0 && !workTypes.has(job.WorkType) {
			continue
		}
		if len(jobTypes) > 0 && !jobTypes.has(job.JobType) {
			continue
		}
		if len(seniority) > 0 && !seniority.has(job.Seniority) {
			continue
		}
		if len(companies) > 0 && !companies.has(job.Company) {
			continue
		}
		// salary ranges only exclude jobs that state a conflicting bound
		if f.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMax < *f.SalaryMin {
			continue
		}
		if f.SalaryMax != nil && job.SalaryMin != nil && *job.SalaryMin > *f.SalaryMax {
			continue
		}
		out = append(out, job)
	}

	SortJobs(out, f.SortBy)
	return out
}

func searchText(job types.JobPosting) string {
	return strings.ToLower(job.Title + " " + job.Company + " " + job.Description + " " + strings.Join(job.SkillsRequired, " "))
}

// SortJobs sorts jobs in place. Unknown keys leave the order unchanged.
func SortJobs(jobs []types.JobPosting, key string) {
	var less func(a, b types.JobPosting) int
	switch key {
	case SortByDate:
		less = func(a, b types.JobPosting) int {
			ta, _ := a.EffectiveDate()
			tb, _ := b.EffectiveDate()
			return tb.Compare(ta)
		}
	case SortBySalaryHigh:
		less = func(a, b types.JobPosting) int {
			return cmp.Compare(valueOrZero(b.SalaryMax), valueOrZero(a.SalaryMax))
		}
	case SortBySalaryLow:
		less = func(a, b types.JobPosting) int {
			return cmp.Compare(valueOrZero(a.SalaryMin), valueOrZero(b.SalaryMin))
		}
	case SortByCompany:
		less = func(a, b types.JobPosting) int {
			return cmp.Compare(strings.ToLower(a.Company), strings.ToLower(b.Company))
		}
	default:
		return
	}
	slices.SortStableFunc(jobs, less)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
