package matching

import (
	"testing"
	"time"

	"jobmatch/internal/types"

	"github.com/stretchr/testify/assert"
)

func listingFixture() []types.JobPosting {
	return []types.JobPosting{
		{
			ID: "1", Title: "Backend Engineer", Company: "Hooli", Location: "Remote",
			WorkType: types.WorkTypeRemote, JobType: types.JobTypeFullTime, Seniority: types.SenioritySenior,
			SalaryMin: ptrFloat(120000), SalaryMax: ptrFloat(160000),
			Description: "Go services", SkillsRequired: []string{"Go"},
			PostedDate: ptrTime(fixedNow.Add(-2 * time.Hour)),
		},
		{
			ID: "2", Title: "Frontend Developer", Company: "Acme", Location: "Berlin",
			WorkType: types.WorkTypeHybrid, JobType: types.JobTypeContract, Seniority: types.SeniorityMid,
			SalaryMin: ptrFloat(60000), SalaryMax: ptrFloat(80000),
			Description: "React and TypeScript", SkillsRequired: []string{"React"},
			PostedDate: ptrTime(fixedNow.Add(-72 * time.Hour)),
		},
		{
			ID: "3", Title: "Data Engineer", Company: "Initech", Location: "New York",
			WorkType: types.WorkTypeOnsite, JobType: types.JobTypeFullTime, Seniority: types.SeniorityEntry,
			Description: "Spark pipelines", SkillsRequired: []string{"Spark", "Kubernetes"},
			PostedDate: ptrTime(fixedNow.Add(-20 * 24 * time.Hour)),
		},
	}
}

func TestFilterJobs(t *testing.T) {
	jobs := listingFixture()

	tests := []struct {
		name     string
		filter   types.JobFilter
		expected []string
	}{
		{"no filter", types.JobFilter{}, []string{"1", "2", "3"}},
		{"keywords match skills", types.JobFilter{Keywords: "kubernetes"}, []string{"3"}},
		{"keywords match company", types.JobFilter{Keywords: "ACME"}, []string{"2"}},
		{"title", types.JobFilter{Title: "engineer"}, []string{"1", "3"}},
		{"location", types.JobFilter{Location: "berlin"}, []string{"2"}},
		{"work type", types.JobFilter{WorkTypes: []string{"remote", "onsite"}}, []string{"1", "3"}},
		{"job type", types.JobFilter{JobTypes: []string{"contract"}}, []string{"2"}},
		{"seniority", types.JobFilter{Seniority: []string{"entry"}}, []string{"3"}},
		{"salary floor keeps jobs without salary", types.JobFilter{SalaryMin: ptrFloat(100000)}, []string{"1", "3"}},
		{"salary ceiling", types.JobFilter{SalaryMax: ptrFloat(100000)}, []string{"2", "3"}},
		{"companies", types.JobFilter{Companies: []string{"Hooli", "Initech"}}, []string{"1", "3"}},
		{"window", types.JobFilter{Window: Window7d}, []string{"1", "2"}},
		{"sorted by company", types.JobFilter{SortBy: SortByCompany}, []string{"2", "1", "3"}},
		{"sorted by salary high", types.JobFilter{SortBy: SortBySalaryHigh}, []string{"1", "2", "3"}},
		{"sorted by salary low", types.JobFilter{SortBy: SortBySalaryLow}, []string{"3", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(FilterJobs(jobs, tt.filter, fixedNow)))
		})
	}
}

func TestSortJobsByDate(t *testing.T) {
	jobs := listingFixture()
	jobs[0], jobs[2] = jobs[2], jobs[0]

	SortJobs(jobs, SortByDate)
	assert.Equal(t, []string{"1", "2", "3"}, ids(jobs))

	SortJobs(jobs, "unknown")
	assert.Equal(t, []string{"1", "2", "3"}, ids(jobs))
}
