package types

import "time"

// Experience represents a single work history entry of a parsed resume
type Experience struct {
	Title       string `json:"title" yaml:"title"`
	Company     string `json:"company" yaml:"company"`
	Description string `json:"description" yaml:"description"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate,omitempty" yaml:"endDate,omitempty"` // empty or "present" means ongoing
}

// ResumeProfile is the structured form of a resume as produced by an external parser
type ResumeProfile struct {
	ID              string       `json:"id,omitempty" yaml:"id,omitempty"`
	Skills          []string     `json:"skills" yaml:"skills"`
	Experience      []Experience `json:"experience" yaml:"experience"` // most recent first
	Summary         string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	EmbeddingVector []float64    `json:"embeddingVector,omitempty" yaml:"embeddingVector,omitempty"`
}

// Work types accepted on job postings and preferences
const (
	WorkTypeRemote = "remote"
	WorkTypeHybrid = "hybrid"
	WorkTypeOnsite = "onsite"
)

// Job types
const (
	JobTypeFullTime   = "full_time"
	JobTypePartTime   = "part_time"
	JobTypeContract   = "contract"
	JobTypeInternship = "internship"
	JobTypeTemporary  = "temporary"
)

// Seniority levels
const (
	SeniorityEntry     = "entry"
	SeniorityMid       = "mid"
	SenioritySenior    = "senior"
	SeniorityLead      = "lead"
	SeniorityExecutive = "executive"
)

// JobPosting represents a job as delivered by a job source
type JobPosting struct {
	ID              string     `json:"id" yaml:"id"`
	Title           string     `json:"title" yaml:"title"`
	Company         string     `json:"company" yaml:"company"`
	Description     string     `json:"description" yaml:"description"`
	SkillsRequired  []string   `json:"skillsRequired" yaml:"skillsRequired"` // priority order, earlier is more important
	EmbeddingVector []float64  `json:"embeddingVector,omitempty" yaml:"embeddingVector,omitempty"`
	Location        string     `json:"location,omitempty" yaml:"location,omitempty"`
	WorkType        string     `json:"workType,omitempty" yaml:"workType,omitempty"`
	JobType         string     `json:"jobType,omitempty" yaml:"jobType,omitempty"`
	Seniority       string     `json:"seniority,omitempty" yaml:"seniority,omitempty"`
	SalaryMin       *float64   `json:"salaryMin,omitempty" yaml:"salaryMin,omitempty"`
	SalaryMax       *float64   `json:"salaryMax,omitempty" yaml:"salaryMax,omitempty"`
	SalaryCurrency  string     `json:"salaryCurrency,omitempty" yaml:"salaryCurrency,omitempty"`
	Source          string     `json:"source,omitempty" yaml:"source,omitempty"`
	ExternalID      string     `json:"externalId,omitempty" yaml:"externalId,omitempty"`
	URL             string     `json:"url,omitempty" yaml:"url,omitempty"`
	PostedDate      *time.Time `json:"postedDate,omitempty" yaml:"postedDate,omitempty"`
	CreatedDate     *time.Time `json:"createdDate,omitempty" yaml:"createdDate,omitempty"`
}

// EffectiveDate returns the posted date, falling back to the created date
func (j JobPosting) EffectiveDate() (time.Time, bool) {
	if j.PostedDate != nil {
		return *j.PostedDate, true
	}
	if j.CreatedDate != nil {
		return *j.CreatedDate, true
	}
	return time.Time{}, false
}

// Relevance tiers for experience evidence
const (
	RelevanceHigh   = "High"
	RelevanceMedium = "Medium"
	RelevanceLow    = "Low"
)

// ExperienceEvidence links a resume experience entry to a job
type ExperienceEvidence struct {
	Title         string `json:"title"`
	EvidenceText  string `json:"evidenceText"`
	RelevanceTier string `json:"relevanceTier"` // "High", "Medium" or "Low"
}

// MatchResult is the scored comparison of one resume against one job
type MatchResult struct {
	ResumeID            string               `json:"resumeId"`
	JobID               string               `json:"jobId"`
	OverallScore        int                  `json:"overallScore"`        // 0-100
	SkillsScore         int                  `json:"skillsScore"`         // 0-100
	ExperienceScore     int                  `json:"experienceScore"`     // 0-100
	EmbeddingSimilarity float64              `json:"embeddingSimilarity"` // 0-1
	MatchedSkills       []string             `json:"matchedSkills"`
	MissingSkills       []string             `json:"missingSkills"`
	ExperienceEvidence  []ExperienceEvidence `json:"experienceEvidence"`
	KeywordMatches      []string             `json:"keywordMatches"` // at most 15
	YearsExperience     float64              `json:"yearsExperience"`

	// User action flags, owned by the caller
	IsSaved     bool `json:"isSaved,omitempty"`
	IsApplied   bool `json:"isApplied,omitempty"`
	IsDismissed bool `json:"isDismissed,omitempty"`

	// Optional enrichment attached after scoring
	Recommendation       string `json:"recommendation,omitempty"`
	RecommendationSource string `json:"recommendationSource,omitempty"` // "ai" or "template"
}

// Preferences drive recommendation ranking
type Preferences struct {
	MinMatchScore      int      `json:"minMatchScore" yaml:"minMatchScore" validate:"min=0,max=100"`
	PreferredWorkTypes []string `json:"preferredWorkTypes,omitempty" yaml:"preferredWorkTypes,omitempty" validate:"dive,oneof=remote hybrid onsite"`
	PreferredSeniority []string `json:"preferredSeniority,omitempty" yaml:"preferredSeniority,omitempty" validate:"dive,oneof=entry mid senior lead executive"`
	ExcludeDismissed   bool     `json:"excludeDismissed" yaml:"excludeDismissed"`
	BoostSaved         bool     `json:"boostSaved" yaml:"boostSaved"`
	BoostApplied       bool     `json:"boostApplied" yaml:"boostApplied"`
}

// DefaultPreferences returns the preferences used when the caller supplies none
func DefaultPreferences() Preferences {
	return Preferences{
		MinMatchScore:    50,
		ExcludeDismissed: true,
		BoostSaved:       true,
		BoostApplied:     false,
	}
}

// Reason kinds attached to recommendations
const (
	ReasonSkills     = "skills"
	ReasonExperience = "experience"
	ReasonPreference = "preference"
	ReasonSaved      = "saved"
)

// Reason is a short human-readable justification for a recommendation
type Reason struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Recommendation is a ranked job with its preference-adjusted score
type Recommendation struct {
	Job                 JobPosting  `json:"job"`
	Match               MatchResult `json:"match"`
	RecommendationScore int         `json:"recommendationScore"` // 0-100
	Reasons             []Reason    `json:"reasons"`             // at most 3
}

// ScoreBucket counts matches whose overall score falls in [Min, Max]
type ScoreBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// SkillCount is a skill and how many matches reference it
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// MatchInsights summarizes a set of match results
type MatchInsights struct {
	TotalMatches      int           `json:"totalMatches"`
	AverageScore      float64       `json:"averageScore"`
	ScoreDistribution []ScoreBucket `json:"scoreDistribution"`
	TopMatchedSkills  []SkillCount  `json:"topMatchedSkills"`  // at most 8
	TopMissingSkills  []SkillCount  `json:"topMissingSkills"`  // at most 6
	SavedCount        int           `json:"savedCount"`
	AppliedCount      int           `json:"appliedCount"`
	DismissedCount    int           `json:"dismissedCount"`
}

// JobFilter narrows a job list. Empty fields do not filter.
type JobFilter struct {
	Keywords  string   `json:"keywords,omitempty"`
	Title     string   `json:"title,omitempty"`
	Location  string   `json:"location,omitempty"`
	WorkTypes []string `json:"workTypes,omitempty" validate:"dive,oneof=remote hybrid onsite"`
	JobTypes  []string `json:"jobTypes,omitempty" validate:"dive,oneof=full_time part_time contract internship temporary"`
	Seniority []string `json:"seniority,omitempty" validate:"dive,oneof=entry mid senior lead executive"`
	SalaryMin *float64 `json:"salaryMin,omitempty" validate:"omitempty,min=0"`
	SalaryMax *float64 `json:"salaryMax,omitempty" validate:"omitempty,min=0"`
	Companies []string `json:"companies,omitempty"`
	Window    string   `json:"window,omitempty" validate:"omitempty,oneof=3h 24h 7d 30d all"`
	SortBy    string   `json:"sortBy,omitempty" validate:"omitempty,oneof=date salary_high salary_low company"`
}

// MatchReport is the output of matching one resume against a job collection
type MatchReport struct {
	ResumeID string        `json:"resumeId"`
	Results  []MatchResult `json:"results"`
}

// RankReport is the output of ranking matched jobs
type RankReport struct {
	Preferences     Preferences      `json:"preferences"`
	Recommendations []Recommendation `json:"recommendations"`
}

// JobList is a filtered and sorted job collection
type JobList struct {
	Total int          `json:"total"`
	Jobs  []JobPosting `json:"jobs"`
}
