package matching

import (
	"math"
	"strings"

	"jobmatch/internal/types"
)

// Factor weights of the overall score.
const (
	weightSkills     = 0.50
	weightExperience = 0.35
	weightEmbedding  = 0.05
	weightKeywords   = 0.10

	maxKeywordMatches = 15
	keywordScoreCap   = 80
)

// CosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either is empty or has zero magnitude. Missing entries of the shorter
// vector count as 0; the result is clamped to [0, 1].
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range min(len(a), len(b)) {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(sim) {
		return 0
	}
	return math.Max(0, math.Min(1, sim))
}

// resumeText concatenates the parts of a resume used for keyword matching.
func resumeText(resume types.ResumeProfile) string {
	descriptions := make([]string, 0, len(resume.Experience))
	for _, exp := range resume.Experience {
		descriptions = append(descriptions, exp.Description)
	}
	return resume.Summary + " " + strings.Join(resume.Skills, " ") + " " + strings.Join(descriptions, " ")
}

// keywordOverlap returns up to maxKeywordMatches resume keywords that also
// appear in the job, in resume order, plus the number of distinct job keywords.
func keywordOverlap(resume types.ResumeProfile, job types.JobPosting) ([]string, int) {
	jobKeywords := uniqueKeywords(job.Title + " " + job.Description)
	jobSet := newSet(jobKeywords...)

	matches := make([]string, 0, maxKeywordMatches)
	for _, kw := range uniqueKeywords(resumeText(resume)) {
		if len(matches) == maxKeywordMatches {
			break
		}
		if jobSet.has(kw) {
			matches = append(matches, kw)
		}
	}
	return matches, len(jobKeywords)
}

// overallScore combines the factor scores and applies the low-coverage penalties.
func overallScore(skillsScore, experienceScore int, embedding, keywordScore float64, requiredSkills int) int {
	overall := math.Round(
		float64(skillsScore)*weightSkills +
			float64(experienceScore)*weightExperience +
			embedding*100*weightEmbedding +
			keywordScore*weightKeywords)

	// deal-breaker: almost none of a long skill list is covered
	if skillsScore < 20 && requiredSkills > 3 {
		overall = math.Round(overall * 0.6)
	}
	if experienceScore < 30 {
		overall = math.Round(overall * 0.85)
	}
	return clampScore(int(math.Floor(overall)))
}

// computeMatch scores one resume against one job.
func (e *Engine) computeMatch(resume types.ResumeProfile, job types.JobPosting) types.MatchResult {
	skills := e.resolver.MatchSkills(resume.Skills, job.SkillsRequired)
	experience := MatchExperience(resume.Experience, job.Title, job.Description, e.now())
	embedding := CosineSimilarity(resume.EmbeddingVector, job.EmbeddingVector)
	keywordMatches, jobKeywordCount := keywordOverlap(resume, job)

	keywordScore := math.Min(keywordScoreCap,
		100*float64(len(keywordMatches))/math.Max(1, float64(jobKeywordCount)))

	return types.MatchResult{
		ResumeID:            resume.ID,
		JobID:               job.ID,
		OverallScore:        overallScore(skills.Score, experience.Score, embedding, keywordScore, len(job.SkillsRequired)),
		SkillsScore:         skills.Score,
		ExperienceScore:     experience.Score,
		EmbeddingSimilarity: embedding,
		MatchedSkills:       skills.Matched,
		MissingSkills:       skills.Missing,
		ExperienceEvidence:  experience.Evidence,
		KeywordMatches:      keywordMatches,
		YearsExperience:     experience.YearsExperience,
	}
}
