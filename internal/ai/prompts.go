package ai

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultSystemPrompt is used when no system prompt is configured
const DefaultSystemPrompt = `You are a career advisor writing short, honest job recommendations.

- Use only the facts you are given: scores, matched skills, missing skills and experience evidence
- Never invent skills, employers or achievements
- Address the candidate directly in the second person
- Write two or three sentences of plain text, no lists and no markdown`

// DefaultUserPrompt is a text/template rendered with ExplainInput
const DefaultUserPrompt = `Explain why this job is or is not a good fit for the candidate.

Job: {{.Job.Title}} at {{.Job.Company}} ({{.Job.Location}}, {{.Job.WorkType}})
Overall match score: {{.Match.OverallScore}}%
Skills score: {{.Match.SkillsScore}}%
Experience score: {{.Match.ExperienceScore}}%
{{- if .Match.MatchedSkills}}
Matched skills: {{join .Match.MatchedSkills ", "}}
{{- end}}
{{- if .Match.MissingSkills}}
Missing skills: {{join .Match.MissingSkills ", "}}
{{- end}}
{{- range .Match.ExperienceEvidence}}
Relevant experience: {{.EvidenceText}} ({{.RelevanceTier}} relevance)
{{- end}}
{{- if .Resume.Summary}}

Candidate summary:
{{.Resume.Summary}}
{{- end}}`

var promptFuncs = template.FuncMap{"join": strings.Join}

// PromptSet holds the resolved system prompt and the parsed user template
type PromptSet struct {
	System string
	user   *template.Template
}

// NewPromptSet resolves configured prompts over the defaults and parses the user template
func NewPromptSet(system, user string) (*PromptSet, error) {
	if system == "" {
		system = DefaultSystemPrompt
	}
	if user == "" {
		user = DefaultUserPrompt
	}
	tmpl, err := template.New("explain").Funcs(promptFuncs).Option("missingkey=error").Parse(user)
	if err != nil {
		return nil, fmt.Errorf("invalid user prompt template: %w", err)
	}
	return &PromptSet{System: system, user: tmpl}, nil
}

// RenderUser renders the user prompt for input
func (p *PromptSet) RenderUser(input ExplainInput) (string, error) {
	var b strings.Builder
	if err := p.user.Execute(&b, input); err != nil {
		return "", fmt.Errorf("rendering user prompt: %w", err)
	}
	return b.String(), nil
}
