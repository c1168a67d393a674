// Package schemas validates decoded input documents against JSON schemas
// before they are bound to Go types.
package schemas

import (
	"fmt"
	"strings"

	"jobmatch/internal/errors"

	"github.com/xeipuuv/gojsonschema"
)

// Kind names an input document type
type Kind string

const (
	KindResume      Kind = "resume"
	KindJobs        Kind = "jobs"
	KindPreferences Kind = "preferences"
)

const experienceSchema = `{
	"type": "object",
	"properties": {
		"title":       {"type": "string"},
		"company":     {"type": "string"},
		"description": {"type": "string"},
		"startDate":   {"type": "string"},
		"endDate":     {"type": ["string", "null"]}
	}
}`

const resumeSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "ResumeProfile",
	"type": "object",
	"properties": {
		"id":              {"type": "string"},
		"skills":          {"type": "array", "items": {"type": "string"}},
		"experience":      {"type": "array", "items": ` + experienceSchema + `},
		"summary":         {"type": "string"},
		"embeddingVector": {"type": "array", "items": {"type": "number"}}
	}
}`

const jobSchema = `{
	"type": "object",
	"properties": {
		"id":              {"type": "string"},
		"title":           {"type": "string"},
		"company":         {"type": "string"},
		"description":     {"type": "string"},
		"skillsRequired":  {"type": "array", "items": {"type": "string"}},
		"embeddingVector": {"type": ["array", "null"], "items": {"type": "number"}},
		"location":        {"type": "string"},
		"workType":        {"type": "string"},
		"jobType":         {"type": "string"},
		"seniority":       {"type": "string"},
		"salaryMin":       {"type": ["number", "null"], "minimum": 0},
		"salaryMax":       {"type": ["number", "null"], "minimum": 0},
		"salaryCurrency":  {"type": "string"},
		"source":          {"type": "string"},
		"externalId":      {"type": "string"},
		"url":             {"type": "string"},
		"postedDate":      {"type": ["string", "null"], "format": "date-time"},
		"createdDate":     {"type": ["string", "null"], "format": "date-time"}
	}
}`

const jobsSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "JobPostings",
	"type": "array",
	"items": ` + jobSchema + `
}`

const preferencesSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "Preferences",
	"type": "object",
	"properties": {
		"minMatchScore":      {"type": "integer", "minimum": 0, "maximum": 100},
		"preferredWorkTypes": {"type": "array", "items": {"enum": ["remote", "hybrid", "onsite"]}},
		"preferredSeniority": {"type": "array", "items": {"enum": ["entry", "mid", "senior", "lead", "executive"]}},
		"excludeDismissed":   {"type": "boolean"},
		"boostSaved":         {"type": "boolean"},
		"boostApplied":       {"type": "boolean"}
	},
	"additionalProperties": false
}`

var compiled = mustCompile(map[Kind]string{
	KindResume:      resumeSchema,
	KindJobs:        jobsSchema,
	KindPreferences: preferencesSchema,
})

func mustCompile(sources map[Kind]string) map[Kind]*gojsonschema.Schema {
	out := make(map[Kind]*gojsonschema.Schema, len(sources))
	for kind, src := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			panic(fmt.Sprintf("schemas: compiling %s schema: %v", kind, err))
		}
		out[kind] = schema
	}
	return out
}

// Validate checks a decoded document (maps, slices and scalars as produced by
// encoding/json or yaml.v3) against the schema for kind. Violations are
// reported as one validation error listing every failing field.
func Validate(kind Kind, doc any) error {
	return validate(kind, gojsonschema.NewGoLoader(doc))
}

// ValidateJSON is Validate for raw JSON bytes
func ValidateJSON(kind Kind, data []byte) error {
	return validate(kind, gojsonschema.NewBytesLoader(data))
}

func validate(kind Kind, doc gojsonschema.JSONLoader) error {
	schema, ok := compiled[kind]
	if !ok {
		return errors.NewInternalError("UNKNOWN_SCHEMA", fmt.Sprintf("no schema for %q", kind), nil)
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("%s document could not be read", kind), err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return errors.NewValidationError(errors.ErrCodeInvalidInput,
		fmt.Sprintf("invalid %s: %s", kind, strings.Join(violations, "; ")), nil).
		WithContext("violations", violations)
}
