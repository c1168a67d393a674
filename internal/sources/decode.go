package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"jobmatch/internal/errors"
	"jobmatch/internal/schemas"
	"jobmatch/internal/types"

	"gopkg.in/yaml.v3"
)

// DecodeJobs parses a job document. JSON and YAML are both accepted; the
// document may be a list of jobs, a single job object, or an object with a
// "jobs" list. ext selects YAML for ".yaml" and ".yml"; anything else is
// tried as JSON first.
func DecodeJobs(data []byte, ext string) ([]types.JobPosting, error) {
	doc, err := decodeDocument(data, ext)
	if err != nil {
		return nil, err
	}

	list := asJobList(doc)
	if err := schemas.Validate(schemas.KindJobs, list); err != nil {
		return nil, err
	}
	return bind[[]types.JobPosting](list)
}

// DecodeResume parses a resume document in JSON or YAML
func DecodeResume(data []byte, ext string) (types.ResumeProfile, error) {
	doc, err := decodeDocument(data, ext)
	if err != nil {
		return types.ResumeProfile{}, err
	}
	if err := schemas.Validate(schemas.KindResume, doc); err != nil {
		return types.ResumeProfile{}, err
	}
	return bind[types.ResumeProfile](doc)
}

// DecodePreferences parses a preferences document over the defaults
func DecodePreferences(data []byte, ext string) (types.Preferences, error) {
	doc, err := decodeDocument(data, ext)
	if err != nil {
		return types.Preferences{}, err
	}
	if err := schemas.Validate(schemas.KindPreferences, doc); err != nil {
		return types.Preferences{}, err
	}

	prefs := types.DefaultPreferences()
	raw, err := json.Marshal(doc)
	if err != nil {
		return types.Preferences{}, invalidFormat("preferences", err)
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return types.Preferences{}, invalidFormat("preferences", err)
	}
	return prefs, nil
}

// DecodeMatches parses a list of previously computed match results
func DecodeMatches(data []byte, ext string) ([]types.MatchResult, error) {
	doc, err := decodeDocument(data, ext)
	if err != nil {
		return nil, err
	}
	if m, ok := doc.(map[string]any); ok {
		if results, ok := m["results"]; ok {
			doc = results
		}
	}
	return bind[[]types.MatchResult](doc)
}

func decodeDocument(data []byte, ext string) (any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "document is empty", nil)
	}

	var doc any
	if isYAML(ext) {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, invalidFormat("YAML", err)
		}
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		// unknown extensions may still be YAML
		if ext != ".json" && yaml.Unmarshal(data, &doc) == nil {
			return doc, nil
		}
		return nil, invalidFormat("JSON", err)
	}
	return doc, nil
}

func isYAML(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".yaml" || ext == ".yml"
}

// IsJobFile reports whether path has an extension job files use
func IsJobFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".json" || isYAML(ext)
}

func asJobList(doc any) any {
	switch v := doc.(type) {
	case []any:
		return v
	case map[string]any:
		if jobs, ok := v["jobs"]; ok {
			return jobs
		}
		return []any{v}
	default:
		return doc
	}
}

// bind converts a generic document into T through its JSON form
func bind[T any](doc any) (T, error) {
	var out T
	raw, err := json.Marshal(doc)
	if err != nil {
		return out, invalidFormat("document", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, invalidFormat("document", err)
	}
	return out, nil
}

func invalidFormat(what string, err error) error {
	return errors.NewValidationError(errors.ErrCodeInvalidFormat, fmt.Sprintf("invalid %s", what), err)
}
