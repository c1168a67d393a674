package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"jobmatch/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// Data type keys
const (
	TypeAny           = "any"
	TypeMatchReport   = "MatchReport"
	TypeRankReport    = "RankReport"
	TypeJobList       = "JobList"
	TypeMatchInsights = "MatchInsights"
	TypeMatchResult   = "MatchResult"
)

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})

	for _, f := range []Formatter{
		&MatchReportTextFormatter{},
		&RankReportTextFormatter{},
		&JobListTextFormatter{},
		&InsightsTextFormatter{},
		&MatchResultTextFormatter{},
	} {
		registry.RegisterFormatter("text", f.SupportedType(), f)
	}
	for _, f := range []Formatter{
		&MatchReportMarkdownFormatter{},
		&RankReportMarkdownFormatter{},
		&JobListMarkdownFormatter{},
		&InsightsMarkdownFormatter{},
		&MatchResultMarkdownFormatter{},
	} {
		registry.RegisterFormatter("markdown", f.SupportedType(), f)
	}

	return registry
}

// GlobalRegistry is the registry used by the CLI
var GlobalRegistry = NewFormatterRegistry()

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in name order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.MatchReport:
		return TypeMatchReport
	case types.RankReport:
		return TypeRankReport
	case types.JobList:
		return TypeJobList
	case types.MatchInsights:
		return TypeMatchInsights
	case types.MatchResult:
		return TypeMatchResult
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

func unexpected(expected string, data any) error {
	return fmt.Errorf("expected %s, got %T", expected, data)
}
