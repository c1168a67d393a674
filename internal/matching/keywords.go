package matching

import (
	"regexp"
	"strings"
)

type rewriteRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// compoundRewrites collapse multi-token technical phrases into one token.
// Order matters: they run before punctuation is stripped.
var compoundRewrites = []rewriteRule{
	{regexp.MustCompile(`\bnode\.js\b`), "nodejs"},
	{regexp.MustCompile(`\breact\.js\b`), "reactjs"},
	{regexp.MustCompile(`\bvue\.js\b`), "vuejs"},
	{regexp.MustCompile(`\bnext\.js\b`), "nextjs"},
	{regexp.MustCompile(`\bexpress\.js\b`), "expressjs"},
	{regexp.MustCompile(`\bangular\.js\b`), "angularjs"},
	{regexp.MustCompile(`\bd3\.js\b`), "d3js"},
	{regexp.MustCompile(`\bthree\.js\b`), "threejs"},
	{regexp.MustCompile(`\bc\+\+`), "cplusplus"},
	{regexp.MustCompile(`\bc#`), "csharp"},
	{regexp.MustCompile(`\.net`), "dotnet"},
	{regexp.MustCompile(`\bci/cd\b`), "cicd"},
	{regexp.MustCompile(`\bui/ux\b`), "uiux"},
	{regexp.MustCompile(`\bdevops\b`), "devops"},
	{regexp.MustCompile(`\bmachine learning\b`), "machinelearning"},
	{regexp.MustCompile(`\bdeep learning\b`), "deeplearning"},
	{regexp.MustCompile(`\bdata science\b`), "datascience"},
	{regexp.MustCompile(`\bfull stack\b`), "fullstack"},
	{regexp.MustCompile(`\bfront end\b`), "frontend"},
	{regexp.MustCompile(`\bback end\b`), "backend"},
}

var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// techTerms survive the length and stop-word filters.
var techTerms = newSet(
	"api", "aws", "css", "sql", "git", "ios", "vue", "php", "c++", "c#",
	"go", "ai", "ml", "ui", "ux", "qa", "ci", "cd", "gcp", "seo", "crm",
	"erp", "tcp", "ip", "dns", "ssl", "tls", "jwt", "oauth", "rest", "soap",
	"json", "xml", "html", "dom", "npm", "yarn", "pip", "mvn", "maven",
	"gradle", "webpack", "babel", "sass", "less",
)

var stopWords = newSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
	"her", "was", "one", "our", "out", "has", "have", "been", "will", "with",
	"this", "that", "from", "they", "would", "there", "their", "what",
	"about", "which", "when", "make", "like", "time", "just", "know", "take",
	"people", "into", "year", "your", "good", "some", "could", "them",
	"than", "then", "look", "only", "come", "over", "such", "also", "back",
	"after", "work", "first", "well", "being", "working", "must", "should",
	"able", "experience", "required", "preferred", "including", "using",
	"within", "strong", "excellent", "proven", "demonstrate", "demonstrated",
	"ability", "abilities", "responsible", "responsibilities", "looking",
	"seeking", "join", "team", "company", "role", "position", "opportunity",
	"opportunities", "years", "minimum", "plus", "equivalent", "related",
	"field", "degree", "bachelor", "master", "other",
)

// ExtractKeywords turns free text into keyword tokens in first-occurrence
// order. Duplicates are kept.
func ExtractKeywords(text string) []string {
	if text == "" {
		return nil
	}

	normalized := strings.ToLower(text)
	for _, rule := range compoundRewrites {
		normalized = rule.pattern.ReplaceAllString(normalized, rule.replacement)
	}
	normalized = nonWordPattern.ReplaceAllString(normalized, " ")

	fields := strings.Fields(normalized)
	keywords := make([]string, 0, len(fields))
	for _, word := range fields {
		if len(word) <= 1 {
			continue
		}
		if techTerms.has(word) || (len(word) > 2 && !stopWords.has(word)) {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// uniqueKeywords extracts keywords and drops repeats, keeping first occurrences.
func uniqueKeywords(text string) []string {
	keywords := ExtractKeywords(text)
	seen := make(map[string]struct{}, len(keywords))
	out := keywords[:0]
	for _, kw := range keywords {
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

type stringSet map[string]struct{}

func newSet(values ...string) stringSet {
	s := make(stringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s stringSet) has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s stringSet) add(v string) {
	s[v] = struct{}{}
}
