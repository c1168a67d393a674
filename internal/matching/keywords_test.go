package matching

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "compound javascript frameworks",
			text:     "Experience with Node.js and React.js in CI/CD pipelines",
			expected: []string{"nodejs", "reactjs", "cicd", "pipelines"},
		},
		{
			name:     "punctuated languages",
			text:     "C++ and C# on .NET",
			expected: []string{"cplusplus", "csharp", "dotnet"},
		},
		{
			name:     "dotnet rewrite inside words",
			text:     "ASP.NET and .network",
			expected: []string{"aspdotnet", "dotnetwork"},
		},
		{
			name:     "short tech terms survive",
			text:     "Go and AI/ML engineer",
			expected: []string{"go", "ai", "ml", "engineer"},
		},
		{
			name:     "multi word phrases collapse",
			text:     "Machine Learning, Deep Learning and Data Science",
			expected: []string{"machinelearning", "deeplearning", "datascience"},
		},
		{
			name:     "front and back end",
			text:     "front end and back end, full stack",
			expected: []string{"frontend", "backend", "fullstack"},
		},
		{
			name:     "duplicates are kept in order",
			text:     "python, Python and more python",
			expected: []string{"python", "python", "more", "python"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractKeywords(tt.text))
		})
	}
}

func TestExtractKeywordsDropsNoise(t *testing.T) {
	assert.Empty(t, ExtractKeywords(""))
	assert.Empty(t, ExtractKeywords("The team is looking for strong people"))
	assert.Empty(t, ExtractKeywords("a b c 1 2 3"))
}

func TestExtractKeywordsIsIdempotent(t *testing.T) {
	inputs := []string{
		"Senior Go developer with Kubernetes, gRPC and PostgreSQL. CI/CD on AWS.",
		"Front end engineer: React.js, TypeScript, UI/UX sensibility, REST APIs",
		"We use C++ and C# with .NET; machine learning is a plus",
	}

	for _, in := range inputs {
		first := ExtractKeywords(in)
		second := ExtractKeywords(strings.Join(first, " "))
		assert.Equal(t, first, second, "input: %s", in)
	}
}

func TestUniqueKeywords(t *testing.T) {
	assert.Equal(t, []string{"golang", "docker"}, uniqueKeywords("golang docker Golang DOCKER golang"))
}

func BenchmarkExtractKeywords(b *testing.B) {
	text := strings.Repeat("Senior Go engineer building distributed systems with Kubernetes, Node.js and CI/CD. ", 20)
	for b.Loop() {
		_ = ExtractKeywords(text)
	}
}
