package matching

import (
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSkill(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"  React.JS ", "react js"},
		{"Node_js", "node js"},
		{"C#", "c#"},
		{"ci--cd", "ci cd"},
		{"Spring    Boot", "spring boot"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSkill(tt.in))
		})
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"ReactJS", "react"},
		{"react.js", "react"},
		{"Golang", "go"},
		{"K8s", "kubernetes"},
		{"Postgres", "postgresql"},
		{"JavaScript", "javascript"},
		{"AWS", "amazon web services"},
		{"tf", "tensorflow"},
		{"ai", "illustrator"},
		{"unknown skill", "unknown skill"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, Canonicalize(tt.in))
		})
	}

	assert.Equal(t, Canonicalize("dotnet"), Canonicalize(".NET Core"))
}

func TestSkillsMatch(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"case only", "javascript", "JavaScript", true},
		{"alias", "React", "reactjs", true},
		{"alias to canonical", "golang", "go", true},
		{"canonical with spaces", "aws", "Amazon Web Services", true},
		{"two aliases", "k8s", "kube", true},
		{"versioned skill", "postgresql", "PostgreSQL 14", true},
		{"short substring guarded", "go", "google", false},
		{"unrelated", "java", "python", false},
		{"empty", "", "python", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SkillsMatch(tt.a, tt.b))
			assert.Equal(t, tt.expected, SkillsMatch(tt.b, tt.a), "relation must be symmetric")
		})
	}
}

var skillPool = []string{
	"JavaScript", "js", "TypeScript", "React", "react.js", "Vue", "Angular",
	"Node.js", "Go", "golang", "Python", "py", "Java", "Spring Boot", "PostgreSQL",
	"postgres", "MySQL", "Redis", "Kubernetes", "k8s", "Docker", "AWS",
	"Amazon Web Services", "GCP", "Terraform", "tf", "TensorFlow", "C++",
	"cpp", "C#", ".NET", "Rust", "Kafka", "GraphQL", "REST", "CI/CD",
	"Machine Learning", "ml", "Linux", "bash", "Figma", "Scrum", "Jira",
	"google", "Elixir", "Erlang", "PostgreSQL 15",
}

func TestSkillsMatchSymmetricAndReflexive(t *testing.T) {
	for _, a := range skillPool {
		assert.True(t, SkillsMatch(a, a), "reflexive: %s", a)
		for _, b := range skillPool {
			assert.Equal(t, SkillsMatch(a, b), SkillsMatch(b, a), "symmetric: %q %q", a, b)
		}
	}
}

func TestNewSkillResolverExtraAliases(t *testing.T) {
	r := NewSkillResolver(map[string][]string{
		"observability": {"otel", "OpenTelemetry"},
	})

	assert.Equal(t, "observability", r.Canonicalize("OTel"))
	assert.True(t, r.SkillsMatch("opentelemetry", "otel"))
	assert.Equal(t, "otel", Canonicalize("otel"))
	assert.Greater(t, r.Size(), DefaultResolver().Size())

	// built-in entries are still present
	assert.Equal(t, "kubernetes", r.Canonicalize("k8s"))
}

func TestSkillResolverConcurrentReads(t *testing.T) {
	r := NewSkillResolver(nil)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(seed, 1))
			for range 200 {
				a := skillPool[rng.IntN(len(skillPool))]
				b := skillPool[rng.IntN(len(skillPool))]
				_ = r.SkillsMatch(a, b)
				_ = r.Canonicalize(a)
			}
		}(uint64(i))
	}
	wg.Wait()
}

func TestSkillWeight(t *testing.T) {
	assert.InDelta(t, 1.0, skillWeight(0), 1e-9)
	assert.InDelta(t, 0.95, skillWeight(1), 1e-9)
	assert.InDelta(t, 0.55, skillWeight(9), 1e-9)
	assert.InDelta(t, 0.5, skillWeight(10), 1e-9)
	assert.InDelta(t, 0.5, skillWeight(40), 1e-9)
}

func TestMatchSkills(t *testing.T) {
	t.Run("priority weighted score", func(t *testing.T) {
		result := MatchSkills(
			[]string{"javascript", "react", "node.js"},
			[]string{"JavaScript", "React", "AWS"},
		)
		assert.Equal(t, 68, result.Score)
		assert.Equal(t, []string{"JavaScript", "React"}, result.Matched)
		assert.Equal(t, []string{"AWS"}, result.Missing)
	})

	t.Run("empty resume skills", func(t *testing.T) {
		jobSkills := []string{"Go", "Docker"}
		result := MatchSkills(nil, jobSkills)
		assert.Equal(t, 0, result.Score)
		assert.Empty(t, result.Matched)
		assert.Equal(t, jobSkills, result.Missing)
	})

	t.Run("both empty", func(t *testing.T) {
		result := MatchSkills(nil, nil)
		assert.Equal(t, 0, result.Score)
		assert.Empty(t, result.Matched)
		assert.Empty(t, result.Missing)
	})

	t.Run("full coverage", func(t *testing.T) {
		result := MatchSkills([]string{"golang", "k8s", "postgres"}, []string{"Go", "Kubernetes", "PostgreSQL"})
		assert.Equal(t, 100, result.Score)
		assert.Empty(t, result.Missing)
	})

	t.Run("earlier skills weigh more", func(t *testing.T) {
		first := MatchSkills([]string{"rust"}, []string{"Rust", "Elixir", "Erlang"})
		last := MatchSkills([]string{"rust"}, []string{"Elixir", "Erlang", "Rust"})
		assert.Greater(t, first.Score, last.Score)
	})
}

func randomSkills(rng *rand.Rand, n int) []string {
	out := make([]string, 0, n)
	for range n {
		out = append(out, skillPool[rng.IntN(len(skillPool))])
	}
	return out
}

func TestMatchSkillsPartitionsJobSkills(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for range 300 {
		resume := randomSkills(rng, rng.IntN(8))
		job := randomSkills(rng, rng.IntN(10))

		result := MatchSkills(resume, job)
		require.Len(t, append(slices.Clone(result.Matched), result.Missing...), len(job))
		assert.ElementsMatch(t, job, append(slices.Clone(result.Matched), result.Missing...))
		assert.GreaterOrEqual(t, result.Score, 0)
		assert.LessOrEqual(t, result.Score, 100)

		for _, m := range result.Matched {
			assert.NotContains(t, result.Missing, m)
		}
	}
}

func TestMatchSkillsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 3))

	for range 300 {
		resume := randomSkills(rng, rng.IntN(6))
		job := randomSkills(rng, 1+rng.IntN(10))

		base := MatchSkills(resume, job)
		extended := MatchSkills(append(slices.Clone(resume), randomSkills(rng, 1+rng.IntN(4))...), job)
		assert.GreaterOrEqual(t, extended.Score, base.Score)
	}
}
