package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"jobmatch/internal/errors"
	"jobmatch/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileProcessorReadResume(t *testing.T) {
	dir := t.TempDir()
	fp := NewFileProcessor(nil, 1024)

	path := writeFile(t, dir, "resume.json", `{"id": "r-7", "skills": ["Go"], "experience": []}`)
	resume, err := fp.ReadResume(path)
	require.NoError(t, err)
	assert.Equal(t, "r-7", resume.ID)

	_, err = fp.ReadResume(filepath.Join(dir, "missing.json"))
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFileNotFound, appErr.Code)

	bad := writeFile(t, dir, "bad.json", `{"skills": "Go"}`)
	_, err = fp.ReadResume(bad)
	appErr, ok = errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, bad, appErr.Context["file"])

	big := writeFile(t, dir, "big.json", `{"summary": "`+string(bytes.Repeat([]byte("x"), 2048))+`"}`)
	_, err = fp.ReadResume(big)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestFileProcessorReadPreferences(t *testing.T) {
	fp := NewFileProcessor(nil, 0)

	prefs, err := fp.ReadPreferences("")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPreferences(), prefs)

	path := writeFile(t, t.TempDir(), "prefs.yaml", "minMatchScore: 65\npreferredSeniority: [senior]\n")
	prefs, err = fp.ReadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, 65, prefs.MinMatchScore)
	assert.Equal(t, []string{"senior"}, prefs.PreferredSeniority)
}

func TestFileProcessorLoadJobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[{"id": "1", "title": "Go Developer"}, {"id": "1", "title": "Go Developer (repost)"}]`)
	writeFile(t, dir, "b.yaml", "- id: \"2\"\n  title: Senior SRE\n")
	fp := NewFileProcessor(nil, 0)

	jobs, err := fp.LoadJobs(context.Background(), []string{dir, filepath.Join(dir, "missing.json")}, 0, nil)
	require.NoError(t, err, "a missing path only drops its own jobs")
	assert.Equal(t, []string{"1", "2"}, jobIDs(jobs))
	assert.Equal(t, types.SenioritySenior, jobs[1].Seniority)

	empty := t.TempDir()
	_, err = fp.LoadJobs(context.Background(), []string{empty}, 0, nil)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNoJobs, appErr.Code)
}

func TestFileProcessorReadMatches(t *testing.T) {
	path := writeFile(t, t.TempDir(), "matches.json", `{"resumeId": "r", "results": [{"jobId": "a", "overallScore": 70, "isSaved": true}]}`)
	matches, err := NewFileProcessor(nil, 0).ReadMatches(path)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].IsSaved)
}

func TestOutputHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := NewOutputHandlerWithWriter(nil, &buf)

	report := types.MatchReport{ResumeID: "r-1"}
	require.NoError(t, handler.HandleOutput(report, CommandConfig{OutputFormat: "json"}))
	assert.Contains(t, buf.String(), `"resumeId": "r-1"`)

	out := filepath.Join(t.TempDir(), "reports", "match.md")
	require.NoError(t, handler.HandleOutput(report, CommandConfig{OutputFormat: "markdown", OutputFile: out}))
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Match Results")

	err = handler.HandleOutput(report, CommandConfig{OutputFormat: "xml"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRunCommand(t *testing.T) {
	var buf bytes.Buffer
	logger := errors.NewNopLogger()
	fp := NewFileProcessor(logger, 0)
	oh := NewOutputHandlerWithWriter(logger, &buf)

	var logged bool
	err := RunCommand(context.Background(), logger, fp, oh, CommandConfig{OutputFormat: "text"},
		func(context.Context, *FileProcessor) ([]types.MatchResult, error) {
			return []types.MatchResult{{JobID: "a", OverallScore: 90}, {JobID: "b", OverallScore: 20}}, nil
		},
		func(_ context.Context, matches []types.MatchResult) (types.MatchInsights, error) {
			return NewPipeline(testEngine(), nil, nil, nil).Insights(matches), nil
		},
		func([]types.MatchResult, CommandConfig) { logged = true },
	)
	require.NoError(t, err)
	assert.True(t, logged)
	assert.Contains(t, buf.String(), "Total matches: 2")

	loadErr := errors.NewIOError(errors.ErrCodeFileNotFound, "missing", nil)
	err = RunCommand(context.Background(), logger, fp, oh, CommandConfig{OutputFormat: "text"},
		func(context.Context, *FileProcessor) (int, error) { return 0, loadErr },
		func(context.Context, int) (int, error) { t.Fatal("operation must not run"); return 0, nil },
		nil,
	)
	assert.ErrorIs(t, err, loadErr)
}
