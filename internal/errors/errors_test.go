package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	cause := stderrors.New("disk on fire")

	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError(ErrCodeInvalidInput, "missing skills", nil),
			expected: "INVALID_INPUT: missing skills",
		},
		{
			name:     "with cause",
			err:      NewIOError(ErrCodeFileNotReadable, "cannot read jobs.yaml", cause),
			expected: "FILE_NOT_READABLE: cannot read jobs.yaml (caused by: disk on fire)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	base := NewSourceError(ErrCodeSourceFailed, "source broke", nil).WithContext("source", "remoteok")
	wrapped := fmt.Errorf("collecting jobs: %w", base)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("Expected AppError in chain")
	}
	if appErr.Context["source"] != "remoteok" {
		t.Errorf("Expected context source=remoteok, got %v", appErr.Context["source"])
	}
	if !IsType(wrapped, ErrorTypeSource) {
		t.Error("Expected IsType to match source errors")
	}
	if IsType(stderrors.New("plain"), ErrorTypeSource) {
		t.Error("Plain errors have no type")
	}
}

func TestParseLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := ParseLevel(level); err != nil {
			t.Errorf("Expected %s to be valid: %v", level, err)
		}
	}
	if _, err := New("verbose"); err == nil {
		t.Error("Expected invalid level to be rejected")
	}
}

func TestLogErrorExpandsAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)

	err := NewAIError(ErrCodeAITimeout, "explanation timed out", stderrors.New("deadline")).WithContext("job_id", "j-1")
	logger.LogError(fmt.Errorf("wrapped: %w", err), "explain failed", "attempt", 2)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON log line: %v", err)
	}

	expected := map[string]any{
		"msg":        "explain failed",
		"error_type": "ai",
		"error_code": ErrCodeAITimeout,
		"cause":      "deadline",
		"job_id":     "j-1",
		"attempt":    float64(2),
	}
	for key, want := range expected {
		if record[key] != want {
			t.Errorf("Expected %s=%v, got %v", key, want, record[key])
		}
	}
}
