package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateInputPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resume.json")
	if err := os.WriteFile(file, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := ValidateInputPath(dir); err != nil {
		t.Errorf("Expected directory to be valid: %v", err)
	}
	if err := ValidateInputPath(file); err != nil {
		t.Errorf("Expected file to be valid: %v", err)
	}
	if err := ValidateInputPath(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected missing path to fail")
	}
	if err := ValidateInputPath(""); err == nil {
		t.Error("Expected empty path to fail")
	}

	if err := ValidateInputFile(dir); err == nil {
		t.Error("Expected directory to be rejected as an input file")
	}
	if err := ValidateInputFile(file); err != nil {
		t.Errorf("Expected file to be valid: %v", err)
	}
}

func TestValidateOutputFileCreatesDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "reports", "nested", "out.md")
	if err := ValidateOutputFile(out); err != nil {
		t.Fatalf("Expected output path to be valid: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(out)); err != nil {
		t.Errorf("Expected parent directory to exist: %v", err)
	}
	if err := ValidateOutputFile(t.TempDir()); err == nil {
		t.Error("Expected directory output path to fail")
	}
}

func TestIsStructuredFile(t *testing.T) {
	tests := map[string]bool{
		"jobs.json":  true,
		"jobs.YAML":  true,
		"jobs.yml":   true,
		"resume.txt": false,
		"resume":     false,
	}
	for name, expected := range tests {
		if got := IsStructuredFile(name); got != expected {
			t.Errorf("IsStructuredFile(%q) = %v, want %v", name, got, expected)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := map[int64]string{
		512:              "512 B",
		2048:             "2.0 KB",
		10 * 1024 * 1024: "10.0 MB",
	}
	for size, expected := range tests {
		if got := FormatFileSize(size); got != expected {
			t.Errorf("FormatFileSize(%d) = %q, want %q", size, got, expected)
		}
	}
}
