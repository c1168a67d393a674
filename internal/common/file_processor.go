package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jobmatch/internal/errors"
	"jobmatch/internal/sources"
	"jobmatch/internal/types"
	"jobmatch/internal/utils"
)

// FileProcessor handles the file inputs and outputs of CLI commands
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance. maxFileSize <= 0
// disables the size check.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadFile reads a whole input file
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		if _, statErr := os.Stat(filename); os.IsNotExist(statErr) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}
	if !utils.IsStructuredFile(filename) {
		fp.logger.Warn("File may not be JSON or YAML", "filename", filename)
	}

	info, err := os.Stat(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	if fp.maxFileSize > 0 && info.Size() > fp.maxFileSize {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("File %s is %s, above the %s limit", filename,
				utils.FormatFileSize(info.Size()), utils.FormatFileSize(fp.maxFileSize)), nil)
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	return content, nil
}

// ReadResume reads and validates a resume document
func (fp *FileProcessor) ReadResume(filename string) (types.ResumeProfile, error) {
	data, err := fp.ReadFile(filename)
	if err != nil {
		return types.ResumeProfile{}, err
	}
	resume, err := sources.DecodeResume(data, filepath.Ext(filename))
	if err != nil {
		return types.ResumeProfile{}, withFile(err, filename)
	}
	return resume, nil
}

// ReadPreferences reads a preferences document; an empty filename yields the defaults
func (fp *FileProcessor) ReadPreferences(filename string) (types.Preferences, error) {
	if filename == "" {
		return types.DefaultPreferences(), nil
	}
	data, err := fp.ReadFile(filename)
	if err != nil {
		return types.Preferences{}, err
	}
	prefs, err := sources.DecodePreferences(data, filepath.Ext(filename))
	if err != nil {
		return types.Preferences{}, withFile(err, filename)
	}
	return prefs, nil
}

// ReadMatches reads previously computed match results, as written by `match -f json`
func (fp *FileProcessor) ReadMatches(filename string) ([]types.MatchResult, error) {
	data, err := fp.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	matches, err := sources.DecodeMatches(data, filepath.Ext(filename))
	if err != nil {
		return nil, withFile(err, filename)
	}
	return matches, nil
}

// LoadJobs reads job files and directories. Each path is its own source, so
// one unreadable path only drops that path's jobs.
func (fp *FileProcessor) LoadJobs(ctx context.Context, paths []string, timeout time.Duration, recorder sources.Recorder) ([]types.JobPosting, error) {
	srcs := make([]sources.Source, 0, len(paths))
	for _, path := range paths {
		srcs = append(srcs, sources.NewFileSource(filepath.Base(path), fp.maxFileSize, path))
	}

	agg := sources.NewAggregator(srcs, sources.AggregatorConfig{Timeout: timeout, Recorder: recorder}, fp.logger)
	jobs, reports, err := agg.Collect(ctx)
	if err != nil {
		return nil, err
	}
	for _, report := range reports {
		fp.logger.Debug("Loaded job source",
			"source", report.Source,
			"jobs", report.Jobs,
			"duplicates", report.Duplicates,
			"duration", report.Duration)
	}
	if len(jobs) == 0 {
		return nil, errors.NewSourceError(errors.ErrCodeNoJobs, "no jobs found in the given paths", nil).
			WithContext("paths", paths)
	}
	return jobs, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}

func withFile(err error, filename string) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithContext("file", filename)
	}
	return fmt.Errorf("%s: %w", filename, err)
}
