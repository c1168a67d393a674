// Package sources loads job postings from configured job sources and merges
// them into one normalized, de-duplicated list.
package sources

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"jobmatch/internal/errors"
	"jobmatch/internal/types"
)

// Source delivers raw job postings
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]types.JobPosting, error)
}

// FileSource reads jobs from files and directories. Directories contribute
// every .json, .yaml and .yml file directly inside them, in name order.
type FileSource struct {
	name        string
	paths       []string
	maxFileSize int64
}

// NewFileSource creates a file source. An empty name defaults to the base
// name of the first path.
func NewFileSource(name string, maxFileSize int64, paths ...string) *FileSource {
	if name == "" && len(paths) > 0 {
		name = strings.TrimSuffix(filepath.Base(paths[0]), filepath.Ext(paths[0]))
	}
	return &FileSource{name: name, paths: paths, maxFileSize: maxFileSize}
}

// Name implements Source
func (s *FileSource) Name() string {
	return s.name
}

// Fetch implements Source
func (s *FileSource) Fetch(ctx context.Context) ([]types.JobPosting, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	var jobs []types.JobPosting
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := ReadJobFile(file, s.maxFileSize)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, batch...)
	}
	return jobs, nil
}

func (s *FileSource) files() ([]string, error) {
	var files []string
	for _, path := range s.paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fileError(path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fileError(path, err)
		}
		var inDir []string
		for _, entry := range entries {
			if entry.Type().IsRegular() && IsJobFile(entry.Name()) {
				inDir = append(inDir, filepath.Join(path, entry.Name()))
			}
		}
		slices.Sort(inDir)
		files = append(files, inDir...)
	}
	return files, nil
}

// ReadJobFile reads and decodes one job file. maxSize <= 0 disables the size check.
func ReadJobFile(path string, maxSize int64) ([]types.JobPosting, error) {
	data, err := readLimited(path, maxSize)
	if err != nil {
		return nil, err
	}
	jobs, err := DecodeJobs(data, filepath.Ext(path))
	if err != nil {
		return nil, withFile(err, path)
	}
	return jobs, nil
}

// ReadResumeFile reads and decodes a resume document
func ReadResumeFile(path string, maxSize int64) (types.ResumeProfile, error) {
	data, err := readLimited(path, maxSize)
	if err != nil {
		return types.ResumeProfile{}, err
	}
	resume, err := DecodeResume(data, filepath.Ext(path))
	if err != nil {
		return types.ResumeProfile{}, withFile(err, path)
	}
	return resume, nil
}

func readLimited(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	if info.IsDir() {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("path is a directory, not a file: %s", path), nil)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidInput,
			fmt.Sprintf("file %s exceeds the %d byte limit", path, maxSize), nil).
			WithContext("size", info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(path, err)
	}
	return data, nil
}

func fileError(path string, err error) error {
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.NewIOError(errors.ErrCodeFileNotFound, fmt.Sprintf("File not found: %s", path), err)
	}
	return errors.NewIOError(errors.ErrCodeFileNotReadable, fmt.Sprintf("Cannot read file: %s", path), err)
}

func withFile(err error, path string) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.WithContext("file", path)
	}
	return fmt.Errorf("%s: %w", path, err)
}
