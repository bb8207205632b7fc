// Package worker assesses several datasets concurrently.
package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/hotbild/internal/pipeline"
)

// Assessor assesses one dataset file
type Assessor interface {
	Assess(ctx context.Context, path string, opts pipeline.Options) (*pipeline.Report, error)
}

// AssessJob assesses a single dataset file
type AssessJob struct {
	Index    int
	Path     string
	Options  pipeline.Options
	Assessor Assessor
}

// Execute executes the assessment job
func (j *AssessJob) Execute(ctx context.Context) Result {
	report, err := j.Assessor.Assess(ctx, j.Path, j.Options)
	if err != nil {
		return &AssessResult{Index: j.Index, Path: j.Path, Error: err}
	}
	return &AssessResult{Index: j.Index, Path: j.Path, Report: report}
}

// AssessResult represents the result of an assessment job
type AssessResult struct {
	Index  int
	Path   string
	Report *pipeline.Report
	Error  error
}

// GetError returns the error from the assessment
func (r *AssessResult) GetError() error {
	return r.Error
}

// BatchProcessor assesses multiple dataset files concurrently
type BatchProcessor struct {
	assessor    Assessor
	concurrency int
	options     pipeline.Options
}

// NewBatchProcessor creates a new batch processor; every file is assessed
// with the same options
func NewBatchProcessor(assessor Assessor, concurrency int, opts pipeline.Options) *BatchProcessor {
	return &BatchProcessor{
		assessor:    assessor,
		concurrency: concurrency,
		options:     opts,
	}
}

// ProcessPaths assesses the files and returns results in input order
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*AssessResult {
	if len(paths) == 0 {
		return []*AssessResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, path := range paths {
		if !pool.Submit(&AssessJob{Index: i, Path: path, Options: b.options, Assessor: b.assessor}) {
			break
		}
	}

	results := pool.Wait()

	done := make(map[int]bool, len(results))
	out := make([]*AssessResult, 0, len(paths))
	for _, r := range results {
		ar := r.(*AssessResult)
		done[ar.Index] = true
		out = append(out, ar)
	}
	// Jobs dropped by cancellation still get a result
	for i, path := range paths {
		if !done[i] {
			out = append(out, &AssessResult{Index: i, Path: path, Error: notStarted(ctx)})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func notStarted(ctx context.Context) error {
	if err := context.Cause(ctx); err != nil {
		return fmt.Errorf("not started: %w", err)
	}
	return errors.New("not started")
}

// ProcessFile reads dataset paths from a list file and assesses them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*AssessResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads dataset paths from a file (one per line)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
