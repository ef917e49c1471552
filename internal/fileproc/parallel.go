// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error

	index int
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.add(-1, path, err)
}

func (e *ProcessingErrors) add(index int, path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err, index: index})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the individual file errors to errors.Is and errors.As.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

// sortByInput orders errors by the position of their file in the input.
func (e *ProcessingErrors) sortByInput() {
	e.mu.Lock()
	defer e.mu.Unlock()
	sort.SliceStable(e.Errors, func(i, j int) bool {
		return e.Errors[i].index < e.Errors[j].index
	})
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mix of file I/O and cgo parsing.
const DefaultWorkerMultiplier = 2

type config struct {
	workers int
}

// Option configures MapFiles.
type Option func(*config)

// WithWorkers caps the number of concurrent workers. Values <= 0 select
// 2x NumCPU.
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// MapFiles calls fn for every file on a bounded worker pool. Successful
// results are returned in input order regardless of completion order. Failed
// files are collected, also in input order, in the returned ProcessingErrors,
// which is nil when every file succeeded.
//
// Files not yet started when ctx is canceled are recorded with ctx.Err().
// A progress tracker carried by ctx (see analyzer.WithTracker) is told about
// every file as it finishes.
func MapFiles[T any](ctx context.Context, files []string, fn func(context.Context, string) (T, error), opts ...Option) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers <= 0 {
		cfg.workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Expect(len(files))
	}

	slots := make([]T, len(files))
	done := make([]bool, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(cfg.workers)
	for i, path := range files {
		p.Go(func() {
			var result T
			err := ctx.Err()
			if err == nil {
				result, err = fn(ctx, path)
			}
			if tracker != nil {
				tracker.Finish(path, err)
			}
			if err != nil {
				errs.add(i, path, err)
				return
			}
			// Each goroutine owns its own index.
			slots[i] = result
			done[i] = true
		})
	}
	p.Wait()

	results := make([]T, 0, len(files))
	for i, ok := range done {
		if ok {
			results = append(results, slots[i])
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	errs.sortByInput()
	return results, errs
}
