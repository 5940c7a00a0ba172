// Package fileproc provides bounded parallel fan-out over a slice of
// inputs, used wherever per-item work is independent (e.g. tokenizing
// disjoint files) and only the slower downstream step (index insertion)
// must stay serialized.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError records one item's failure, keyed by its index.
type ProcessingError struct {
	Index int
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

// ProcessingErrors collects every ProcessingError from a batch.
type ProcessingErrors []*ProcessingError

func (e ProcessingErrors) Error() string {
	parts := make([]string, len(e))
	for i, pe := range e {
		parts[i] = pe.Error()
	}
	return strings.Join(parts, "; ")
}

// MaxGoroutines is the default pool width: enough to overlap I/O-bound
// tokenization work without oversubscribing CPU-bound stages downstream.
func MaxGoroutines() int {
	return runtime.NumCPU() * 2
}

// MapFiles runs fn over every item in items concurrently (bounded at
// MaxGoroutines), preserving input order in the returned slice. If ctx is
// cancelled, every item whose turn has not come yet skips fn and records
// ctx.Err() as its ProcessingError; items already in flight are still
// awaited. A per-item error is collected into
// the returned ProcessingErrors rather than aborting the batch — callers
// that want fail-fast should check ctx between calls to MapFiles.
func MapFiles[T any, R any](ctx context.Context, items []T, fn func(context.Context, int, T) (R, error)) ([]R, ProcessingErrors) {
	results := make([]R, len(items))
	var errs ProcessingErrors

	p := pool.New().WithMaxGoroutines(MaxGoroutines())
	errCh := make(chan *ProcessingError, len(items))

	for i, item := range items {
		i, item := i, item
		p.Go(func() {
			select {
			case <-ctx.Done():
				errCh <- &ProcessingError{Index: i, Err: ctx.Err()}
				return
			default:
			}
			r, err := fn(ctx, i, item)
			if err != nil {
				errCh <- &ProcessingError{Index: i, Err: err}
				return
			}
			results[i] = r
		})
	}
	p.Wait()
	close(errCh)

	for pe := range errCh {
		errs = append(errs, pe)
	}
	return results, errs
}

// ForEachFile runs fn over every item concurrently, bounded at
// MaxGoroutines, discarding results and collecting per-item errors.
func ForEachFile[T any](ctx context.Context, items []T, fn func(context.Context, int, T) error) ProcessingErrors {
	_, errs := MapFiles(ctx, items, func(ctx context.Context, i int, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, i, item)
	})
	return errs
}
