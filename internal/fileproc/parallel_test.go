package fileproc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestMapFilesPreservesOrder(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	results, errs := MapFiles(context.Background(), items, func(_ context.Context, _ int, n int) (int, error) {
		return n * n, nil
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for i, n := range items {
		if results[i] != n*n {
			t.Fatalf("index %d: got %d, want %d", i, results[i], n*n)
		}
	}
}

func TestMapFilesCollectsPerItemErrors(t *testing.T) {
	items := []int{1, 2, 3, 4}
	_, errs := MapFiles(context.Background(), items, func(_ context.Context, _ int, n int) (int, error) {
		if n%2 == 0 {
			return 0, errors.New("even")
		}
		return n, nil
	})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
}

func TestForEachFileRunsAll(t *testing.T) {
	items := []int{1, 2, 3}
	var count int64
	errs := ForEachFile(context.Background(), items, func(_ context.Context, _ int, _ int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if atomic.LoadInt64(&count) != int64(len(items)) {
		t.Fatalf("expected all items processed, got %d", count)
	}
}
