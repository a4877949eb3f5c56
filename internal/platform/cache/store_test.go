package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore[[]int64](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) ([]int64, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []int64{5, 7}, nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "teams:5,7", loader)
			if err != nil {
				errCh <- err
				return
			}
			if len(v) != 2 {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32
	loadErr := errors.New("boom")

	loader := func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", loadErr
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(t.Context(), "k", loader); !errors.Is(err, loadErr) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := store.GetOrLoad(t.Context(), "k", loader)
	if err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}
	if v != "ok" || calls.Load() != 2 {
		t.Fatalf("unexpected value=%q calls=%d", v, calls.Load())
	}
}

func TestStore_ExpiresEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewStore[int](time.Minute)
	store.now = func() time.Time { return now }

	store.Set(t.Context(), "team:5", 5)
	if _, ok := store.Get(t.Context(), "team:5"); !ok {
		t.Fatalf("expected cached entry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(t.Context(), "team:5"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore[int](0)
	store.Set(t.Context(), "team:1", 1)
	store.Set(t.Context(), "team:2", 2)
	store.Set(t.Context(), "coach:1", 3)

	store.DeletePrefix(t.Context(), "team:")

	if _, ok := store.Get(t.Context(), "team:1"); ok {
		t.Fatalf("team:1 should be evicted")
	}
	if _, ok := store.Get(t.Context(), "coach:1"); !ok {
		t.Fatalf("coach:1 should remain")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
