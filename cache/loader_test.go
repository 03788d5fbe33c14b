package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	e "github.com/microcosm-cc/newsfeed/errors"
)

type countingProducer struct {
	calls atomic.Int64
	delay time.Duration
	fail  atomic.Bool
}

func (p *countingProducer) produce(ctx context.Context) ([]string, error) {
	p.calls.Add(1)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.fail.Load() {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return []string{"a", "b", "c"}, nil
}

func TestLoaderConcurrentMissLoadsOnce(t *testing.T) {
	p := &countingProducer{delay: 100 * time.Millisecond}
	l := NewLoader(NewMemory(), "news", 0, p.produce)

	const callers = 50
	var wg sync.WaitGroup
	results := make([][]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = l.Get(context.Background())
		}(i)
	}
	wg.Wait()

	if n := p.calls.Load(); n != 1 {
		t.Errorf("producer called %d times, expected 1", n)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %+v", i, errs[i])
		}
		if diff := cmp.Diff(results[0], results[i]); diff != "" {
			t.Errorf("caller %d saw a different value (-first +got):\n%s", i, diff)
		}
	}
}

func TestLoaderHitsDoNotCallProducer(t *testing.T) {
	p := &countingProducer{}
	l := NewLoader(NewMemory(), "news", 0, p.produce)

	first, err := l.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1000; i++ {
		got, err := l.Get(context.Background())
		if err != nil {
			t.Fatalf("call %d: %+v", i, err)
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Fatalf("call %d differs (-first +got):\n%s", i, diff)
		}
	}

	if n := p.calls.Load(); n != 1 {
		t.Errorf("producer called %d times, expected 1", n)
	}

	s := l.Stats()
	if s.Hits != 1000 || s.Misses != 1 || s.Loads != 1 || s.Failures != 0 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestLoaderFailureIsNotCached(t *testing.T) {
	p := &countingProducer{}
	p.fail.Store(true)
	store := NewMemory()
	l := NewLoader(store, "news", 0, p.produce)

	_, err := l.Get(context.Background())
	if !errors.Is(err, e.ErrUpstreamFailure) {
		t.Fatalf("expected an upstream failure, got %+v", err)
	}
	if store.Len() != 0 {
		t.Errorf("failed load left %d entries in the store", store.Len())
	}

	p.fail.Store(false)
	got, err := l.Get(context.Background())
	if err != nil {
		t.Fatalf("retry failed: %+v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 values, got %d", len(got))
	}
	if n := p.calls.Load(); n != 2 {
		t.Errorf("producer called %d times, expected 2", n)
	}
	if store.Len() != 1 {
		t.Errorf("successful load should populate the store")
	}
}

func TestLoaderInvalidate(t *testing.T) {
	p := &countingProducer{}
	l := NewLoader(NewMemory(), "news", 0, p.produce)

	if _, err := l.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	l.Invalidate()
	if _, err := l.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Get(context.Background()); err != nil {
		t.Fatal(err)
	}

	if n := p.calls.Load(); n != 2 {
		t.Errorf("producer called %d times, expected 2", n)
	}
}

func TestLoaderInvalidateDuringLoad(t *testing.T) {
	p := &countingProducer{delay: 100 * time.Millisecond}
	store := NewMemory()
	l := NewLoader(store, "news", 0, p.produce)

	done := make(chan error)
	go func() {
		_, err := l.Get(context.Background())
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	l.Invalidate()

	if err := <-done; err != nil {
		t.Fatalf("in-flight load failed: %+v", err)
	}
	if store.Len() != 0 {
		t.Errorf("a load started before invalidation repopulated the cache")
	}
}

func TestLoaderCancelledCallerDoesNotPoison(t *testing.T) {
	p := &countingProducer{delay: 200 * time.Millisecond}
	store := NewMemory()
	l := NewLoader(store, "news", 0, p.produce)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Get(ctx)
	if !errors.Is(err, e.ErrCancelled) {
		t.Fatalf("expected cancellation, got %+v", err)
	}

	got, err := l.Get(context.Background())
	if err != nil {
		t.Fatalf("call after cancellation failed: %+v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 values, got %d", len(got))
	}
}

func TestLoaderWaiterSurvivesLeaderCancellation(t *testing.T) {
	p := &countingProducer{delay: 100 * time.Millisecond}
	l := NewLoader(NewMemory(), "news", 0, p.produce)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderDone := make(chan error)
	go func() {
		_, err := l.Get(leaderCtx)
		leaderDone <- err
	}()

	// Let the leader start its flight before the waiter joins it
	time.Sleep(20 * time.Millisecond)

	waiterDone := make(chan error)
	go func() {
		_, err := l.Get(context.Background())
		waiterDone <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-leaderDone; !errors.Is(err, e.ErrCancelled) {
		t.Errorf("leader: expected cancellation, got %+v", err)
	}
	if err := <-waiterDone; err != nil {
		t.Errorf("waiter should have retried and succeeded, got %+v", err)
	}
}
