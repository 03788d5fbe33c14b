package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"golang.org/x/sync/singleflight"

	e "github.com/microcosm-cc/newsfeed/errors"
)

// Stats are the running counters of a Loader
type Stats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Loads    int64 `json:"loads"`
	Failures int64 `json:"failures"`
}

// Loader is a read-through cache over a single key. On a miss exactly one
// caller runs the producer, the rest wait for and share its result. Failed
// loads are never cached.
type Loader[V any] struct {
	store      Store
	key        string
	timeToLive int32
	produce    func(context.Context) (V, error)

	group singleflight.Group

	// mu covers the epoch check plus the store write that publishes a load,
	// and the epoch bump plus delete of Invalidate.
	mu    sync.Mutex
	epoch uint64

	hits     atomic.Int64
	misses   atomic.Int64
	loads    atomic.Int64
	failures atomic.Int64
}

// NewLoader returns a Loader caching the result of produce under key in store
func NewLoader[V any](
	store Store,
	key string,
	timeToLive int32,
	produce func(context.Context) (V, error),
) *Loader[V] {
	return &Loader[V]{
		store:      store,
		key:        key,
		timeToLive: timeToLive,
		produce:    produce,
	}
}

// Key is the cache key the loader reads and writes
func (l *Loader[V]) Key() string {
	return l.key
}

// Get returns the cached value, loading it first if the key is empty
func (l *Loader[V]) Get(ctx context.Context) (V, error) {
	var zero V

	if v, ok := l.lookup(); ok {
		l.hits.Add(1)
		return v, nil
	}
	l.misses.Add(1)

	for {
		var led bool
		ch := l.group.DoChan(l.key, func() (interface{}, error) {
			led = true
			return l.load(ctx)
		})

		select {
		case <-ctx.Done():
			return zero, e.Wrap("cache.Loader.Get", e.Cancelled, ctx.Err())

		case res := <-ch:
			if res.Err != nil {
				// The caller that ran the load went away. Ours has not, so
				// try again rather than fail on someone else's behalf.
				if !led && ctx.Err() == nil && errors.Is(res.Err, e.ErrCancelled) {
					continue
				}
				return zero, res.Err
			}
			return res.Val.(V), nil
		}
	}
}

// Invalidate empties the key. A load that is in flight when this is called
// still returns its value to its waiters but does not repopulate the cache.
func (l *Loader[V]) Invalidate() {
	l.mu.Lock()
	l.epoch++
	l.store.Delete(l.key)
	l.mu.Unlock()

	l.group.Forget(l.key)

	if glog.V(2) {
		glog.Infof("cache key %s invalidated", l.key)
	}
}

// Stats returns a snapshot of the loader's counters
func (l *Loader[V]) Stats() Stats {
	return Stats{
		Hits:     l.hits.Load(),
		Misses:   l.misses.Load(),
		Loads:    l.loads.Load(),
		Failures: l.failures.Load(),
	}
}

func (l *Loader[V]) lookup() (V, bool) {
	var zero V

	val, ok := l.store.Get(l.key, zero)
	if !ok {
		return zero, false
	}

	v, ok := val.(V)
	if !ok {
		glog.Warningf("cache key %s holds %T, treating as a miss", l.key, val)
		return zero, false
	}

	return v, true
}

func (l *Loader[V]) load(ctx context.Context) (interface{}, error) {
	// An earlier flight may have published between our lookup and this one
	// starting.
	if v, ok := l.lookup(); ok {
		return v, nil
	}

	l.mu.Lock()
	epoch := l.epoch
	l.mu.Unlock()

	l.loads.Add(1)
	v, err := l.produce(ctx)
	if err != nil {
		l.failures.Add(1)
		glog.Warningf("loading cache key %s: %+v", l.key, err)
		return nil, classify(err)
	}

	l.mu.Lock()
	if l.epoch == epoch {
		l.store.Set(l.key, v, l.timeToLive)
	}
	l.mu.Unlock()

	return v, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, e.ErrCancelled):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return e.Wrap("cache.Loader.load", e.Cancelled, err)
	default:
		return e.Wrap("cache.Loader.load", e.UpstreamFailure, err)
	}
}
