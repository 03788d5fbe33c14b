package models

import (
	"context"
	"time"

	"github.com/microcosm-cc/newsfeed/cache"
	e "github.com/microcosm-cc/newsfeed/errors"
)

// Defaults for NewsRepository
const (
	DefaultCacheKey   = "news"
	DefaultCacheDelay = 4 * time.Second
)

// NewsRepositoryConfig configures the cache in front of the store
type NewsRepositoryConfig struct {
	// CacheKey is the key the corpus is cached under
	CacheKey string

	// Delay is how long a miss takes, modelling an expensive upstream
	Delay time.Duration

	// TimeToLive in seconds for backends that expire entries, 0 for never
	TimeToLive int32
}

// NewsRepository serves the corpus through a read-through cache. Only a miss
// pays the delay, and concurrent misses share a single load.
type NewsRepository struct {
	store  *NewsStore
	delay  time.Duration
	loader *cache.Loader[[]News]
}

// NewNewsRepository wires store behind cacheStore. Zero config values take
// the package defaults, except Delay where zero means no delay.
func NewNewsRepository(
	store *NewsStore,
	cacheStore cache.Store,
	conf NewsRepositoryConfig,
) *NewsRepository {
	if conf.CacheKey == "" {
		conf.CacheKey = DefaultCacheKey
	}

	r := &NewsRepository{
		store: store,
		delay: conf.Delay,
	}
	r.loader = cache.NewLoader(cacheStore, conf.CacheKey, conf.TimeToLive, r.findAllSlowly)

	return r
}

// FindAll returns the whole corpus, from cache when it is populated
func (r *NewsRepository) FindAll(ctx context.Context) ([]News, error) {
	return r.loader.Get(ctx)
}

// Purge invalidates the cached corpus so that the next FindAll reloads it
func (r *NewsRepository) Purge() {
	r.loader.Invalidate()
}

// Stats reports cache counters
func (r *NewsRepository) Stats() cache.Stats {
	return r.loader.Stats()
}

// CacheKey is the key the corpus is cached under
func (r *NewsRepository) CacheKey() string {
	return r.loader.Key()
}

func (r *NewsRepository) findAllSlowly(ctx context.Context) ([]News, error) {
	if r.delay > 0 {
		t := time.NewTimer(r.delay)
		defer t.Stop()

		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, e.Wrap("models.NewsRepository.findAllSlowly", e.Cancelled, ctx.Err())
		}
	}

	return r.store.GetAll()
}
