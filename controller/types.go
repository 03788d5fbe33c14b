package controller

import (
	"github.com/microcosm-cc/newsfeed/cache"
)

// CacheStats is the body of GET /api/v1/news/cache
type CacheStats struct {
	Key string `json:"key"`
	cache.Stats
}
