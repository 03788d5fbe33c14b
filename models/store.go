package models

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	e "github.com/microcosm-cc/newsfeed/errors"
)

// DefaultCorpusSize is how many articles the store holds unless configured
const DefaultCorpusSize = 100

// NewsStore holds the corpus of generated articles. It is filled once by
// Initialize and is read-only afterwards, so GetAll needs no locking. A failed
// Initialize leaves the store permanently uninitialised.
type NewsStore struct {
	once  sync.Once
	ready atomic.Bool
	news  []News
}

// Initialize fills the store by calling gen count times, keeping the results
// in call order with any HTML stripped. A generator error aborts initialisation and the store is left
// empty; it is not retried.
func (s *NewsStore) Initialize(count int, gen Generator) error {
	if count < 0 {
		return e.New(
			"models.NewsStore.Initialize",
			e.InitializationFailure,
			fmt.Sprintf("corpus size must not be negative, got %d", count),
		)
	}

	err := e.New(
		"models.NewsStore.Initialize",
		e.AlreadyInitialized,
		"news store is already initialised",
	)
	s.once.Do(func() {
		news := make([]News, 0, count)
		for i := 0; i < count; i++ {
			n, genErr := gen()
			if genErr != nil {
				glog.Errorf("generating news %d of %d: %+v", i+1, count, genErr)
				err = e.Wrap("models.NewsStore.Initialize", e.InitializationFailure, genErr)
				return
			}
			// Generators are pluggable, so nothing they return is trusted
			news = append(news, n.Sanitise())
		}

		s.news = news
		s.ready.Store(true)
		err = nil

		if glog.V(2) {
			glog.Infof("news store initialised with %d articles", count)
		}
	})

	return err
}

// GetAll returns every article in the store. Callers must not modify the
// returned slice.
func (s *NewsStore) GetAll() ([]News, error) {
	if !s.ready.Load() {
		return nil, e.New(
			"models.NewsStore.GetAll",
			e.NotInitialized,
			"news store has not been initialised",
		)
	}
	return s.news, nil
}
