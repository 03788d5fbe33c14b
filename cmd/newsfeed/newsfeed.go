package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/microcosm-cc/newsfeed/cache"
	conf "github.com/microcosm-cc/newsfeed/config"
	"github.com/microcosm-cc/newsfeed/controller"
	"github.com/microcosm-cc/newsfeed/models"
	"github.com/microcosm-cc/newsfeed/server"
)

var (
	configPath = flag.String("config", conf.ConfigFilePath, "path to the config file")
	memprof    = flag.String("memprof", "", "write memory profile to file on exit")
)

func main() {
	// Parse flags, also used to init glog
	flag.Parse()

	// 100 megabytes max before rolling the log files
	glog.MaxSize = 1024 * 1024 * 100

	if err := run(); err != nil {
		glog.Fatal(err)
	}
	glog.Flush()
}

func run() error {
	c, err := conf.Load(*configPath)
	if err != nil {
		return err
	}

	// Catch closing signal, shut the server down and flush logs
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	if *memprof != "" {
		// Reference time is used for formatting.
		// See http://golang.org/pkg/time for details.
		fname := *memprof + "-" + time.Now().Format("2006-01-02_15-04-05-MST")
		f, err := os.Create(fname)
		if err != nil {
			return err
		}
		defer func() {
			// Heap profiler is run on GC, so make sure it GCs before exiting.
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				glog.Errorf("pprof.WriteHeapProfile() %+v", err)
			}
			f.Close()
		}()
	}

	if glog.V(2) {
		glog.Infof("Generating %d news articles", c.CorpusSize)
	}
	store := &models.NewsStore{}
	if err := store.Initialize(c.CorpusSize, models.RandomNews(c.GeneratorSeed)); err != nil {
		return err
	}

	cacheStore, err := newCacheStore(c)
	if err != nil {
		return err
	}

	repo := models.NewNewsRepository(store, cacheStore, models.NewsRepositoryConfig{
		CacheKey:   c.CacheKey,
		Delay:      c.CacheDelay,
		TimeToLive: c.CacheTTLSeconds,
	})

	if glog.V(2) {
		glog.Infof("Starting server on port %d", c.ListenPort)
	}
	return server.StartServer(
		ctx,
		c.ListenPort,
		&controller.NewsController{Repository: repo},
		server.Jobs(c.CachePurgeSchedule, repo),
	)
}

func newCacheStore(c conf.Config) (cache.Store, error) {
	switch c.CacheBackend {
	case conf.BackendMemory:
		return cache.NewMemory(), nil

	case conf.BackendMemcache:
		if glog.V(2) {
			glog.Infof("Initialising cache connection to %s:%d", c.MemcachedHost, c.MemcachedPort)
		}
		mc := cache.NewMemcache(c.MemcachedHost, c.MemcachedPort)

		// Unreachable memcached degrades to a miss on every request, which
		// is slow but still correct
		if err := mc.Ping(); err != nil {
			glog.Warningf("memcached %s:%d unreachable: %+v", c.MemcachedHost, c.MemcachedPort, err)
		}
		return mc, nil
	}

	return nil, fmt.Errorf("unknown cache backend %q", c.CacheBackend)
}
