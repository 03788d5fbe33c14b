package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	goconfig "github.com/robfig/config"
)

// ConfigFilePath is the default path to the config file
const ConfigFilePath string = "/etc/newsfeed/api.conf"

// APISection is the [api] section of the config file
const APISection string = "api"

// Config file keys
const (
	ListenPort = "listen_port"

	CorpusSize    = "corpus_size"
	GeneratorSeed = "generator_seed"

	CacheKey           = "cache_key"
	CacheDelay         = "cache_delay"
	CacheBackend       = "cache_backend"
	CacheTTLSeconds    = "cache_ttl_seconds"
	CachePurgeSchedule = "cache_purge_schedule"

	MemcachedHost = "memcached_host"
	MemcachedPort = "memcached_port"
)

// Cache backends
const (
	BackendMemory   = "memory"
	BackendMemcache = "memcache"
)

// Config holds every setting of the service
type Config struct {
	ListenPort int64

	CorpusSize    int
	GeneratorSeed uint64

	CacheKey           string
	CacheDelay         time.Duration
	CacheBackend       string
	CacheTTLSeconds    int32
	CachePurgeSchedule string

	MemcachedHost string
	MemcachedPort int64
}

// Default returns the settings used for anything the config file leaves out
func Default() Config {
	return Config{
		ListenPort:    8080,
		CorpusSize:    100,
		CacheKey:      "news",
		CacheDelay:    4 * time.Second,
		CacheBackend:  BackendMemory,
		MemcachedHost: "localhost",
		MemcachedPort: 11211,
	}
}

// Load reads the [api] section of the file at path over the defaults. A file
// that does not exist yields the defaults.
func Load(path string) (Config, error) {
	conf := Default()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if glog.V(2) {
			glog.Infof("config file %s not found, using defaults", path)
		}
		return conf, nil
	}

	c, err := goconfig.ReadDefault(path)
	if err != nil {
		return conf, fmt.Errorf("reading %s: %w", path, err)
	}

	r := reader{c: c}
	r.int64(ListenPort, &conf.ListenPort)
	r.int(CorpusSize, &conf.CorpusSize)
	r.uint64(GeneratorSeed, &conf.GeneratorSeed)
	r.string(CacheKey, &conf.CacheKey)
	r.duration(CacheDelay, &conf.CacheDelay)
	r.string(CacheBackend, &conf.CacheBackend)
	r.int32(CacheTTLSeconds, &conf.CacheTTLSeconds)
	r.string(CachePurgeSchedule, &conf.CachePurgeSchedule)
	r.string(MemcachedHost, &conf.MemcachedHost)
	r.int64(MemcachedPort, &conf.MemcachedPort)
	if r.err != nil {
		return conf, fmt.Errorf("reading %s: %w", path, r.err)
	}

	return conf, conf.Validate()
}

// Validate reports the first setting that cannot be used
func (conf Config) Validate() error {
	switch {
	case conf.ListenPort <= 0 || conf.ListenPort > 65535:
		return fmt.Errorf("%s %d is not a valid port", ListenPort, conf.ListenPort)
	case conf.CorpusSize < 0:
		return fmt.Errorf("%s must not be negative, got %d", CorpusSize, conf.CorpusSize)
	case conf.CacheKey == "":
		return fmt.Errorf("%s must not be empty", CacheKey)
	case conf.CacheDelay < 0:
		return fmt.Errorf("%s must not be negative, got %s", CacheDelay, conf.CacheDelay)
	case conf.CacheTTLSeconds < 0:
		return fmt.Errorf("%s must not be negative, got %d", CacheTTLSeconds, conf.CacheTTLSeconds)
	}

	switch conf.CacheBackend {
	case BackendMemory:
	case BackendMemcache:
		if conf.MemcachedHost == "" {
			return fmt.Errorf("%s is required for the %s backend", MemcachedHost, BackendMemcache)
		}
	default:
		return fmt.Errorf("unknown %s %q", CacheBackend, conf.CacheBackend)
	}

	return nil
}

// reader reads options of the [api] section, keeping the first error
type reader struct {
	c   *goconfig.Config
	err error
}

func (r *reader) raw(key string) (string, bool) {
	if r.err != nil || !r.c.HasOption(APISection, key) {
		return "", false
	}

	s, err := r.c.String(APISection, key)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return "", false
	}
	return s, true
}

func (r *reader) string(key string, dst *string) {
	if s, ok := r.raw(key); ok {
		*dst = s
	}
}

func (r *reader) parse(key string, bitSize int, dst func(int64)) {
	s, ok := r.raw(key)
	if !ok {
		return
	}

	i, err := strconv.ParseInt(s, 10, bitSize)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	dst(i)
}

func (r *reader) int(key string, dst *int) {
	r.parse(key, 0, func(i int64) { *dst = int(i) })
}

func (r *reader) int32(key string, dst *int32) {
	r.parse(key, 32, func(i int64) { *dst = int32(i) })
}

func (r *reader) int64(key string, dst *int64) {
	r.parse(key, 64, func(i int64) { *dst = i })
}

func (r *reader) uint64(key string, dst *uint64) {
	s, ok := r.raw(key)
	if !ok {
		return
	}

	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = u
}

func (r *reader) duration(key string, dst *time.Duration) {
	s, ok := r.raw(key)
	if !ok {
		return
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = d
}
