package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/golang/glog"
)

// Store is implemented by every cache backend. Values put into a shared
// backend are gob encoded, so concrete types must be registered with
// gob.Register by whoever owns them.
type Store interface {
	// Get returns the value for key, decoded into dst's type, and whether it
	// was found
	Get(key string, dst interface{}) (interface{}, bool)

	// Set stores data under key for timeToLive seconds (0 means no expiry)
	Set(key string, data interface{}, timeToLive int32)

	// Delete removes key, if present
	Delete(key string)
}

// Memcache is a Store backed by a memcached server
type Memcache struct {
	mc *memcache.Client
}

// NewMemcache creates the cache client. It is the responsibility of whatever
// has the values for this function (usually main.go shortly after reading the
// config file) to call this.
func NewMemcache(host string, port int64) *Memcache {
	return &Memcache{mc: memcache.New(fmt.Sprintf("%s:%d", host, port))}
}

// Set puts the given interface into the cache
func (m *Memcache) Set(key string, data interface{}, timeToLive int32) {
	// Encode the data for serialisation in memcache
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(&data)
	if err != nil {
		glog.Errorf("enc.Encode(&data) %+v", err)
		return
	}

	err = m.mc.Set(
		&memcache.Item{
			Key:        key,
			Value:      buf.Bytes(),
			Expiration: timeToLive, // time in seconds
		},
	)
	if err != nil {
		glog.Errorf("mc.Set() %+v", err)
		return
	}
}

// Get gets the data for the given key, if the data is in the cache
func (m *Memcache) Get(key string, dst interface{}) (interface{}, bool) {
	item, err := m.mc.Get(key)
	if err != nil {
		// Cache misses are expected, but other errors are logged.
		if err != memcache.ErrCacheMiss {
			glog.Warningf("mc.Get(key) %+v", err)
		}
		return nil, false
	}

	buf := bytes.NewBuffer(item.Value)
	dec := gob.NewDecoder(buf)
	err = dec.Decode(&dst)
	if err != nil {
		glog.Errorf("dec.Decode(&dst) %+v", err)
		return nil, false
	}

	return dst, true
}

// Delete removes items matching the given key from the cache, if it is in
// the cache
func (m *Memcache) Delete(key string) {
	err := m.mc.Delete(key)
	if err != nil && err != memcache.ErrCacheMiss {
		glog.Warningf("mc.Delete(key) %+v", err)
	}
}

// Ping checks that the memcached server is reachable
func (m *Memcache) Ping() error {
	return m.mc.Ping()
}
