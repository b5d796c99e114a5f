// Package configcache keeps the configuration fetched from the router so
// repeated page loads do not hit the configuration API.
package configcache

import (
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"gitlab.com/netops-console/vyos_console_api/net/redis"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// KeyPrefix of every key written by the cache
const KeyPrefix = "configcache__"

// Cache of fetched configuration. Values are stored encoded so callers never
// share memory with the cached copy.
type Cache interface {
	Get(key string, dst interface{}) (bool, error)
	Set(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
	Flush() error
}

// RulesKey is the cache key of a rule set
func RulesKey(kind, name string) string {
	return KeyPrefix + "rules__" + kind + "__" + name
}

type entry struct {
	data    []byte
	expires time.Time
}

// Memory cache
type Memory struct {
	entries map[string]entry
	lock    *sync.RWMutex
	now     func() time.Time
}

// NewMemory godoc
func NewMemory() *Memory {
	return &Memory{
		entries: map[string]entry{},
		lock:    &sync.RWMutex{},
		now:     time.Now,
	}
}

// Get godoc
func (m *Memory) Get(key string, dst interface{}) (bool, error) {
	m.lock.RLock()
	e, ok := m.entries[key]
	m.lock.RUnlock()
	if !ok || (!e.expires.IsZero() && m.now().After(e.expires)) {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return false, errors.Wrap(err, "unable to decode cached value")
	}
	return true, nil
}

// Set godoc
func (m *Memory) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "unable to encode cached value")
	}
	e := entry{data: data}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.lock.Lock()
	m.entries[key] = e
	m.lock.Unlock()
	return nil
}

// Delete godoc
func (m *Memory) Delete(key string) error {
	m.lock.Lock()
	delete(m.entries, key)
	m.lock.Unlock()
	return nil
}

// Flush removes every entry
func (m *Memory) Flush() error {
	m.lock.Lock()
	m.entries = map[string]entry{}
	m.lock.Unlock()
	return nil
}

// Redis cache, shared between console instances
type Redis struct {
	client *redis.Client
}

// NewRedis godoc
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get godoc
func (r *Redis) Get(key string, dst interface{}) (bool, error) {
	data, found, err := r.client.GetBytes(key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, errors.Wrap(err, "unable to decode cached value")
	}
	return true, nil
}

// Set godoc
func (r *Redis) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "unable to encode cached value")
	}
	if ttl > 0 {
		return r.client.Exec(nil, "SET", key, data, "PX", ttl.Milliseconds())
	}
	return r.client.Exec(nil, "SET", key, data)
}

// Delete godoc
func (r *Redis) Delete(key string) error {
	return r.client.Exec(nil, "DEL", key)
}

// Flush removes every key written by the cache
func (r *Redis) Flush() error {
	keys, err := r.client.Keys(KeyPrefix + "*")
	if err != nil {
		return err
	}
	for _, key := range keys {
		if !strings.HasPrefix(key, KeyPrefix) {
			continue
		}
		if err := r.client.Exec(nil, "DEL", key); err != nil {
			return err
		}
	}
	return nil
}
