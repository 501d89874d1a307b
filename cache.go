package main

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/cespare/xxhash/v2"
	"github.com/hoisie/redis"
)

type KeyNotFound struct {
	key string
}

func (e KeyNotFound) Error() string {
	return e.key + " " + "not found"
}

type KeyExpired struct {
	Key string
}

func (e KeyExpired) Error() string {
	return e.Key + " " + "expired"
}

type CacheIsFull struct {
}

func (e CacheIsFull) Error() string {
	return "Cache is Full"
}

type Report struct {
	Body   []byte
	Expire time.Time
}

// Cache stores rendered query reports. Memcached and redis entries outlive
// the run, so keys carry the fingerprint of the trie they were rendered from.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, report []byte) error
}

func NewCache(cs CacheSettings, rs RedisSettings) (Cache, error) {
	switch cs.Backend {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryCache(cs), nil
	case "memcache":
		return NewMemcachedCache(cs.MemcacheServers, int32(cs.Expire)), nil
	case "redis":
		return NewRedisCache(rs, int64(cs.Expire)), nil
	}
	return nil, fmt.Errorf("invalid cache backend %q", cs.Backend)
}

type MemoryCache struct {
	Backend  map[string]Report
	Expire   time.Duration
	Maxcount int
	mu       sync.RWMutex
}

func NewMemoryCache(cs CacheSettings) *MemoryCache {
	return &MemoryCache{
		Backend:  make(map[string]Report),
		Expire:   time.Duration(cs.Expire) * time.Second,
		Maxcount: cs.Maxcount,
	}
}

func (c *MemoryCache) Get(key string) ([]byte, error) {
	c.mu.RLock()
	report, ok := c.Backend[key]
	c.mu.RUnlock()
	if !ok {
		return nil, KeyNotFound{key}
	}

	if !report.Expire.IsZero() && report.Expire.Before(time.Now()) {
		c.Remove(key)
		return nil, KeyExpired{key}
	}

	return report.Body, nil

}

func (c *MemoryCache) Set(key string, body []byte) error {
	if c.Full() && !c.Exists(key) {
		return CacheIsFull{}
	}

	// an Expire of zero never expires
	var expire time.Time
	if c.Expire > 0 {
		expire = time.Now().Add(c.Expire)
	}
	c.mu.Lock()
	c.Backend[key] = Report{body, expire}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Remove(key string) error {
	c.mu.Lock()
	delete(c.Backend, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Exists(key string) bool {
	c.mu.RLock()
	_, ok := c.Backend[key]
	c.mu.RUnlock()
	return ok
}

func (c *MemoryCache) Length() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Backend)
}

func (c *MemoryCache) Full() bool {
	// if Maxcount is zero. the cache will never be full.
	if c.Maxcount == 0 {
		return false
	}
	return c.Length() >= c.Maxcount
}

/*
Memcached backend
*/

func NewMemcachedCache(servers []string, expire int32) *MemcachedCache {
	c := memcache.New(servers...)
	return &MemcachedCache{
		backend: c,
		expire:  expire,
	}
}

type MemcachedCache struct {
	backend *memcache.Client
	expire  int32
}

func (m *MemcachedCache) Set(key string, report []byte) error {
	return m.backend.Set(&memcache.Item{Key: key, Value: report, Expiration: m.expire})
}

func (m *MemcachedCache) Get(key string) ([]byte, error) {
	item, err := m.backend.Get(key)
	if err != nil {
		return nil, KeyNotFound{key}
	}
	return item.Value, nil
}

/*
Redis cache Backend
*/

func NewRedisCache(rs RedisSettings, expire int64) *RedisCache {
	rc := &redis.Client{Addr: rs.Addr(), Db: rs.DB, Password: rs.Password}
	return &RedisCache{
		Backend: rc,
		Expire:  expire,
	}
}

type RedisCache struct {
	Backend *redis.Client
	Expire  int64
}

func (r *RedisCache) Get(key string) ([]byte, error) {
	item, err := r.Backend.Get(key)
	if err != nil {
		return nil, KeyNotFound{key}
	}
	return item, nil
}

func (r *RedisCache) Set(key string, report []byte) error {
	if r.Expire <= 0 {
		return r.Backend.Set(key, report)
	}
	return r.Backend.Setex(key, r.Expire, report)
}

// KeyGen scopes the raw query token to one trie. The echoed token is part of
// the report, so tokens differing only in case get separate entries.
func KeyGen(fingerprint uint64, token string) string {
	return "trie:" + strconv.FormatUint(fingerprint, 16) + ":" + strconv.FormatUint(xxhash.Sum64String(token), 16)
}
