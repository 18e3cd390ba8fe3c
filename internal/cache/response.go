package cache

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	applog "fintastic/internal/log"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 1000

	anonymousOwner = "anonymous"
)

// DefaultBypassPrefixes are path fragments whose responses are never cached.
var DefaultBypassPrefixes = []string{"/auth/", "/login", "/register", "/verify", "/resend"}

// Entry is a cached HTTP response.
type Entry struct {
	StatusCode  int
	ContentType string
	Body        []byte
	StoredAt    time.Time
	Generation  uint64
}

// Store is the backing storage of a ResponseCache. Errors are treated as
// misses by the caller.
type Store interface {
	Get(key string) (Entry, bool, error)
	Set(key string, e Entry, ttl time.Duration) error
	DeletePrefix(prefix string) (int, error)
}

// MemoryStore adapts an LRUCache to the Store interface.
type MemoryStore struct {
	lru *LRUCache[Entry]
}

func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: NewLRUCache[Entry](maxEntries, ttl)}
}

func (s *MemoryStore) Get(key string) (Entry, bool, error) {
	e, ok := s.lru.Get(key)
	return e, ok, nil
}

func (s *MemoryStore) Set(key string, e Entry, ttl time.Duration) error {
	s.lru.SetWithTTL(key, e, ttl)
	return nil
}

func (s *MemoryStore) DeletePrefix(prefix string) (int, error) {
	return s.lru.DeletePrefix(prefix), nil
}

func (s *MemoryStore) CleanExpired() int { return s.lru.CleanExpired() }

func (s *MemoryStore) Size() int { return s.lru.Size() }

// Options configures a ResponseCache.
type Options struct {
	TTL            time.Duration
	Disabled       bool
	BypassPrefixes []string
	Logger         *applog.Logger
}

// Stats are cumulative counters since construction.
type Stats struct {
	Hits          int64
	Misses        int64
	Stores        int64
	Invalidations int64
	Errors        int64
}

// ResponseCache is an owner-namespaced read-through cache of responses.
//
// Every invalidation bumps the owner's generation. A writer captures the
// generation before computing and Set drops the value if it moved, so a
// response computed concurrently with a mutation is never stored after the
// mutation's invalidation.
type ResponseCache struct {
	store    Store
	ttl      time.Duration
	disabled bool
	bypass   []string
	logger   *applog.Logger

	mu          sync.Mutex
	epoch       uint64
	generations map[string]uint64

	hits, misses, stores, invalidations, errors atomic.Int64
}

func NewResponseCache(store Store, opts Options) *ResponseCache {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	bypass := opts.BypassPrefixes
	if bypass == nil {
		bypass = DefaultBypassPrefixes
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentCache)
	}
	return &ResponseCache{
		store:       store,
		ttl:         ttl,
		disabled:    opts.Disabled,
		bypass:      bypass,
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

// Key builds the cache key of a request. The owner id leads so that a
// prefix delete removes the whole namespace.
func Key(owner, method, requestURI string) string {
	if owner == "" {
		owner = anonymousOwner
	}
	return owner + "_" + method + "_" + requestURI
}

func ownerPrefix(owner string) string {
	if owner == "" {
		owner = anonymousOwner
	}
	return owner + "_"
}

// Enabled reports whether the cache serves or stores anything.
func (c *ResponseCache) Enabled() bool { return c != nil && !c.disabled }

// Bypass reports whether responses for path must never be cached.
func (c *ResponseCache) Bypass(path string) bool {
	if !c.Enabled() {
		return true
	}
	for _, p := range c.bypass {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// Generation returns the owner's current invalidation generation.
func (c *ResponseCache) Generation(owner string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generationLocked(owner)
}

func (c *ResponseCache) generationLocked(owner string) uint64 {
	return c.epoch + c.generations[ownerPrefix(owner)]
}

// Get returns a live entry of owner. Store failures are logged and reported
// as a miss. Entries written under an older generation are never returned,
// even if deleting them failed.
func (c *ResponseCache) Get(owner, key string) (Entry, bool) {
	if !c.Enabled() {
		return Entry{}, false
	}
	e, ok, err := c.store.Get(key)
	if err != nil {
		c.errors.Add(1)
		c.logger.Warn("Cache read failed, computing without cache", applog.FieldCacheKey, key, applog.FieldError, err)
		return Entry{}, false
	}
	if ok && e.Generation != c.Generation(owner) {
		ok = false
	}
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return e, ok
}

// Set stores e under key for owner unless the owner was invalidated after
// generation gen was observed. A ttl of zero uses the cache default.
func (c *ResponseCache) Set(owner, key string, gen uint64, e Entry, ttl time.Duration) bool {
	if !c.Enabled() {
		return false
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generationLocked(owner) != gen {
		c.logger.Debug("Dropping response computed before invalidation", applog.FieldCacheKey, key)
		return false
	}
	e.Generation = gen
	if e.StoredAt.IsZero() {
		e.StoredAt = time.Now()
	}
	if err := c.store.Set(key, e, ttl); err != nil {
		c.errors.Add(1)
		c.logger.Warn("Cache write failed", applog.FieldCacheKey, key, applog.FieldError, err)
		return false
	}
	c.stores.Add(1)
	return true
}

// InvalidateOwner removes every entry of the owner's namespace.
func (c *ResponseCache) InvalidateOwner(owner string) int {
	if c == nil {
		return 0
	}
	prefix := ownerPrefix(owner)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[prefix]++
	c.invalidations.Add(1)
	n, err := c.store.DeletePrefix(prefix)
	if err != nil {
		c.errors.Add(1)
		c.logger.Error("Cache invalidation failed", applog.FieldOwnerID, owner, applog.FieldError, err)
		return 0
	}
	if n > 0 {
		c.logger.Debug("Owner cache invalidated", applog.FieldOwnerID, owner, "removed", n)
	}
	return n
}

// Clear drops every entry of every owner.
func (c *ResponseCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	n, err := c.store.DeletePrefix("")
	if err != nil {
		c.errors.Add(1)
		c.logger.Error("Cache clear failed", applog.FieldError, err)
		return 0
	}
	return n
}

func (c *ResponseCache) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Stores:        c.stores.Load(),
		Invalidations: c.invalidations.Load(),
		Errors:        c.errors.Load(),
	}
}
