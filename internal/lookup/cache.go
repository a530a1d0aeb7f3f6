package lookup

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/atharvsharma432199/phone-api/internal/domain"
)

// DefaultCacheSize is used when a non-positive capacity is requested.
const DefaultCacheSize = 1000

// entry is what the LRU stores. found=false is a cached "no record".
type entry struct {
	rec   domain.PersonRecord
	found bool
}

// Cache memoizes normalized query -> record lookups, including negative
// results, in a fixed-capacity LRU. It is safe for concurrent use; entries
// never expire on their own and are dropped only by eviction or Purge.
type Cache struct {
	lru  *lru.Cache
	size int
}

// NewCache returns a cache holding at most size distinct keys.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	l, err := lru.New(size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Cache{lru: l, size: size}
}

// Get returns the cached outcome for key. hit reports whether key is cached
// at all; a hit with a nil record is a cached negative.
func (c *Cache) Get(key string) (rec *domain.PersonRecord, hit bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	if !e.found {
		return nil, true
	}
	out := e.rec
	return &out, true
}

// Put stores the outcome for key. A nil rec caches "no record found".
func (c *Cache) Put(key string, rec *domain.PersonRecord) {
	e := entry{}
	if rec != nil {
		e.rec, e.found = *rec, true
	}
	c.lru.Add(key, e)
}

// Purge drops every entry, e.g. after the record store is replaced.
func (c *Cache) Purge() { c.lru.Purge() }

// Len returns the number of cached keys.
func (c *Cache) Len() int { return c.lru.Len() }

// Cap returns the configured capacity.
func (c *Cache) Cap() int { return c.size }
