package db

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// cacheTTL bounds how long an entry lives without a mutation by its user.
const cacheTTL = 5 * time.Minute

// ReadCache keeps per-user read models in ristretto. Keys are tracked per
// user so that all of a user's entries can be dropped at once, and every
// drop advances the user's generation so that a value loaded before the
// drop is never stored after it.
type ReadCache struct {
	cache *ristretto.Cache

	mu   sync.Mutex
	keys map[string]map[string]struct{}
	gens map[string]uint64
}

func NewReadCache(maxItems int64) (*ReadCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // number of keys to track frequency of
		MaxCost:     maxItems,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &ReadCache{
		cache: cache,
		keys:  make(map[string]map[string]struct{}),
		gens:  make(map[string]uint64),
	}, nil
}

func cacheKey(userID, key string) string {
	return userID + ":" + key
}

func (c *ReadCache) Get(userID, key string) (any, bool) {
	return c.cache.Get(cacheKey(userID, key))
}

// Generation reports userID's current generation; pass it to Set along
// with the value loaded after reading it.
func (c *ReadCache) Generation(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[userID]
}

// Set stores value unless userID was invalidated since gen was read. The
// lock is held through the write so an invalidation cannot slip in between
// the check and the store.
func (c *ReadCache) Set(userID, key string, value any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[userID] != gen {
		return
	}

	k := cacheKey(userID, key)
	if c.keys[userID] == nil {
		c.keys[userID] = make(map[string]struct{})
	}
	c.keys[userID][k] = struct{}{}
	c.cache.SetWithTTL(k, value, 1, cacheTTL)
	c.cache.Wait()
}

// InvalidateUser drops every entry cached for userID.
func (c *ReadCache) InvalidateUser(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[userID]++
	for k := range c.keys[userID] {
		c.cache.Del(k)
	}
	delete(c.keys, userID)
}

func (c *ReadCache) Close() {
	c.cache.Close()
}
