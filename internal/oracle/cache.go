package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mrz1836/astromedia/internal/constants"
	"github.com/mrz1836/astromedia/internal/domain"
	"github.com/mrz1836/astromedia/internal/task"
)

// cacheEntry holds a verdict along with the time it was stored.
type cacheEntry struct {
	verdict  domain.Verdict
	storedAt time.Time
}

// Cache wraps an oracle with an LRU verdict cache keyed by
// (role, action, brief). Errors are never cached, so a transport failure is
// always reported fresh.
type Cache struct {
	delegate task.ValidationOracle
	cache    *lru.Cache[string, cacheEntry]
	ttl      time.Duration
	now      func() time.Time
}

// NewCache wraps delegate. Non-positive size or ttl fall back to defaults.
func NewCache(delegate task.ValidationOracle, size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = constants.DefaultOracleCacheSize
	}
	if ttl <= 0 {
		ttl = constants.DefaultOracleCacheTTL
	}
	// lru.New only errors on non-positive size which we guard above.
	cache, _ := lru.New[string, cacheEntry](size)
	return &Cache{
		delegate: delegate,
		cache:    cache,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Validate implements task.ValidationOracle.
func (c *Cache) Validate(ctx context.Context, role, action, brief string) (domain.Verdict, error) {
	key := cacheKey(role, action, brief)

	if entry, ok := c.cache.Get(key); ok {
		if c.now().Sub(entry.storedAt) < c.ttl {
			return entry.verdict, nil
		}
		c.cache.Remove(key)
	}

	verdict, err := c.delegate.Validate(ctx, role, action, brief)
	if err != nil {
		return domain.Verdict{}, err
	}
	c.cache.Add(key, cacheEntry{verdict: verdict, storedAt: c.now()})
	return verdict, nil
}

// Len returns the number of cached verdicts.
func (c *Cache) Len() int {
	return c.cache.Len()
}

func cacheKey(role, action, brief string) string {
	h := sha256.New()
	for _, s := range []string{role, action, brief} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
