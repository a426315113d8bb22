package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// MemoryListCache is the in-process fallback when redis is not configured.
// Invalidation bumps a per-resource generation, leaving stale entries to be evicted.
type MemoryListCache struct {
	cache         *freecache.Cache
	expireSeconds int

	mutex       sync.RWMutex
	generations map[string]int64
}

func NewMemoryListCache(sizeBytes int, ttl time.Duration) *MemoryListCache {
	expireSeconds := int(ttl.Seconds())
	if expireSeconds < 1 {
		expireSeconds = 1
	}
	return &MemoryListCache{
		cache:         freecache.NewCache(sizeBytes),
		expireSeconds: expireSeconds,
		generations:   map[string]int64{},
	}
}

func (c *MemoryListCache) Get(_ context.Context, resource, variant string) ([]byte, Version, bool) {
	c.mutex.RLock()
	version := Version{n: c.generations[resource], valid: true}
	c.mutex.RUnlock()

	data, err := c.cache.Get(memoryKey(resource, variant, version))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, version, false
	}
	if err != nil {
		log.Warnf("memory list cache, get [%s/%s]: %s", resource, variant, err)
		return nil, version, false
	}
	return data, version, true
}

func (c *MemoryListCache) Set(_ context.Context, resource, variant string, version Version, data []byte) {
	if !version.valid {
		return
	}
	if err := c.cache.Set(memoryKey(resource, variant, version), data, c.expireSeconds); err != nil {
		log.Warnf("memory list cache, set [%s/%s]: %s", resource, variant, err)
	}
}

func (c *MemoryListCache) Invalidate(_ context.Context, resource string) {
	c.mutex.Lock()
	c.generations[resource]++
	c.mutex.Unlock()
}

func memoryKey(resource, variant string, version Version) []byte {
	return []byte(resource + "|" + strconv.FormatInt(version.n, 10) + "|" + variant)
}
