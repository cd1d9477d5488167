package sbf

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// CloudCache keeps loaded clouds in memory with LRU eviction.
//
// Batch workflows touch the same core-point clouds repeatedly (feature
// extraction, then training, then prediction); the cache avoids re-decoding
// them while bounding memory. Memory accounting is an estimate from the
// matrix shape, not a precise heap measurement.
//
// Example:
//
//	cache := sbf.NewCloudCache(512 * 1024 * 1024)
//	cloud, err := cache.Get(path, func() (*Cloud, error) {
//	    return sbf.Read(path)
//	})
type CloudCache struct {
	maxMemory  int64
	usedMemory int64
	clouds     map[string]*cacheEntry
	lru        *list.List
	mu         sync.RWMutex

	hits   int
	misses int
}

type cacheEntry struct {
	path         string
	cloud        *Cloud
	memorySize   int64
	element      *list.Element
	lastAccessed time.Time
}

// NewCloudCache creates a cache with the given memory limit in bytes.
// A limit of 0 means unbounded.
func NewCloudCache(maxMemoryBytes int64) *CloudCache {
	return &CloudCache{
		maxMemory: maxMemoryBytes,
		clouds:    make(map[string]*cacheEntry),
		lru:       list.New(),
	}
}

// Get returns the cached cloud for path, or calls load on a miss and caches
// the result. Load errors are returned unwrapped-able via %w.
func (c *CloudCache) Get(path string, load func() (*Cloud, error)) (*Cloud, error) {
	c.mu.RLock()
	entry, ok := c.clouds[path]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		entry.lastAccessed = time.Now()
		c.lru.MoveToFront(entry.element)
		c.hits++
		c.mu.Unlock()
		return entry.cloud, nil
	}

	cloud, err := load()
	if err != nil {
		return nil, fmt.Errorf("load cloud: %w", err)
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()

	// A cloud too large to cache is still returned, just never kept.
	c.Add(path, cloud)
	return cloud, nil
}

// Add inserts a cloud, evicting least-recently-used entries to make room.
// Returns false if the cloud alone exceeds the memory limit.
func (c *CloudCache) Add(path string, cloud *Cloud) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.clouds[path]; ok {
		entry.cloud = cloud
		entry.lastAccessed = time.Now()
		c.lru.MoveToFront(entry.element)
		return true
	}

	memSize := estimateCloudMemory(cloud)
	if c.maxMemory > 0 && memSize > c.maxMemory {
		return false
	}
	if c.maxMemory > 0 {
		for c.usedMemory+memSize > c.maxMemory && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{
		path:         path,
		cloud:        cloud,
		memorySize:   memSize,
		lastAccessed: time.Now(),
	}
	entry.element = c.lru.PushFront(entry)
	c.clouds[path] = entry
	c.usedMemory += memSize
	return true
}

// Remove drops a cached cloud, if present.
func (c *CloudCache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.clouds[path]; ok {
		c.lru.Remove(entry.element)
		delete(c.clouds, path)
		c.usedMemory -= entry.memorySize
	}
}

// Len returns the number of cached clouds.
func (c *CloudCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clouds)
}

// UsedMemory returns the current memory estimate in bytes.
func (c *CloudCache) UsedMemory() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.usedMemory
}

// Stats returns cache hit and miss counts.
func (c *CloudCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// evictLRU removes the least recently used cloud. Caller holds c.mu.
func (c *CloudCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.clouds, entry.path)
	c.usedMemory -= entry.memorySize
}

// estimateCloudMemory approximates a cloud's in-memory footprint:
// three float64 coordinates plus one float32 per scalar field per point.
func estimateCloudMemory(c *Cloud) int64 {
	rows := int64(c.PointCount())
	return rows*(3*8+int64(c.FieldCount())*4) + 1024
}
