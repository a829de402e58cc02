package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/dgnsrekt/stylecache/internal/style"
)

// MemoryCache is the volatile tier: a fixed number of registered handles
// keyed by fingerprint, with LRU eviction. Handles only live as long as the
// process that registered them, so nothing here is persisted.
type MemoryCache struct {
	capacity int // Maximum number of entries

	// LRU implementation
	items    map[style.Fingerprint]*list.Element
	eviction *list.List

	// Synchronization
	mu sync.Mutex

	// Metrics
	stats CacheStats
}

// memoryCacheEntry represents an entry in the memory cache
type memoryCacheEntry struct {
	key       style.Fingerprint
	handle    style.Handle
	timestamp time.Time
	hits      int64
}

// NewMemoryCache creates a new memory cache holding at most capacity handles.
// A non-positive capacity selects DefaultCapacity.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[style.Fingerprint]*list.Element),
		eviction: list.New(),
		stats: CacheStats{
			Capacity: capacity,
		},
	}
}

// Get retrieves a handle and marks it most recently used.
func (c *MemoryCache) Get(key style.Fingerprint) (style.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	// Move to front (most recently used)
	c.eviction.MoveToFront(elem)
	entry := elem.Value.(*memoryCacheEntry)
	entry.hits++

	c.stats.Hits++
	c.stats.LastAccess = time.Now()
	return entry.handle, true
}

// Set stores a handle, evicting the least recently used entry when full.
func (c *MemoryCache) Set(key style.Fingerprint, handle style.Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Writes++

	// Check if key already exists
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*memoryCacheEntry)
		entry.handle = handle
		entry.timestamp = time.Now()
		return
	}

	for c.eviction.Len() >= c.capacity {
		c.evictOldest()
	}

	entry := &memoryCacheEntry{
		key:       key,
		handle:    handle,
		timestamp: time.Now(),
	}
	c.items[key] = c.eviction.PushFront(entry)
}

// Has checks if a key exists in the cache without updating LRU.
func (c *MemoryCache) Has(key style.Fingerprint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Delete removes an entry from the cache.
func (c *MemoryCache) Delete(key style.Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[style.Fingerprint]*list.Element)
	c.eviction.Init()
}

// Len returns the number of cached handles.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.eviction.Len()
}

// Capacity returns the maximum number of entries.
func (c *MemoryCache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.capacity
}

// Keys returns all keys, most recently used first.
func (c *MemoryCache) Keys() []style.Fingerprint {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]style.Fingerprint, 0, c.eviction.Len())
	for elem := c.eviction.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*memoryCacheEntry).key)
	}
	return keys
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.ItemCount = len(c.items)
	stats.computeHitRate()
	return stats
}

// GetLRUEntries returns the n least recently used entries.
func (c *MemoryCache) GetLRUEntries(n int) []CacheMetadata {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]CacheMetadata, 0, n)

	// Start from the back (least recently used)
	elem := c.eviction.Back()
	for i := 0; i < n && elem != nil; i++ {
		entry := elem.Value.(*memoryCacheEntry)
		entries = append(entries, CacheMetadata{
			Key:       string(entry.key),
			Timestamp: entry.timestamp,
			Hits:      entry.hits,
			Level:     CacheLevelVolatile,
		})
		elem = elem.Prev()
	}

	return entries
}

// Resize changes the cache capacity, evicting as needed.
func (c *MemoryCache) Resize(newCapacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if newCapacity <= 0 {
		newCapacity = DefaultCapacity
	}
	c.capacity = newCapacity
	c.stats.Capacity = newCapacity

	for c.eviction.Len() > c.capacity {
		c.evictOldest()
	}
}

// evictOldest removes the least recently used item (must be called with lock held).
func (c *MemoryCache) evictOldest() {
	elem := c.eviction.Back()
	if elem != nil {
		c.removeElement(elem)
		c.stats.Evictions++
		c.stats.LastEvict = time.Now()
	}
}

// removeElement removes an element from the cache (must be called with lock held).
func (c *MemoryCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	entry := elem.Value.(*memoryCacheEntry)
	delete(c.items, entry.key)
}
