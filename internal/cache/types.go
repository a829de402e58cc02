package cache

import (
	"errors"
	"time"
)

const (
	// DefaultCapacity is the default number of handles kept in memory.
	DefaultCapacity = 500

	// DefaultNamespace scopes durable entries so they never collide with
	// unrelated persisted data.
	DefaultNamespace = "stylecache"

	// DefaultCompressionLevel is the zstd level used by DiskStore.
	DefaultCompressionLevel = 3
)

// Common errors for cache operations
var (
	// ErrCacheCorrupted is returned when cache data is corrupted
	ErrCacheCorrupted = errors.New("cache data corrupted")

	// ErrStoreClosed is returned when a durable store is used after Close
	ErrStoreClosed = errors.New("store closed")

	// ErrInvalidKey is returned for empty or malformed keys
	ErrInvalidKey = errors.New("invalid cache key")
)

// CacheLevel represents the cache tier
type CacheLevel int

const (
	// CacheLevelNone means no tier answered (cold path or passthrough)
	CacheLevelNone CacheLevel = iota

	// CacheLevelVolatile represents the in-memory handle cache
	CacheLevelVolatile

	// CacheLevelDurable represents the persistent style store
	CacheLevelDurable
)

// String returns the string representation of the cache level
func (l CacheLevel) String() string {
	switch l {
	case CacheLevelNone:
		return "None"
	case CacheLevelVolatile:
		return "Volatile"
	case CacheLevelDurable:
		return "Durable"
	default:
		return "Unknown"
	}
}

// CacheStats holds cache performance metrics
type CacheStats struct {
	// Configuration
	Capacity int // Maximum number of entries (0 for unbounded)

	// Current state
	ItemCount int   // Number of items in cache
	Size      int64 // Bytes on disk, durable tiers only

	// Performance metrics
	Hits      int64   // Number of cache hits
	Misses    int64   // Number of cache misses
	Evictions int64   // Number of evictions
	Writes    int64   // Number of stores
	HitRate   float64 // Calculated hit rate (hits / (hits + misses))

	// Timing
	LastAccess time.Time // Last access time
	LastEvict  time.Time // Last eviction time
}

func (s *CacheStats) computeHitRate() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// CacheMetadata contains metadata about a cached item
type CacheMetadata struct {
	Key        string     // Cache key
	Size       int64      // Size in bytes, durable tiers only
	Timestamp  time.Time  // When item was cached
	LastAccess time.Time  // Last access time
	Hits       int64      // Number of times accessed
	Level      CacheLevel // Which cache level this is from
}

// Store is the durable tier: a persistent string-keyed store of serialized
// normalized styles, scoped to a private namespace. It never holds handles.
//
// Implementations must treat unreadable entries as absent rather than
// failing lookups.
type Store interface {
	// Contains reports whether key has a stored value.
	Contains(key string) bool

	// Get returns the stored value for key.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// ClearAll removes every entry in the namespace.
	ClearAll() error

	// Close releases resources held by the store.
	Close() error
}

// StatsProvider is implemented by stores that track statistics.
type StatsProvider interface {
	Stats() CacheStats
}
