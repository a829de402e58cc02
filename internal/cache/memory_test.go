package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/stylecache/internal/style"
)

type testHandle int64

func (h testHandle) HandleID() int64 { return int64(h) }

func key(i int) style.Fingerprint {
	return style.Fingerprint(fmt.Sprintf("key-%d", i))
}

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(10)

	k := style.Fingerprint("test-key")
	cache.Set(k, testHandle(7))

	retrieved, ok := cache.Get(k)
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if retrieved.HandleID() != 7 {
		t.Errorf("Retrieved handle mismatch: got %d, want 7", retrieved.HandleID())
	}

	if !cache.Has(k) {
		t.Error("Has returned false for existing key")
	}
	if cache.Len() != 1 {
		t.Errorf("Len mismatch: got %d, want 1", cache.Len())
	}

	cache.Delete(k)
	if cache.Has(k) {
		t.Error("Key still exists after delete")
	}
	if cache.Len() != 0 {
		t.Errorf("Len not zero after delete: %d", cache.Len())
	}
}

func TestMemoryCache_DefaultCapacity(t *testing.T) {
	cache := NewMemoryCache(0)
	if cache.Capacity() != DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", cache.Capacity(), DefaultCapacity)
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	cache := NewMemoryCache(5)

	for i := 0; i < 5; i++ {
		cache.Set(key(i), testHandle(i))
	}

	// Access key-0 and key-1 to make them recently used
	cache.Get(key(0))
	cache.Get(key(1))

	// Inserting a sixth entry evicts the least recently used one
	cache.Set(key(5), testHandle(5))

	if cache.Has(key(2)) {
		t.Error("key-2 should have been evicted")
	}
	if !cache.Has(key(0)) {
		t.Error("key-0 should not have been evicted")
	}
	if !cache.Has(key(1)) {
		t.Error("key-1 should not have been evicted")
	}
	if cache.Len() != 5 {
		t.Errorf("Len = %d, want 5", cache.Len())
	}
	if cache.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", cache.Stats().Evictions)
	}
}

func TestMemoryCache_EvictsOldestWithoutAccess(t *testing.T) {
	const n = 3
	cache := NewMemoryCache(n)

	for i := 0; i <= n; i++ {
		cache.Set(key(i), testHandle(i))
	}

	if cache.Has(key(0)) {
		t.Error("first inserted key should be evicted after N+1 inserts")
	}
	for i := 1; i <= n; i++ {
		if !cache.Has(key(i)) {
			t.Errorf("key-%d should be present", i)
		}
	}
}

func TestMemoryCache_HasDoesNotBumpRecency(t *testing.T) {
	cache := NewMemoryCache(2)

	cache.Set(key(0), testHandle(0))
	cache.Set(key(1), testHandle(1))

	cache.Has(key(0))
	cache.Set(key(2), testHandle(2))

	if cache.Has(key(0)) {
		t.Error("Has should not protect key-0 from eviction")
	}
}

func TestMemoryCache_UpdateExisting(t *testing.T) {
	cache := NewMemoryCache(10)

	k := style.Fingerprint("update-key")
	cache.Set(k, testHandle(1))
	cache.Set(k, testHandle(2))

	retrieved, ok := cache.Get(k)
	if !ok {
		t.Fatal("Key not found after update")
	}
	if retrieved.HandleID() != 2 {
		t.Errorf("Handle not updated: got %d, want 2", retrieved.HandleID())
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(10)

	for i := 0; i < 5; i++ {
		cache.Set(key(i), testHandle(i))
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("Len not zero after clear: %d", cache.Len())
	}
	for i := 0; i < 5; i++ {
		if cache.Has(key(i)) {
			t.Errorf("Key %s still exists after clear", key(i))
		}
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := NewMemoryCache(10)

	stats := cache.Stats()
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Error("Initial stats should be zero")
	}

	cache.Set(key(1), testHandle(1))
	cache.Get(key(1)) // Hit
	cache.Get(key(2)) // Miss

	stats = cache.Stats()
	if stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("Expected hit rate 0.5, got %f", stats.HitRate)
	}
	if stats.ItemCount != 1 {
		t.Errorf("Expected 1 item, got %d", stats.ItemCount)
	}
}

func TestMemoryCache_GetLRUEntries(t *testing.T) {
	cache := NewMemoryCache(10)

	for i := 0; i < 5; i++ {
		cache.Set(key(i), testHandle(i))
	}

	// Access some items to change LRU order
	cache.Get(key(0))
	cache.Get(key(1))

	lruEntries := cache.GetLRUEntries(3)
	if len(lruEntries) != 3 {
		t.Fatalf("Expected 3 LRU entries, got %d", len(lruEntries))
	}

	expectedKeys := []string{"key-2", "key-3", "key-4"}
	for i, entry := range lruEntries {
		if entry.Key != expectedKeys[i] {
			t.Errorf("LRU entry %d: expected key %s, got %s", i, expectedKeys[i], entry.Key)
		}
		if entry.Level != CacheLevelVolatile {
			t.Errorf("LRU entry %d: level %v", i, entry.Level)
		}
	}

	keys := cache.Keys()
	if keys[0] != key(1) || keys[1] != key(0) {
		t.Errorf("Keys should list most recently used first, got %v", keys)
	}
}

func TestMemoryCache_Resize(t *testing.T) {
	cache := NewMemoryCache(5)

	for i := 0; i < 5; i++ {
		cache.Set(key(i), testHandle(i))
	}

	cache.Resize(2)
	if cache.Len() != 2 {
		t.Errorf("Len exceeds new capacity: %d > 2", cache.Len())
	}
	if !cache.Has(key(4)) || !cache.Has(key(3)) {
		t.Error("Resize should keep the most recently used entries")
	}

	cache.Resize(20)
	for i := 10; i < 25; i++ {
		cache.Set(key(i), testHandle(i))
	}
	if cache.Len() != 20 {
		t.Errorf("Len = %d, want 20", cache.Len())
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache(50)

	var wg sync.WaitGroup

	// Multiple writers
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				cache.Set(style.Fingerprint(fmt.Sprintf("writer-%d-key-%d", id, j)), testHandle(j))
			}
		}(i)
	}

	// Multiple readers
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				// Some reads might miss if write hasn't happened yet
				cache.Get(style.Fingerprint(fmt.Sprintf("writer-%d-key-%d", id, j)))
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out")
	}

	if cache.Len() > 50 {
		t.Errorf("Len %d exceeds capacity", cache.Len())
	}
}

// Benchmark tests
func BenchmarkMemoryCache_Set(b *testing.B) {
	cache := NewMemoryCache(DefaultCapacity)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Set(key(i), testHandle(i))
	}
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	cache := NewMemoryCache(DefaultCapacity)

	for i := 0; i < DefaultCapacity; i++ {
		cache.Set(key(i), testHandle(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get(key(i % DefaultCapacity))
	}
}
