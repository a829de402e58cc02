package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	entryExt       = ".style"
	indexFile      = "store.index"
	compressAbove  = 256 // bytes; smaller payloads are written raw
	diskPermission = 0o755
)

// zstdMagic prefixes every zstd frame. Serialized styles are JSON objects
// and never start with it, so entries are self-describing.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// DiskStore is a durable Store keeping one file per entry under
// <dir>/<namespace>. Larger entries are zstd-compressed.
type DiskStore struct {
	basePath string

	// Compression
	compressionLevel int
	encoder          *zstd.Encoder
	decoder          *zstd.Decoder

	// Index of entry metadata; the files themselves are authoritative.
	index map[string]*diskStoreEntry
	size  int64

	// Synchronization
	mu     sync.RWMutex
	closed bool

	// Metrics
	stats CacheStats
}

// diskStoreEntry represents an entry in the disk store index
type diskStoreEntry struct {
	Key          string
	FilePath     string
	Size         int64 // Size on disk
	OriginalSize int64 // Serialized size before compression
	Timestamp    time.Time
	LastAccess   time.Time
	Hits         int64
	Compressed   bool
}

// NewDiskStore opens (creating if needed) a disk store at dir/namespace.
// A compressionLevel of zero disables compression.
func NewDiskStore(dir, namespace string, compressionLevel int) (*DiskStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("disk store directory is required")
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	basePath := filepath.Join(dir, namespace)
	if err := os.MkdirAll(basePath, diskPermission); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	ds := &DiskStore{
		basePath:         basePath,
		compressionLevel: compressionLevel,
		index:            make(map[string]*diskStoreEntry),
	}

	if compressionLevel > 0 {
		var err error
		ds.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}

	// The decoder is always available so entries written with compression
	// stay readable after it is turned off.
	var err error
	ds.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	// Non-fatal: a missing or unreadable index just starts empty
	if err := ds.loadIndex(); err != nil {
		ds.index = make(map[string]*diskStoreEntry)
	}
	ds.calculateSize()

	return ds, nil
}

// Path returns the namespace directory.
func (ds *DiskStore) Path() string { return ds.basePath }

// Contains reports whether key has a file on disk.
func (ds *DiskStore) Contains(key string) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed || key == "" {
		return false
	}
	return ds.lookup(key) != nil
}

// Get reads and, if needed, decompresses the entry for key. Unreadable
// entries are removed and reported as misses.
func (ds *DiskStore) Get(key string) ([]byte, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed || key == "" {
		return nil, false
	}

	entry := ds.lookup(key)
	if entry == nil {
		ds.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.FilePath)
	if err != nil {
		ds.drop(entry)
		ds.stats.Misses++
		return nil, false
	}

	if bytes.HasPrefix(data, zstdMagic) {
		decompressed, err := ds.decoder.DecodeAll(data, nil)
		if err != nil {
			ds.drop(entry)
			ds.stats.Misses++
			return nil, false
		}
		data = decompressed
	}

	entry.LastAccess = time.Now()
	entry.Hits++

	ds.stats.Hits++
	ds.stats.LastAccess = entry.LastAccess

	return data, true
}

// Set writes value for key atomically.
func (ds *DiskStore) Set(key string, value []byte) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return ErrStoreClosed
	}
	if key == "" {
		return ErrInvalidKey
	}

	dataToWrite := value
	compressed := false
	if ds.encoder != nil && len(value) > compressAbove {
		c := ds.encoder.EncodeAll(value, nil)
		// Only use compression if it actually reduces size
		if len(c) < len(value) {
			dataToWrite = c
			compressed = true
		}
	}

	filePath := ds.generateFilePath(key)
	if err := writeFileAtomic(filePath, dataToWrite); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}

	if existing, ok := ds.index[key]; ok {
		ds.size -= existing.Size
	}

	now := time.Now()
	ds.index[key] = &diskStoreEntry{
		Key:          key,
		FilePath:     filePath,
		Size:         int64(len(dataToWrite)),
		OriginalSize: int64(len(value)),
		Timestamp:    now,
		LastAccess:   now,
		Compressed:   compressed,
	}
	ds.size += int64(len(dataToWrite))
	ds.stats.Writes++

	return nil
}

// Delete removes a single entry.
func (ds *DiskStore) Delete(key string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if entry := ds.lookup(key); entry != nil {
		ds.drop(entry)
	}
	return nil
}

// ClearAll removes every entry file in the namespace, including ones the
// index does not know about.
func (ds *DiskStore) ClearAll() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return ErrStoreClosed
	}

	files, err := filepath.Glob(filepath.Join(ds.basePath, "*"+entryExt))
	if err != nil {
		return fmt.Errorf("failed to list store files: %w", err)
	}

	var errs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}

	ds.index = make(map[string]*diskStoreEntry)
	ds.size = 0

	if err := ds.saveIndex(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to clear store: %w", errors.Join(errs...))
	}
	return nil
}

// Len returns the number of indexed entries.
func (ds *DiskStore) Len() int {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return len(ds.index)
}

// Size returns the bytes used on disk by indexed entries.
func (ds *DiskStore) Size() int64 {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return ds.size
}

// Stats returns store statistics.
func (ds *DiskStore) Stats() CacheStats {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	stats := ds.stats
	stats.Size = ds.size
	stats.ItemCount = len(ds.index)
	stats.computeHitRate()
	return stats
}

// GetEntries returns metadata for every indexed entry.
func (ds *DiskStore) GetEntries() []CacheMetadata {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	result := make([]CacheMetadata, 0, len(ds.index))
	for _, entry := range ds.index {
		result = append(result, CacheMetadata{
			Key:        entry.Key,
			Size:       entry.OriginalSize,
			Timestamp:  entry.Timestamp,
			LastAccess: entry.LastAccess,
			Hits:       entry.Hits,
			Level:      CacheLevelDurable,
		})
	}
	return result
}

// Close saves the index and releases the codecs.
func (ds *DiskStore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.closed {
		return nil
	}
	ds.closed = true

	err := ds.saveIndex()
	if ds.encoder != nil {
		_ = ds.encoder.Close()
	}
	ds.decoder.Close()
	return err
}

// Private helper methods

// lookup returns the index entry for key, adopting files written by a
// process that exited before saving its index (must be called with lock held).
func (ds *DiskStore) lookup(key string) *diskStoreEntry {
	if entry, ok := ds.index[key]; ok {
		return entry
	}

	filePath := ds.generateFilePath(key)
	info, err := os.Stat(filePath)
	if err != nil {
		return nil
	}

	entry := &diskStoreEntry{
		Key:        key,
		FilePath:   filePath,
		Size:       info.Size(),
		Timestamp:  info.ModTime(),
		LastAccess: info.ModTime(),
	}
	ds.index[key] = entry
	ds.size += entry.Size
	return entry
}

// drop removes an entry and its file (must be called with lock held).
func (ds *DiskStore) drop(entry *diskStoreEntry) {
	_ = os.Remove(entry.FilePath)
	delete(ds.index, entry.Key)
	ds.size -= entry.Size
}

func (ds *DiskStore) generateFilePath(key string) string {
	// Use SHA256 hash of key for filename
	hash := sha256.Sum256([]byte(key))
	filename := hex.EncodeToString(hash[:16]) + entryExt
	return filepath.Join(ds.basePath, filename)
}

func writeFileAtomic(path string, data []byte) error {
	// Write to temp file first, then rename (atomic on most systems)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	return os.Rename(tempPath, path)
}

func (ds *DiskStore) loadIndex() error {
	file, err := os.Open(filepath.Join(ds.basePath, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No index file yet
		}
		return err
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&ds.index); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheCorrupted, err)
	}

	// Forget entries whose files are gone
	for key, entry := range ds.index {
		if _, err := os.Stat(entry.FilePath); err != nil {
			delete(ds.index, key)
		}
	}
	return nil
}

func (ds *DiskStore) saveIndex() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ds.index); err != nil {
		return fmt.Errorf("failed to encode store index: %w", err)
	}
	return writeFileAtomic(filepath.Join(ds.basePath, indexFile), buf.Bytes())
}

func (ds *DiskStore) calculateSize() {
	ds.size = 0
	for _, entry := range ds.index {
		ds.size += entry.Size
	}
}

var _ Store = (*DiskStore)(nil)
