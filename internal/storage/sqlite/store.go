package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/stylecache/internal/cache"
	"github.com/dgnsrekt/stylecache/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store is a durable cache.Store persisted in a SQLite database.
type Store struct {
	sqlDB     *sql.DB
	namespace string

	mu     sync.Mutex
	closed bool
	stats  cache.CacheStats
}

// Open opens a SQLite store at the provided path, scoped to namespace.
func Open(path, namespace string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if namespace == "" {
		namespace = cache.DefaultNamespace
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB, namespace: namespace}, nil
}

// Namespace returns the namespace entries are scoped to.
func (s *Store) Namespace() string { return s.namespace }

// Contains reports whether key has a stored value.
func (s *Store) Contains(key string) bool {
	if s.unusable() || key == "" {
		return false
	}

	var found int
	err := s.sqlDB.QueryRow(
		"SELECT 1 FROM style_entries WHERE namespace = ? AND key = ?",
		s.namespace, key,
	).Scan(&found)
	return err == nil
}

// Get returns the stored value for key. Read errors are reported as misses.
func (s *Store) Get(key string) ([]byte, bool) {
	if s.unusable() || key == "" {
		return nil, false
	}

	var value []byte
	err := s.sqlDB.QueryRow(
		"SELECT value FROM style_entries WHERE namespace = ? AND key = ?",
		s.namespace, key,
	).Scan(&value)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.stats.Misses++
		return nil, false
	}
	s.stats.Hits++
	s.stats.LastAccess = time.Now()
	return value, true
}

// Set stores value under key.
func (s *Store) Set(key string, value []byte) error {
	if s.unusable() {
		return cache.ErrStoreClosed
	}
	if key == "" {
		return cache.ErrInvalidKey
	}

	_, err := s.sqlDB.Exec(`
INSERT INTO style_entries (namespace, key, value, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, created_at = excluded.created_at`,
		s.namespace, key, value, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put style entry: %w", err)
	}

	s.mu.Lock()
	s.stats.Writes++
	s.mu.Unlock()
	return nil
}

// ClearAll removes every entry in the namespace.
func (s *Store) ClearAll() error {
	if s.unusable() {
		return cache.ErrStoreClosed
	}
	if _, err := s.sqlDB.Exec("DELETE FROM style_entries WHERE namespace = ?", s.namespace); err != nil {
		return fmt.Errorf("clear style entries: %w", err)
	}
	return nil
}

// Len returns the number of entries in the namespace.
func (s *Store) Len() (int, error) {
	if s.unusable() {
		return 0, cache.ErrStoreClosed
	}
	var n int
	err := s.sqlDB.QueryRow("SELECT COUNT(*) FROM style_entries WHERE namespace = ?", s.namespace).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count style entries: %w", err)
	}
	return n, nil
}

// Stats returns store statistics.
func (s *Store) Stats() cache.CacheStats {
	var size int64
	count, err := s.Len()
	if err == nil && !s.unusable() {
		_ = s.sqlDB.QueryRow(
			"SELECT COALESCE(SUM(LENGTH(value)), 0) FROM style_entries WHERE namespace = ?",
			s.namespace,
		).Scan(&size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.ItemCount = count
	stats.Size = size
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.sqlDB.Close()
}

func (s *Store) unusable() bool {
	if s == nil || s.sqlDB == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ cache.Store = (*Store)(nil)
