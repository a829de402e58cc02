package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgnsrekt/stylecache/internal/cache"
	"github.com/dgnsrekt/stylecache/internal/storage/sqlite"
)

// OpenStore opens the configured durable tier. It returns a nil Store for
// the "none" backend.
func (c Config) OpenStore() (cache.Store, error) {
	if c.Durable.Backend == BackendNone {
		return nil, nil
	}

	path, err := c.DurablePath()
	if err != nil {
		return nil, err
	}

	switch c.Durable.Backend {
	case BackendDisk:
		ds, err := cache.NewDiskStore(path, c.Durable.Namespace, c.Durable.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("unable to open disk store: %w", err)
		}
		return ds, nil

	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec
			return nil, fmt.Errorf("unable to create directory: %w", err)
		}
		s, err := sqlite.Open(path, c.Durable.Namespace)
		if err != nil {
			return nil, fmt.Errorf("unable to open sqlite store: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown durable backend %q", c.Durable.Backend)
	}
}
