// Package config loads stylecache settings from the config file, the
// environment and defaults.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/stylecache/internal/cache"
	"github.com/dgnsrekt/stylecache/internal/style"
)

// AppName names the config file, the env prefix and the user directories.
const AppName = "stylecache"

// EnvPrefix prefixes every environment variable, e.g. STYLECACHE_CAPACITY.
const EnvPrefix = "STYLECACHE_"

// Durable backends.
const (
	BackendDisk   = "disk"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Config contains all stylecache settings.
type Config struct {
	// Volatile tier size in entries
	Capacity int `yaml:"capacity" env:"CAPACITY"`

	// Platform conditionals resolve for; empty means the host platform
	Platform string `yaml:"platform" env:"PLATFORM"`

	// Theme used when a command does not pass one
	Theme string `yaml:"theme" env:"THEME"`

	Debug bool `yaml:"debug" env:"DEBUG"`

	Durable DurableConfig `yaml:"durable" envPrefix:"DURABLE_"`
}

// DurableConfig configures the durable tier.
type DurableConfig struct {
	Backend          string `yaml:"backend" env:"BACKEND"`
	Path             string `yaml:"path" env:"PATH"`
	Namespace        string `yaml:"namespace" env:"NAMESPACE"`
	CompressionLevel int    `yaml:"compression_level" env:"COMPRESSION_LEVEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Capacity: cache.DefaultCapacity,
		Theme:    style.DefaultTheme,
		Durable: DurableConfig{
			Backend:          BackendDisk,
			Namespace:        cache.DefaultNamespace,
			CompressionLevel: cache.DefaultCompressionLevel,
		},
	}
}

// Load builds the configuration. Values set in v override the defaults and
// STYLECACHE_* environment variables override both.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()

	if v != nil {
		if v.IsSet("capacity") {
			cfg.Capacity = v.GetInt("capacity")
		}
		if v.IsSet("platform") {
			cfg.Platform = v.GetString("platform")
		}
		if v.IsSet("theme") {
			cfg.Theme = v.GetString("theme")
		}
		if v.IsSet("debug") {
			cfg.Debug = v.GetBool("debug")
		}
		if v.IsSet("durable.backend") {
			cfg.Durable.Backend = v.GetString("durable.backend")
		}
		if v.IsSet("durable.path") {
			cfg.Durable.Path = v.GetString("durable.path")
		}
		if v.IsSet("durable.namespace") {
			cfg.Durable.Namespace = v.GetString("durable.namespace")
		}
		if v.IsSet("durable.compression_level") {
			cfg.Durable.CompressionLevel = v.GetInt("durable.compression_level")
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and normalizes case.
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1, got %d", c.Capacity)
	}

	validBackends := []string{BackendDisk, BackendSQLite, BackendNone}
	backendValid := false
	for _, b := range validBackends {
		if strings.EqualFold(c.Durable.Backend, b) {
			backendValid = true
			c.Durable.Backend = b
			break
		}
	}
	if !backendValid {
		return fmt.Errorf("invalid durable backend '%s': must be one of %v", c.Durable.Backend, validBackends)
	}

	// zstd levels: fastest, default, better, best
	if c.Durable.CompressionLevel < 0 || c.Durable.CompressionLevel > 4 {
		return fmt.Errorf("compression level must be between 0 and 4, got %d", c.Durable.CompressionLevel)
	}

	c.Platform = strings.ToLower(strings.TrimSpace(c.Platform))
	if c.Theme == "" {
		c.Theme = style.DefaultTheme
	}
	if c.Durable.Namespace == "" {
		c.Durable.Namespace = cache.DefaultNamespace
	}
	return nil
}

// StylePlatform returns the platform conditionals resolve for.
func (c Config) StylePlatform() style.Platform {
	if c.Platform == "" {
		return style.HostPlatform()
	}
	return style.StaticPlatform(c.Platform)
}

// DurablePath returns the expanded location of the durable tier. Without an
// explicit path it lives in the user cache directory: a directory for the
// disk backend, a database file for sqlite.
func (c Config) DurablePath() (string, error) {
	p := c.Durable.Path
	if p == "" {
		dir, err := gap.NewScope(gap.User, AppName).CacheDir()
		if err != nil {
			return "", fmt.Errorf("could not find cache directory: %w", err)
		}
		p = dir
		if c.Durable.Backend == BackendSQLite {
			p = filepath.Join(dir, AppName+".db")
		}
	}

	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("could not expand durable path: %w", err)
	}
	return expanded, nil
}
