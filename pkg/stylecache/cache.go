package stylecache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/dgnsrekt/stylecache/internal/cache"
	"github.com/dgnsrekt/stylecache/internal/style"
)

// ErrNilRegistrar is returned by New without a registrar.
var ErrNilRegistrar = errors.New("stylecache: registrar is nil")

// Registrar turns a normalized style into a render-ready handle. It is the
// host UI layer's registration primitive; calls may be expensive.
type Registrar interface {
	Register(n style.Normalized) (style.Handle, error)
}

// RegistrarFunc adapts a function to Registrar.
type RegistrarFunc func(n style.Normalized) (style.Handle, error)

// Register calls f(n).
func (f RegistrarFunc) Register(n style.Normalized) (style.Handle, error) { return f(n) }

// Result is the outcome of a lookup.
type Result struct {
	Kind        style.InputKind   // Variant of the input
	Ref         int64             // Set for passthrough references
	Handle      style.Handle      // Set for handles and descriptors
	Fingerprint style.Fingerprint // Empty for passthroughs
	Level       cache.CacheLevel  // Tier that answered; CacheLevelNone on the cold path
}

// Value returns what the render layer consumes: the reference for numeric
// passthroughs, otherwise the handle.
func (r Result) Value() any {
	if r.Kind == style.KindRef {
		return r.Ref
	}
	return r.Handle
}

// Stats holds per-tier lookup counters.
type Stats struct {
	VolatileHits  int64
	DurableHits   int64
	Misses        int64
	Registrations int64
	Passthroughs  int64
	Volatile      cache.CacheStats
	Durable       *cache.CacheStats // nil without a durable tier or stats support
}

// Cache memoizes registered styles in a volatile tier and, optionally, a
// durable tier. It is safe for concurrent use.
type Cache struct {
	registrar Registrar
	volatile  *cache.MemoryCache
	durable   cache.Store
	platform  style.Platform
	logger    *log.Logger
	metrics   *metrics

	// Collapses concurrent misses on one fingerprint into one registration
	flight singleflight.Group

	mu    sync.Mutex
	stats Stats
}

type lookup struct {
	handle style.Handle
	level  cache.CacheLevel
}

// New creates a cache that registers styles with reg.
func New(reg Registrar, opts ...Option) (*Cache, error) {
	if reg == nil {
		return nil, ErrNilRegistrar
	}

	o := options{capacity: cache.DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.platform == nil {
		o.platform = style.HostPlatform()
	}
	if o.logger == nil {
		o.logger = log.Default()
	}

	m, err := newMetrics(o.meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	return &Cache{
		registrar: reg,
		volatile:  cache.NewMemoryCache(o.capacity),
		durable:   o.store,
		platform:  o.platform,
		logger:    o.logger.WithPrefix("stylecache"),
		metrics:   m,
	}, nil
}

// Platform returns the platform conditionals are resolved for.
func (c *Cache) Platform() style.Platform { return c.platform }

// GetStyle returns a render-ready value for in under theme (the default
// theme when empty).
//
// Numeric references are returned untouched. Registered handles are
// returned untouched with a warning, since they cannot be fingerprinted.
// Descriptors are normalized and fingerprinted, then answered from memory,
// re-registered from the durable tier, or registered and stored in both.
// Registrar errors are returned unmodified.
func (c *Cache) GetStyle(in style.Input, theme string) (Result, error) {
	if theme == "" {
		theme = style.DefaultTheme
	}

	switch in.Kind() {
	case style.KindRef:
		c.count(func(s *Stats) { s.Passthroughs++ })
		c.metrics.lookup(tierPassthrough, theme)
		return Result{Kind: style.KindRef, Ref: in.RefID()}, nil

	case style.KindHandle:
		c.logger.Warn("cannot persist a pre-cached style id", "handle", in.Handle().HandleID())
		c.count(func(s *Stats) { s.Passthroughs++ })
		c.metrics.lookup(tierPassthrough, theme)
		return Result{Kind: style.KindHandle, Handle: in.Handle()}, nil

	case style.KindDescriptor, style.KindNone:
		return c.resolve(in.Descriptor(), theme)

	default:
		return Result{}, fmt.Errorf("stylecache: unsupported input kind %v", in.Kind())
	}
}

// GetStyles applies GetStyle to every entry of styles, skipping zero
// inputs. The result has the same keys as the input minus skipped ones.
func (c *Cache) GetStyles(styles map[string]style.Input, theme string) (map[string]Result, error) {
	out := make(map[string]Result, len(styles))
	for name, in := range styles {
		if in.IsZero() {
			continue
		}
		res, err := c.GetStyle(in, theme)
		if err != nil {
			return nil, fmt.Errorf("style %q: %w", name, err)
		}
		out[name] = res
	}
	return out, nil
}

// PrewarmStyles resolves each input for its side effect of populating the
// cache tiers.
func (c *Cache) PrewarmStyles(styles []style.Input, theme string) error {
	for i, in := range styles {
		if _, err := c.GetStyle(in, theme); err != nil {
			return fmt.Errorf("prewarm style %d: %w", i, err)
		}
	}
	return nil
}

// ClearStyleCache empties the volatile tier and, when configured, the whole
// durable tier.
func (c *Cache) ClearStyleCache() error {
	c.volatile.Clear()
	if c.durable == nil {
		return nil
	}
	if err := c.durable.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear durable tier: %w", err)
	}
	c.logger.Debug("cleared style cache")
	return nil
}

// Contains reports which tier, if any, holds fp.
func (c *Cache) Contains(fp style.Fingerprint) cache.CacheLevel {
	if c.volatile.Has(fp) {
		return cache.CacheLevelVolatile
	}
	if c.durable != nil && c.durable.Contains(string(fp)) {
		return cache.CacheLevelDurable
	}
	return cache.CacheLevelNone
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	stats := c.stats
	c.mu.Unlock()

	stats.Volatile = c.volatile.Stats()
	if sp, ok := c.durable.(cache.StatsProvider); ok {
		ds := sp.Stats()
		stats.Durable = &ds
	}
	return stats
}

// Close closes the durable tier.
func (c *Cache) Close() error {
	if c.durable == nil {
		return nil
	}
	if err := c.durable.Close(); err != nil {
		return fmt.Errorf("failed to close durable tier: %w", err)
	}
	return nil
}

// Private helper methods

func (c *Cache) resolve(desc any, theme string) (Result, error) {
	normalized, err := style.Normalize(desc, c.platform)
	if err != nil {
		return Result{}, fmt.Errorf("normalize style: %w", err)
	}

	fp, err := style.Sum(normalized, theme)
	if err != nil {
		return Result{}, fmt.Errorf("fingerprint style: %w", err)
	}

	// Fast path
	if h, ok := c.volatile.Get(fp); ok {
		c.count(func(s *Stats) { s.VolatileHits++ })
		c.metrics.lookup(tierVolatile, theme)
		return Result{Kind: style.KindDescriptor, Handle: h, Fingerprint: fp, Level: cache.CacheLevelVolatile}, nil
	}

	v, err, _ := c.flight.Do(string(fp), func() (any, error) {
		// Another caller may have finished registering while we waited
		if c.volatile.Has(fp) {
			if h, ok := c.volatile.Get(fp); ok {
				return lookup{handle: h, level: cache.CacheLevelVolatile}, nil
			}
		}

		if h, ok, err := c.rehydrate(fp); err != nil || ok {
			return lookup{handle: h, level: cache.CacheLevelDurable}, err
		}

		h, err := c.register(fp, normalized)
		return lookup{handle: h, level: cache.CacheLevelNone}, err
	})
	if err != nil {
		return Result{}, err
	}

	l := v.(lookup)
	switch l.level {
	case cache.CacheLevelVolatile:
		c.count(func(s *Stats) { s.VolatileHits++ })
		c.metrics.lookup(tierVolatile, theme)
	case cache.CacheLevelDurable:
		c.count(func(s *Stats) { s.DurableHits++ })
		c.metrics.lookup(tierDurable, theme)
	default:
		c.count(func(s *Stats) { s.Misses++ })
		c.metrics.lookup(tierMiss, theme)
	}

	return Result{Kind: style.KindDescriptor, Handle: l.handle, Fingerprint: fp, Level: l.level}, nil
}

// rehydrate re-registers a style found in the durable tier. A missing,
// unreadable or undecodable entry is a miss, never an error.
func (c *Cache) rehydrate(fp style.Fingerprint) (style.Handle, bool, error) {
	if c.durable == nil || !c.durable.Contains(string(fp)) {
		return nil, false, nil
	}

	raw, ok := c.durable.Get(string(fp))
	if !ok {
		return nil, false, nil
	}

	stored, err := style.Decode(raw)
	if err != nil {
		c.metrics.storeError("decode")
		c.logger.Debug("ignoring unreadable durable entry", "fingerprint", fp.Short(), "err", err)
		return nil, false, nil
	}

	h, err := c.registrar.Register(stored)
	if err != nil {
		return nil, false, err
	}
	c.count(func(s *Stats) { s.Registrations++ })
	c.metrics.registered(tierDurable)

	c.volatile.Set(fp, h)
	c.logger.Debug("rehydrated style from durable tier", "fingerprint", fp.Short())
	return h, true, nil
}

// register is the cold path: register, then populate both tiers. Durable
// write failures only cost a future re-normalization, so they are logged.
func (c *Cache) register(fp style.Fingerprint, n style.Normalized) (style.Handle, error) {
	h, err := c.registrar.Register(n)
	if err != nil {
		return nil, err
	}
	c.count(func(s *Stats) { s.Registrations++ })
	c.metrics.registered(tierMiss)

	c.volatile.Set(fp, h)

	if c.durable == nil {
		return h, nil
	}

	raw, err := n.Encode()
	if err == nil {
		err = c.durable.Set(string(fp), raw)
	}
	if err != nil {
		c.metrics.storeError("set")
		c.logger.Warn("could not persist style", "fingerprint", fp.Short(), "err", err)
	}
	return h, nil
}

func (c *Cache) count(fn func(*Stats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}
