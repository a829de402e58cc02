package stylecache

import (
	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/dgnsrekt/stylecache/internal/cache"
	"github.com/dgnsrekt/stylecache/internal/style"
)

// Option configures a Cache.
type Option func(*options)

type options struct {
	capacity int
	store    cache.Store
	platform style.Platform
	logger   *log.Logger
	meter    metric.Meter
}

// WithCapacity bounds the number of handles held in memory.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithStore enables the durable tier. A nil store keeps the cache
// volatile-only.
func WithStore(s cache.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithPlatform sets the platform used to resolve conditional branches.
// Defaults to style.HostPlatform().
func WithPlatform(p style.Platform) Option {
	return func(o *options) {
		o.platform = p
	}
}

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMeter sets the meter lookups are recorded with. Defaults to the
// global meter provider.
func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}
