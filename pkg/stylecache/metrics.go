package stylecache

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/dgnsrekt/stylecache"

// Tier names recorded on stylecache.lookups.
const (
	tierVolatile    = "volatile"
	tierDurable     = "durable"
	tierMiss        = "miss"
	tierPassthrough = "passthrough"
)

type metrics struct {
	lookups       metric.Int64Counter
	registrations metric.Int64Counter
	storeErrors   metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	lookups, err := meter.Int64Counter(
		"stylecache.lookups",
		metric.WithDescription("Style lookups by the tier that answered them"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	registrations, err := meter.Int64Counter(
		"stylecache.registrations",
		metric.WithDescription("Calls made to the style registrar"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	storeErrors, err := meter.Int64Counter(
		"stylecache.store.errors",
		metric.WithDescription("Durable tier writes and reads that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		lookups:       lookups,
		registrations: registrations,
		storeErrors:   storeErrors,
	}, nil
}

func (m *metrics) lookup(tier, theme string) {
	m.lookups.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("tier", tier),
		attribute.String("theme", theme),
	))
}

func (m *metrics) registered(tier string) {
	m.registrations.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("tier", tier),
	))
}

func (m *metrics) storeError(op string) {
	m.storeErrors.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("op", op),
	))
}
