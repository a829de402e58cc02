package stylecache

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/dgnsrekt/stylecache/internal/registry"
	"github.com/dgnsrekt/stylecache/internal/style"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumBy totals an int64 counter's data points grouped by one attribute.
func sumBy(t *testing.T, m *metricdata.Metrics, key string) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}
	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(key))
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestMetrics_LookupsByTier(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	store := newMemStore()
	c, err := New(registry.NewSheet(),
		WithMeter(mp.Meter("test")),
		WithStore(store),
		WithLogger(log.New(io.Discard)),
	)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	in := style.Describe(style.Fragment{"color": "red"})
	_, _ = c.GetStyle(in, "")
	_, _ = c.GetStyle(in, "")
	_, _ = c.GetStyle(style.Ref(9), "")

	rm := collect(t, reader)

	lookups := findMetric(rm, "stylecache.lookups")
	if lookups == nil {
		t.Fatal("stylecache.lookups metric not found")
	}
	got := sumBy(t, lookups, "tier")
	if got[tierMiss] != 1 || got[tierVolatile] != 1 || got[tierPassthrough] != 1 {
		t.Errorf("lookups by tier = %v", got)
	}

	registrations := findMetric(rm, "stylecache.registrations")
	if registrations == nil {
		t.Fatal("stylecache.registrations metric not found")
	}
	if got := sumBy(t, registrations, "tier"); got[tierMiss] != 1 {
		t.Errorf("registrations by tier = %v", got)
	}
}

func TestMetrics_StoreErrors(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	store := newMemStore()
	store.setErr = errors.New("read-only file system")
	c, err := New(registry.NewSheet(),
		WithMeter(mp.Meter("test")),
		WithStore(store),
		WithLogger(log.New(io.Discard)),
	)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}

	if _, err := c.GetStyle(style.Describe(style.Fragment{"a": 1}), ""); err != nil {
		t.Fatalf("GetStyle failed: %v", err)
	}

	found := findMetric(collect(t, reader), "stylecache.store.errors")
	if found == nil {
		t.Fatal("stylecache.store.errors metric not found")
	}
	if got := sumBy(t, found, "op"); got["set"] != 1 {
		t.Errorf("store errors by op = %v", got)
	}
}
