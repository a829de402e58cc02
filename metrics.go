package main

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var meterProvider *sdkmetric.MeterProvider

// setupMetrics installs a meter provider for the named exporter. "stdout"
// prints the collected counters to w when the command finishes.
func setupMetrics(name string, w io.Writer) (metric.Meter, error) {
	switch name {
	case "stdout":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
		otel.SetMeterProvider(meterProvider)
		return meterProvider.Meter("stylecache"), nil

	case "none", "":
		return noop.NewMeterProvider().Meter("noop"), nil

	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", name)
	}
}

// shutdownMetrics flushes and stops the meter provider, if any.
func shutdownMetrics(ctx context.Context) error {
	if meterProvider == nil {
		return nil
	}
	err := meterProvider.Shutdown(ctx)
	meterProvider = nil
	if err != nil {
		return fmt.Errorf("metrics shutdown: %w", err)
	}
	return nil
}
