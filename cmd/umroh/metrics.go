package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/MrEthical07/goUmroh/metrics/export/otel"
	"github.com/MrEthical07/goUmroh/metrics/export/prometheus"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// runMetrics restores the session, calls the backend once and prints the
// resulting client metrics.
func runMetrics(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("metrics", flag.ContinueOnError)
	format := fs.String("format", "prometheus", "prometheus or otel")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	c, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, ok := c.CurrentUser(); ok {
		if _, err := c.API().Bookings.List(ctx); err != nil {
			return err
		}
	}

	switch *format {
	case "prometheus":
		fmt.Fprint(a.out, prometheus.NewPrometheusExporter(c).Render())
		return nil
	case "otel":
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = provider.Shutdown(context.Background()) }()

		exp, err := otel.NewOTelExporter(provider.Meter("umroh-cli"), c)
		if err != nil {
			return err
		}
		defer exp.Close()

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			return err
		}
		for _, line := range otelLines(rm) {
			fmt.Fprintln(a.out, line)
		}
		return nil
	default:
		return errUsage
	}
}

func otelLines(rm metricdata.ResourceMetrics) []string {
	var lines []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					lines = append(lines, otelLine(m.Name, dp.Attributes, dp.Value))
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					lines = append(lines, otelLine(m.Name, dp.Attributes, dp.Value))
				}
			}
		}
	}
	sort.Strings(lines)
	return lines
}

func otelLine(name string, attrs attribute.Set, value int64) string {
	if attrs.Len() == 0 {
		return fmt.Sprintf("%s %d", name, value)
	}
	return fmt.Sprintf("%s{%s} %d", name, attrs.Encoded(attribute.DefaultEncoder()), value)
}
