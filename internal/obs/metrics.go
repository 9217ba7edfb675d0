package obs

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	metricFilesScanned = "polyglotscan.files.scanned"
	metricCommitsRead  = "polyglotscan.commits.read"
	metricErrorsTotal  = "polyglotscan.errors.total"
	metricScanDuration = "polyglotscan.scan.duration.seconds"
)

// Metrics holds the scan's counters and histogram, backed by a pull-based
// Prometheus registry rather than a push exporter: a one-shot CLI has no
// running collector to push to (see DESIGN.md).
type Metrics struct {
	registry     *prometheus.Registry
	provider     *sdkmetric.MeterProvider
	FilesScanned metric.Int64Counter
	CommitsRead  metric.Int64Counter
	ErrorsTotal  metric.Int64Counter
	ScanDuration metric.Float64Histogram
}

// NewMetrics builds the run's instruments against a fresh Prometheus
// registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprometheus.New(otelprometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("polyglotscan")

	filesScanned, err := meter.Int64Counter(metricFilesScanned,
		metric.WithDescription("Total files visited by the walker"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesScanned, err)
	}

	commitsRead, err := meter.Int64Counter(metricCommitsRead,
		metric.WithDescription("Total commits read from the git log"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsRead, err)
	}

	errorsTotal, err := meter.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total recoverable errors encountered during the scan"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	scanDuration, err := meter.Float64Histogram(metricScanDuration,
		metric.WithDescription("Wall-clock duration of the scan"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricScanDuration, err)
	}

	return &Metrics{
		registry:     registry,
		provider:     provider,
		FilesScanned: filesScanned,
		CommitsRead:  commitsRead,
		ErrorsTotal:  errorsTotal,
		ScanDuration: scanDuration,
	}, nil
}

// WriteExposition renders the collected metrics in Prometheus text exposition
// format, for a `--metrics-out` flag consumers can scrape offline from a
// one-shot run.
func (m *Metrics) WriteExposition(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	encoder := expfmt.NewEncoder(w, expfmt.FmtText)

	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return fmt.Errorf("encode metric family: %w", err)
		}
	}

	return nil
}

// Shutdown flushes the meter provider. Safe to call even if metrics were
// never read.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if err := m.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}

	return nil
}
