package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter exports bot metrics in Prometheus format and counts
// dispatcher outcomes as they happen
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *promclient.Registry
	collector     Collector

	meter           metric.Meter
	updatesCounter  metric.Int64Counter
	repliesCounter  metric.Int64Counter
	queueDepthGauge metric.Int64ObservableGauge
	webhookGauge    metric.Int64ObservableGauge
	pendingGauge    metric.Int64ObservableGauge
	dedupKeysGauge  metric.Int64ObservableGauge
	uptimeGauge     metric.Float64ObservableGauge
}

// NewOTelExporter creates a new exporter backed by its own Prometheus registry
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"telegram-ragbot",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		registry:      registry,
		collector:     collector,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.updatesCounter, err = oe.meter.Int64Counter(
		"ragbot.updates",
		metric.WithDescription("Inbound updates by dispatch result"),
		metric.WithUnit("{updates}"),
	)
	if err != nil {
		return fmt.Errorf("creating updates counter: %w", err)
	}

	oe.repliesCounter, err = oe.meter.Int64Counter(
		"ragbot.replies",
		metric.WithDescription("Outbound replies by outcome"),
		metric.WithUnit("{replies}"),
	)
	if err != nil {
		return fmt.Errorf("creating replies counter: %w", err)
	}

	oe.queueDepthGauge, err = oe.meter.Int64ObservableGauge(
		"ragbot.reply_queue.depth",
		metric.WithDescription("Number of replies waiting for a worker"),
		metric.WithUnit("{jobs}"),
		metric.WithInt64Callback(oe.observeQueueDepth),
	)
	if err != nil {
		return fmt.Errorf("creating queue depth gauge: %w", err)
	}

	oe.webhookGauge, err = oe.meter.Int64ObservableGauge(
		"ragbot.webhook.configured",
		metric.WithDescription("1 when a webhook is registered with the provider"),
		metric.WithInt64Callback(oe.observeWebhookConfigured),
	)
	if err != nil {
		return fmt.Errorf("creating webhook gauge: %w", err)
	}

	oe.pendingGauge, err = oe.meter.Int64ObservableGauge(
		"ragbot.webhook.pending",
		metric.WithDescription("Updates the provider has not delivered yet"),
		metric.WithUnit("{updates}"),
		metric.WithInt64Callback(oe.observePending),
	)
	if err != nil {
		return fmt.Errorf("creating pending updates gauge: %w", err)
	}

	oe.dedupKeysGauge, err = oe.meter.Int64ObservableGauge(
		"ragbot.dedup.keys",
		metric.WithDescription("Update IDs currently remembered for deduplication"),
		metric.WithUnit("{keys}"),
		metric.WithInt64Callback(oe.observeDedupKeys),
	)
	if err != nil {
		return fmt.Errorf("creating dedup keys gauge: %w", err)
	}

	oe.uptimeGauge, err = oe.meter.Float64ObservableGauge(
		"ragbot.uptime",
		metric.WithDescription("Time since the process started"),
		metric.WithUnit("s"),
		metric.WithFloat64Callback(oe.observeUptime),
	)
	if err != nil {
		return fmt.Errorf("creating uptime gauge: %w", err)
	}

	return nil
}

// ObserveUpdate counts one dispatched update
func (oe *OTelExporter) ObserveUpdate(ctx context.Context, result string) {
	oe.updatesCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

// ObserveReply counts one reply attempt
func (oe *OTelExporter) ObserveReply(ctx context.Context, outcome string) {
	oe.repliesCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

func (oe *OTelExporter) observeQueueDepth(ctx context.Context, observer metric.Int64Observer) error {
	depth, err := oe.collector.GetQueueDepth(ctx)
	if err != nil {
		return err
	}
	observer.Observe(depth)
	return nil
}

func (oe *OTelExporter) observeWebhookConfigured(ctx context.Context, observer metric.Int64Observer) error {
	state, err := oe.collector.GetWebhookState(ctx)
	if err != nil {
		return err
	}
	var v int64
	if state.Configured {
		v = 1
	}
	observer.Observe(v)
	return nil
}

func (oe *OTelExporter) observePending(ctx context.Context, observer metric.Int64Observer) error {
	state, err := oe.collector.GetWebhookState(ctx)
	if err != nil {
		return err
	}
	observer.Observe(state.PendingUpdates)
	return nil
}

func (oe *OTelExporter) observeDedupKeys(ctx context.Context, observer metric.Int64Observer) error {
	keys, err := oe.collector.GetDedupKeys(ctx)
	if err != nil {
		return err
	}
	observer.Observe(keys)
	return nil
}

func (oe *OTelExporter) observeUptime(ctx context.Context, observer metric.Float64Observer) error {
	uptime, err := oe.collector.GetUptime(ctx)
	if err != nil {
		return err
	}
	observer.Observe(uptime.Seconds())
	return nil
}

// ServeHTTP returns the handler that serves Prometheus-formatted metrics
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
