package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	alertMeterName = "alert.scheduler"
)

type AlertMetrics struct {
	eventsRaised       metric.Int64Counter
	eventsCleared      metric.Int64Counter
	eventsAcknowledged metric.Int64Counter
	tickDuration       metric.Float64Histogram
	tickFailures       metric.Int64Counter
	statusDistribution metric.Int64Counter
}

func NewAlertMetrics() (*AlertMetrics, error) {
	meter := otel.Meter(alertMeterName)

	eventsRaised, err := meter.Int64Counter(
		"alert_events_raised_total",
		metric.WithDescription("Total number of alert events raised"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	eventsCleared, err := meter.Int64Counter(
		"alert_events_cleared_total",
		metric.WithDescription("Total number of alert events cleared"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	eventsAcknowledged, err := meter.Int64Counter(
		"alert_events_acknowledged_total",
		metric.WithDescription("Total number of alert events acknowledged by operators"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	tickDuration, err := meter.Float64Histogram(
		"alert_tick_duration_seconds",
		metric.WithDescription("Duration of one scheduler tick including the store fetch"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
		),
	)
	if err != nil {
		return nil, err
	}

	tickFailures, err := meter.Int64Counter(
		"alert_tick_failures_total",
		metric.WithDescription("Ticks whose store fetch failed and retained the previous live set"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, err
	}

	statusDistribution, err := meter.Int64Counter(
		"alert_status_distribution_total",
		metric.WithDescription("Distribution of classified tag statuses per tick"),
		metric.WithUnit("{tag}"),
	)
	if err != nil {
		return nil, err
	}

	return &AlertMetrics{
		eventsRaised:       eventsRaised,
		eventsCleared:      eventsCleared,
		eventsAcknowledged: eventsAcknowledged,
		tickDuration:       tickDuration,
		tickFailures:       tickFailures,
		statusDistribution: statusDistribution,
	}, nil
}

func (m *AlertMetrics) RecordRaised(ctx context.Context, severity, scope string, sound bool) {
	m.eventsRaised.Add(ctx, 1, metric.WithAttributes(
		attribute.String("severity", severity),
		attribute.String("scope", scope),
		attribute.Bool("sound", sound),
	))
}

func (m *AlertMetrics) RecordCleared(ctx context.Context, severity, scope string) {
	m.eventsCleared.Add(ctx, 1, metric.WithAttributes(
		attribute.String("severity", severity),
		attribute.String("scope", scope),
	))
}

func (m *AlertMetrics) RecordAcknowledged(ctx context.Context, severity, scope string) {
	m.eventsAcknowledged.Add(ctx, 1, metric.WithAttributes(
		attribute.String("severity", severity),
		attribute.String("scope", scope),
	))
}

func (m *AlertMetrics) RecordTickDuration(ctx context.Context, scope string, duration time.Duration) {
	m.tickDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("scope", scope),
	))
}

func (m *AlertMetrics) RecordTickFailure(ctx context.Context, scope string) {
	m.tickFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
	))
}

func (m *AlertMetrics) RecordStatus(ctx context.Context, status string) {
	m.statusDistribution.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}
