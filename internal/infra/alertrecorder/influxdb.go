package alertrecorder

import (
	"context"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/freshtrack/tag-alerting/internal/domain"
)

type influxDBRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	bucket   string
	org      string
}

func NewRecorder(ctx context.Context, cfg *Config) (domain.AlertRecorder, error) {
	if cfg.Disabled {
		slog.InfoContext(ctx, "alert transition recording disabled")
		return NewNoopRecorder(), nil
	}

	if cfg.InfluxDBToken == "" || cfg.InfluxDBOrg == "" {
		slog.WarnContext(ctx, "InfluxDB token or org not configured, alert transition recording disabled",
			slog.String("url", cfg.InfluxDBURL),
		)
		return NewNoopRecorder(), nil
	}

	client := influxdb2.NewClient(cfg.InfluxDBURL, cfg.InfluxDBToken)
	writeAPI := client.WriteAPIBlocking(cfg.InfluxDBOrg, cfg.InfluxDBBucket)

	slog.InfoContext(ctx, "alert transition recorder initialized",
		slog.String("type", "influxdb"),
		slog.String("url", cfg.InfluxDBURL),
		slog.String("bucket", cfg.InfluxDBBucket),
	)

	return &influxDBRecorder{
		client:   client,
		writeAPI: writeAPI,
		bucket:   cfg.InfluxDBBucket,
		org:      cfg.InfluxDBOrg,
	}, nil
}

func (r *influxDBRecorder) RecordTransitions(ctx context.Context, records []domain.AlertTransitionRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		point := influxdb2.NewPoint(
			"alert_transition",
			map[string]string{
				"severity":   record.Severity,
				"transition": record.Transition,
				"scope":      record.Scope,
			},
			map[string]any{
				"event_id":      record.EventID,
				"tag_id":        record.TagID,
				"sound":         record.Sound,
				"occurred_unix": record.OccurredAt.Unix(),
			},
			time.Now(),
		)

		if err := r.writeAPI.WritePoint(ctx, point); err != nil {
			slog.WarnContext(ctx, "failed to write alert transition to InfluxDB",
				slog.String("error", err.Error()),
				slog.String("event_id", record.EventID),
				slog.String("transition", record.Transition),
			)
		}
	}

	return nil
}

func (r *influxDBRecorder) RecordTickResult(ctx context.Context, record domain.TickResultRecord) error {
	point := influxdb2.NewPoint(
		"alert_tick",
		map[string]string{
			"scope": record.Scope,
		},
		map[string]any{
			"active_tags":   record.ActiveTags,
			"live_events":   record.LiveEvents,
			"raised_count":  record.RaisedCount,
			"cleared_count": record.ClearedCount,
			"fetch_failed":  record.FetchFailed,
			"tick_unix":     record.TickAt.Unix(),
		},
		time.Now(),
	)

	if err := r.writeAPI.WritePoint(ctx, point); err != nil {
		slog.WarnContext(ctx, "failed to write tick result to InfluxDB",
			slog.String("error", err.Error()),
			slog.String("scope", record.Scope),
		)
	}

	return nil
}

func (r *influxDBRecorder) Flush(ctx context.Context) error {
	return nil
}

func (r *influxDBRecorder) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	return nil
}
