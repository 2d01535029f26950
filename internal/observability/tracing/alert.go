package tracing

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const alertTracerName = "github.com/freshtrack/tag-alerting/internal/service/alert"

func AlertTracer() trace.Tracer {
	return otel.Tracer(alertTracerName)
}

func StartTickSpan(ctx context.Context, scope string, tickAt time.Time) (context.Context, trace.Span) {
	return AlertTracer().Start(ctx, "alert.tick",
		trace.WithAttributes(
			attribute.String("alert.scope", scope),
			attribute.String("alert.tick_at", tickAt.Format(time.RFC3339)),
		),
	)
}

func StartAcknowledgeSpan(ctx context.Context, eventID, severity string) (context.Context, trace.Span) {
	return AlertTracer().Start(ctx, "alert.acknowledge",
		trace.WithAttributes(
			attribute.String("alert.event_id", eventID),
			attribute.String("alert.severity", severity),
		),
	)
}

func StartStoreFetchSpan(ctx context.Context, scope string) (context.Context, trace.Span) {
	return AlertTracer().Start(ctx, "alert.store_fetch",
		trace.WithAttributes(
			attribute.String("alert.scope", scope),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordStoreFetchResult(span trace.Span, tagCount int, err error) {
	span.SetAttributes(attribute.Int("alert.fetched_tags", tagCount))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

func RecordTickResult(span trace.Span, activeTags, liveEvents, raisedCount, clearedCount int, err error) {
	span.SetAttributes(
		attribute.Int("alert.active_tags", activeTags),
		attribute.Int("alert.live_events", liveEvents),
		attribute.Int("alert.raised_count", raisedCount),
		attribute.Int("alert.cleared_count", clearedCount),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// InjectToHTTPRequest propagates the active trace context onto an outbound
// request.
func InjectToHTTPRequest(ctx context.Context, req *http.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}
