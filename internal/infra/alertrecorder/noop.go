package alertrecorder

import (
	"context"

	"github.com/freshtrack/tag-alerting/internal/domain"
)

type noopRecorder struct{}

// NewNoopRecorder returns a recorder that drops everything. Used when
// transition recording is disabled or unconfigured.
func NewNoopRecorder() domain.AlertRecorder {
	return &noopRecorder{}
}

func (r *noopRecorder) RecordTransitions(_ context.Context, _ []domain.AlertTransitionRecord) error {
	return nil
}

func (r *noopRecorder) RecordTickResult(_ context.Context, _ domain.TickResultRecord) error {
	return nil
}

func (r *noopRecorder) Flush(_ context.Context) error {
	return nil
}

func (r *noopRecorder) Close() error {
	return nil
}
