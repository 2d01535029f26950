package domain

import (
	"context"
	"time"
)

// Transition names for AlertTransitionRecord.
const (
	TransitionRaised       = "raised"
	TransitionCleared      = "cleared"
	TransitionAcknowledged = "acknowledged"
)

type AlertTransitionRecord struct {
	EventID    string
	TagID      string
	Severity   string
	Transition string
	Scope      string
	Sound      bool
	OccurredAt time.Time
}

type TickResultRecord struct {
	Scope        string
	TickAt       time.Time
	ActiveTags   int
	LiveEvents   int
	RaisedCount  int
	ClearedCount int
	FetchFailed  bool
}

// AlertRecorder ships alert transitions and per-tick summaries to an
// analytics sink. Implementations must never fail a tick; errors are the
// implementation's problem to log.
type AlertRecorder interface {
	RecordTransitions(ctx context.Context, records []AlertTransitionRecord) error
	RecordTickResult(ctx context.Context, record TickResultRecord) error
	Flush(ctx context.Context) error
	Close() error
}
