package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=alert_repository.go -destination=alert_repository_mock.go -package=domain

// AlertRepository persists alert bookkeeping that must survive a process
// restart: which critical conditions have already escalated (so the alert
// sound plays exactly once per raise) and which events the operator has
// acknowledged (so a dismissed warning is not raised again while its
// condition persists).
type AlertRepository interface {
	// MarkRaised records that eventID has been raised and reports whether
	// this is the first raise since the condition last cleared.
	MarkRaised(ctx context.Context, eventID string, raisedAt time.Time) (bool, error)
	ClearRaised(ctx context.Context, eventID string) error

	MarkAcknowledged(ctx context.Context, eventID string, ackedAt time.Time) error
	IsAcknowledged(ctx context.Context, eventID string) (bool, error)
	ClearAcknowledged(ctx context.Context, eventID string) error
}
