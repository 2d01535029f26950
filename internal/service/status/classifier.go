package status

import (
	"fmt"
	"math"
	"time"
)

// ExpiringSoonWindow is the fixed lookahead before the discard deadline in
// which a tag reports expiring-soon. It is a design constant, not
// configuration.
const ExpiringSoonWindow = 30 * time.Minute

// Status is the derived lifecycle status of a tag. It is recomputed on every
// evaluation and never persisted.
type Status string

const (
	StatusPreparing    Status = "preparing"
	StatusReady        Status = "ready"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

// Label returns the human-facing form of the status.
func (s Status) Label() string {
	switch s {
	case StatusPreparing:
		return "Preparing"
	case StatusReady:
		return "Ready"
	case StatusExpiringSoon:
		return "Expiring soon"
	case StatusExpired:
		return "Expired"
	default:
		return string(s)
	}
}

// Verdict is the result of classifying a tag at one instant.
// MinutesToDiscard is signed: zero or negative once expired.
type Verdict struct {
	Status           Status
	MinutesToDiscard int
}

// HumanTimeRemaining renders the verdict's remaining time for display.
func (v Verdict) HumanTimeRemaining() string {
	if v.MinutesToDiscard < 0 {
		return fmt.Sprintf("%d min overdue", -v.MinutesToDiscard)
	}
	return fmt.Sprintf("%d min left", v.MinutesToDiscard)
}

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify derives the status of a tag from its frozen ready/discard instants
// and the evaluation instant. The rules are ordered and the first match wins:
// the discard checks outrank the readiness check, so a tag with a malformed
// window (discard before ready) still reports expired or expiring-soon.
// Total over all inputs; never errors.
func (c *Classifier) Classify(readyAt, discardAt, now time.Time) Verdict {
	remaining := discardAt.Sub(now)

	switch {
	case remaining <= 0:
		return Verdict{
			Status:           StatusExpired,
			MinutesToDiscard: int(math.Floor(remaining.Minutes())),
		}
	case remaining <= ExpiringSoonWindow:
		return Verdict{
			Status:           StatusExpiringSoon,
			MinutesToDiscard: int(math.Ceil(remaining.Minutes())),
		}
	case now.Before(readyAt):
		return Verdict{
			Status:           StatusPreparing,
			MinutesToDiscard: int(remaining.Minutes()),
		}
	default:
		return Verdict{
			Status:           StatusReady,
			MinutesToDiscard: int(remaining.Minutes()),
		}
	}
}
