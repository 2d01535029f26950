package domain

import (
	"time"
)

// Severity classifies an alert event. A critical event (discard deadline
// passed) always outranks every warning event (deadline approaching).
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

func (s Severity) String() string {
	return string(s)
}

func (s Severity) IsCritical() bool {
	return s == SeverityCritical
}

// AlertEvent is one live notification produced by the alert scheduler.
// Its ID is stable per tag and severity, which is what makes the per-tick
// diff and acknowledgment deduplication possible.
type AlertEvent struct {
	ID            string
	Severity      Severity
	TagID         string
	ProductName   string
	LocationName  string
	TimeRemaining string
	GeneratedAt   time.Time

	// Sound marks the audible escalation and is set only on the first
	// raise of a critical condition, never on ticks where the event
	// merely stays alive.
	Sound bool
}

// EventID builds the stable identity for a tag/severity condition pair.
func EventID(tagID string, severity Severity) string {
	return "tag:" + tagID + ":" + severity.String()
}
