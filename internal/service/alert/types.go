package alert

import (
	"time"

	"github.com/freshtrack/tag-alerting/internal/domain"
)

// Scope is the set of tags a viewer sees: one location for location-scoped
// staff, everything for admins (empty LocationID).
type Scope struct {
	LocationID string
}

func (s Scope) Key() string {
	if s.LocationID == "" {
		return "all"
	}
	return "location:" + s.LocationID
}

// Snapshot is the ordered notification queue for a scope at one instant.
// Front is the single event the presentation layer should display: any live
// critical outranks all warnings, ties broken by earliest GeneratedAt then
// tag identity.
type Snapshot struct {
	Scope       string
	GeneratedAt time.Time
	Stale       bool
	Front       *domain.AlertEvent
	Events      []domain.AlertEvent
}

// Options tunes a scheduler. The zero value gets the defaults: a 30 second
// tick and the wall clock. Now is injectable so ticks can be simulated in
// tests without sleeping.
type Options struct {
	TickInterval time.Duration
	Now          func() time.Time
}

const defaultTickInterval = 30 * time.Second

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = defaultTickInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
