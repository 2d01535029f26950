package policy

import (
	"fmt"
	"time"

	"github.com/freshtrack/tag-alerting/internal/domain"
)

// Resolver maps a product's time policy plus a made timestamp to the frozen
// (readyAt, discardAt) pair persisted on a tag. Pure arithmetic: no clock, no
// I/O, identical inputs always yield identical outputs.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve derives the ready and discard instants for madeAt under p.
//
// loc anchors the calendar-date arithmetic of the day-boundary kinds and must
// be the location's configured zone. A nil loc falls back to the process-local
// zone; callers own surfacing that imprecision.
func (r *Resolver) Resolve(p domain.TimePolicy, madeAt time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	switch p.Kind {
	case domain.PolicyRelativeMinutes:
		if p.ReadyOffsetMin < 0 || p.DiscardOffsetMin < 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: negative offset (ready=%d discard=%d)",
				domain.ErrInvalidPolicy, p.ReadyOffsetMin, p.DiscardOffsetMin)
		}
		readyAt := madeAt.Add(time.Duration(p.ReadyOffsetMin) * time.Minute)
		discardAt := madeAt.Add(time.Duration(p.DiscardOffsetMin) * time.Minute)
		return readyAt, discardAt, nil

	case domain.PolicyStartOfDay:
		at := dayBoundary(madeAt, loc, p.DayOffset, 0, 0, 0, 0)
		return at, at, nil

	case domain.PolicyEndOfDay:
		at := dayBoundary(madeAt, loc, p.DayOffset, 23, 59, 59, int(999*time.Millisecond))
		return at, at, nil

	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidPolicy, p.Kind)
	}
}

func dayBoundary(madeAt time.Time, loc *time.Location, dayOffset, hour, min, sec, nsec int) time.Time {
	local := madeAt.In(loc)
	year, month, day := local.Date()
	return time.Date(year, month, day+dayOffset, hour, min, sec, nsec, loc)
}
