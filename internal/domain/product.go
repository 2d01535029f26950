package domain

// PolicyKind selects how ready/discard instants are derived from made time.
type PolicyKind string

const (
	PolicyRelativeMinutes PolicyKind = "relative_minutes"
	PolicyStartOfDay      PolicyKind = "start_of_day"
	PolicyEndOfDay        PolicyKind = "end_of_day"
)

func (k PolicyKind) String() string {
	return string(k)
}

// TimePolicy is a product-level configuration describing how ready and
// discard times are derived from a tag's made time.
//
// For PolicyRelativeMinutes, ReadyOffsetMin and DiscardOffsetMin are minute
// offsets added to the made time. For the day-boundary kinds, DayOffset is
// the number of calendar days added to the made date before snapping to the
// boundary; the offset fields not belonging to the kind are ignored.
type TimePolicy struct {
	Kind             PolicyKind
	ReadyOffsetMin   int
	DiscardOffsetMin int
	DayOffset        int
}

type Product struct {
	ID     string
	Name   string
	Policy TimePolicy
}

// Location carries the IANA timezone name used to anchor day-boundary
// policies. An empty Timezone means the location has no configured zone.
type Location struct {
	ID       string
	Name     string
	Timezone string
}
