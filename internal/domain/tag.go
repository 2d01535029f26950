package domain

import (
	"time"
)

// LifecycleState is the persisted, operator-controlled state of a tag.
// It is distinct from the derived status (preparing/ready/expiring/expired),
// which is recomputed on every evaluation and never stored.
type LifecycleState string

const (
	LifecycleActive    LifecycleState = "active"
	LifecycleDiscarded LifecycleState = "discarded"
)

func (s LifecycleState) String() string {
	return string(s)
}

func (s LifecycleState) IsActive() bool {
	return s == LifecycleActive
}

// Tag represents one batch of a prepared food item with a bounded safe-use
// window. ReadyAt and DiscardAt are resolved from the product's time policy
// once at creation and frozen; a later policy change on the product never
// reaches existing tags.
type Tag struct {
	ID         string
	ProductID  string
	LocationID string
	CreatedBy  string
	Quantity   int
	Batch      string
	Notes      string
	MadeAt     time.Time
	ReadyAt    time.Time
	DiscardAt  time.Time
	State      LifecycleState
	Printed    bool
}

func (t *Tag) IsActive() bool {
	return t.State.IsActive()
}
