package tagstore

import (
	"context"

	"github.com/freshtrack/tag-alerting/internal/domain"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=tagstore

// TagRecord is a tag as returned by the store's list endpoint, denormalized
// with the product and location names the alert surface displays.
type TagRecord struct {
	domain.Tag
	ProductName  string
	LocationName string
}

// TagUpdate is a partial update of the two mutable tag fields. Nil means
// leave unchanged.
type TagUpdate struct {
	State   *domain.LifecycleState
	Printed *bool
}

// Repository is the client-side view of the external CRUD store that owns
// all persistence. The alerting core only lists active tags, creates tags
// with pre-resolved instants, and flips the two mutable flags.
type Repository interface {
	// ListActiveTags returns the active tags visible to a viewer scope.
	// An empty locationID means all locations.
	ListActiveTags(ctx context.Context, locationID string) ([]TagRecord, error)
	CreateTag(ctx context.Context, tag domain.Tag) (domain.Tag, error)
	UpdateTag(ctx context.Context, id string, update TagUpdate) error
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	GetLocation(ctx context.Context, id string) (domain.Location, error)
}
