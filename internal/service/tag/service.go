package tag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/freshtrack/tag-alerting/internal/domain"
	"github.com/freshtrack/tag-alerting/internal/infra/tagstore"
	"github.com/freshtrack/tag-alerting/internal/service/policy"
	"github.com/freshtrack/tag-alerting/internal/service/status"
)

// Service owns the tag lifecycle operations in front of the external store:
// creation (where the product's time policy is resolved into the frozen
// instants), the two manual state flips, and status-decorated listing.
type Service struct {
	store      tagstore.Repository
	resolver   *policy.Resolver
	classifier *status.Classifier
	now        func() time.Time
}

func NewService(store tagstore.Repository, resolver *policy.Resolver, classifier *status.Classifier) *Service {
	return &Service{
		store:      store,
		resolver:   resolver,
		classifier: classifier,
		now:        time.Now,
	}
}

// Create resolves the product's time policy against the made timestamp and
// persists the tag with its readyAt/discardAt frozen. The location's zone
// anchors day-boundary policies; an unloadable zone falls back to the
// process-local one rather than failing the creation.
func (s *Service) Create(ctx context.Context, input CreateInput) (domain.Tag, error) {
	product, err := s.store.GetProduct(ctx, input.ProductID)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("failed to load product %s: %w", input.ProductID, err)
	}

	location, err := s.store.GetLocation(ctx, input.LocationID)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("failed to load location %s: %w", input.LocationID, err)
	}

	madeAt := input.MadeAt
	if madeAt.IsZero() {
		madeAt = s.now()
	}

	loc := s.loadZone(ctx, location)

	readyAt, discardAt, err := s.resolver.Resolve(product.Policy, madeAt, loc)
	if err != nil {
		return domain.Tag{}, err
	}

	tag := domain.Tag{
		ID:         uuid.NewString(),
		ProductID:  product.ID,
		LocationID: location.ID,
		CreatedBy:  input.CreatedBy,
		Quantity:   input.Quantity,
		Batch:      input.Batch,
		Notes:      input.Notes,
		MadeAt:     madeAt,
		ReadyAt:    readyAt,
		DiscardAt:  discardAt,
		State:      domain.LifecycleActive,
	}

	created, err := s.store.CreateTag(ctx, tag)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("failed to create tag: %w", err)
	}

	slog.InfoContext(ctx, "tag created",
		slog.String("tag_id", created.ID),
		slog.String("product_id", created.ProductID),
		slog.String("location_id", created.LocationID),
		slog.Time("ready_at", created.ReadyAt),
		slog.Time("discard_at", created.DiscardAt),
	)

	return created, nil
}

// Discard marks a tag discarded. Idempotent at the store level.
func (s *Service) Discard(ctx context.Context, tagID string) error {
	discarded := domain.LifecycleDiscarded
	if err := s.store.UpdateTag(ctx, tagID, tagstore.TagUpdate{State: &discarded}); err != nil {
		return fmt.Errorf("failed to discard tag %s: %w", tagID, err)
	}

	slog.InfoContext(ctx, "tag discarded", slog.String("tag_id", tagID))
	return nil
}

// MarkPrinted records that the physical label was printed.
func (s *Service) MarkPrinted(ctx context.Context, tagID string) error {
	printed := true
	if err := s.store.UpdateTag(ctx, tagID, tagstore.TagUpdate{Printed: &printed}); err != nil {
		return fmt.Errorf("failed to mark tag %s printed: %w", tagID, err)
	}

	slog.InfoContext(ctx, "tag marked printed", slog.String("tag_id", tagID))
	return nil
}

// ListWithStatus returns the scope's active tags, each decorated with its
// status at the current instant. An empty locationID means all locations.
func (s *Service) ListWithStatus(ctx context.Context, locationID string) ([]TagWithStatus, error) {
	records, err := s.store.ListActiveTags(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	now := s.now()
	result := make([]TagWithStatus, 0, len(records))
	for _, rec := range records {
		result = append(result, TagWithStatus{
			TagRecord: rec,
			Verdict:   s.classifier.Classify(rec.ReadyAt, rec.DiscardAt, now),
		})
	}

	return result, nil
}

func (s *Service) loadZone(ctx context.Context, location domain.Location) *time.Location {
	if location.Timezone == "" {
		slog.WarnContext(ctx, "location has no timezone, using process-local zone",
			slog.String("location_id", location.ID),
		)
		return time.Local
	}

	loc, err := time.LoadLocation(location.Timezone)
	if err != nil {
		slog.WarnContext(ctx, "failed to load location timezone, using process-local zone",
			slog.String("location_id", location.ID),
			slog.String("timezone", location.Timezone),
			slog.String("error", err.Error()),
		)
		return time.Local
	}
	return loc
}
