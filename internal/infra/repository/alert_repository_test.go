package repository

import (
	"context"
	"testing"
	"time"

	"github.com/freshtrack/tag-alerting/internal/domain"
	"github.com/freshtrack/tag-alerting/internal/testutil"
)

func TestMarkRaisedFirstAndRepeat(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewAlertRepository(client)

	eventID := domain.EventID("tag-1", domain.SeverityCritical)
	raisedAt := time.Date(2024, 1, 1, 14, 0, 30, 0, time.UTC)

	first, err := repo.MarkRaised(ctx, eventID, raisedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first {
		t.Error("first MarkRaised should report first raise")
	}

	again, err := repo.MarkRaised(ctx, eventID, raisedAt.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again {
		t.Error("repeated MarkRaised should not report first raise")
	}
}

func TestMarkRaisedAfterClear(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewAlertRepository(client)

	eventID := domain.EventID("tag-2", domain.SeverityWarning)

	if _, err := repo.MarkRaised(ctx, eventID, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.ClearRaised(ctx, eventID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := repo.MarkRaised(ctx, eventID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first {
		t.Error("MarkRaised after ClearRaised should report first raise again")
	}
}

func TestAcknowledgedRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	client, cleanup := testutil.SetupRedisContainer(ctx, t)
	defer cleanup()

	repo := NewAlertRepository(client)

	eventID := domain.EventID("tag-3", domain.SeverityWarning)

	acked, err := repo.IsAcknowledged(ctx, eventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acked {
		t.Error("unknown event should not be acknowledged")
	}

	if err := repo.MarkAcknowledged(ctx, eventID, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acked, err = repo.IsAcknowledged(ctx, eventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acked {
		t.Error("event should be acknowledged after MarkAcknowledged")
	}

	if err := repo.ClearAcknowledged(ctx, eventID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acked, err = repo.IsAcknowledged(ctx, eventID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acked {
		t.Error("event should not be acknowledged after ClearAcknowledged")
	}
}
