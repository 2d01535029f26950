package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/freshtrack/tag-alerting/internal/domain"
	"github.com/freshtrack/tag-alerting/internal/infra/tagstore"
	"github.com/freshtrack/tag-alerting/internal/service/status"
)

func newTestScheduler(store tagstore.Repository, repo domain.AlertRepository, now func() time.Time) *Scheduler {
	return NewScheduler(
		Scope{LocationID: "loc-1"},
		store,
		repo,
		status.NewClassifier(),
		nil,
		nil,
		Options{TickInterval: time.Hour, Now: now},
	)
}

func record(tagID string, readyAt, discardAt time.Time) tagstore.TagRecord {
	return tagstore.TagRecord{
		Tag: domain.Tag{
			ID:         tagID,
			ProductID:  "prod-1",
			LocationID: "loc-1",
			MadeAt:     readyAt.Add(-time.Hour),
			ReadyAt:    readyAt,
			DiscardAt:  discardAt,
			State:      domain.LifecycleActive,
		},
		ProductName:  "Cut Lettuce",
		LocationName: "Front Kitchen",
	}
}

func TestScheduler_TwoExpiredTagsRaiseTwoCriticals(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	records := []tagstore.TagRecord{
		record("tag-a", now.Add(-4*time.Hour), now.Add(-5*time.Minute)),
		record("tag-b", now.Add(-4*time.Hour), now.Add(-10*time.Minute)),
	}
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return(records, nil)
	repo.EXPECT().IsAcknowledged(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	repo.EXPECT().MarkRaised(gomock.Any(), gomock.Any(), now).Return(true, nil).Times(2)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	snap := s.Snapshot()
	if len(snap.Events) != 2 {
		t.Fatalf("expected 2 live events, got %d", len(snap.Events))
	}

	seen := make(map[string]bool)
	for _, ev := range snap.Events {
		if ev.Severity != domain.SeverityCritical {
			t.Errorf("event %s: expected critical severity, got %s", ev.ID, ev.Severity)
		}
		if !ev.Sound {
			t.Errorf("event %s: expected sound on first raise", ev.ID)
		}
		if seen[ev.ID] {
			t.Errorf("duplicate event ID %s", ev.ID)
		}
		seen[ev.ID] = true
	}
	if !seen["tag:tag-a:critical"] || !seen["tag:tag-b:critical"] {
		t.Errorf("expected events for both tags, got %v", seen)
	}
}

func TestScheduler_SoundOnlyOnFirstRaise(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").
		Return([]tagstore.TagRecord{record("tag-a", now.Add(-4*time.Hour), now.Add(-5*time.Minute))}, nil)
	repo.EXPECT().IsAcknowledged(gomock.Any(), "tag:tag-a:critical").Return(false, nil)
	// A raise record from before a process restart survives in Redis, so the
	// re-raised event stays silent.
	repo.EXPECT().MarkRaised(gomock.Any(), "tag:tag-a:critical", now).Return(false, nil)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	snap := s.Snapshot()
	if len(snap.Events) != 1 {
		t.Fatalf("expected 1 live event, got %d", len(snap.Events))
	}
	if snap.Events[0].Sound {
		t.Error("expected no sound when the raise record already exists")
	}
}

func TestScheduler_WarningRaiseRecordedWithoutSound(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 13, 45, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").
		Return([]tagstore.TagRecord{record("tag-a", now.Add(-3*time.Hour), now.Add(15*time.Minute))}, nil)
	repo.EXPECT().IsAcknowledged(gomock.Any(), "tag:tag-a:warning").Return(false, nil)
	// The raise record is written for every severity; only the audible
	// escalation is reserved for criticals.
	repo.EXPECT().MarkRaised(gomock.Any(), "tag:tag-a:warning", now).Return(true, nil)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	snap := s.Snapshot()
	if len(snap.Events) != 1 {
		t.Fatalf("expected 1 live event, got %d", len(snap.Events))
	}
	if snap.Events[0].Sound {
		t.Error("a first warning raise must not carry sound")
	}
}

func TestScheduler_EventPersistsWithoutReRaise(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)
	now := base

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	rec := record("tag-a", base.Add(-4*time.Hour), base.Add(-5*time.Minute))
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{rec}, nil).Times(2)
	// Dedup bookkeeping happens only on the raising tick, not while the
	// event merely stays alive.
	repo.EXPECT().IsAcknowledged(gomock.Any(), "tag:tag-a:critical").Return(false, nil).Times(1)
	repo.EXPECT().MarkRaised(gomock.Any(), "tag:tag-a:critical", base).Return(true, nil).Times(1)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	now = base.Add(30 * time.Second)
	s.runTick(context.Background())

	snap := s.Snapshot()
	if len(snap.Events) != 1 {
		t.Fatalf("expected 1 live event across ticks, got %d", len(snap.Events))
	}
	// 5.5 minutes overdue floors to a full 6 on the refreshed countdown.
	if snap.Events[0].TimeRemaining != "6 min overdue" {
		t.Errorf("expected refreshed time remaining, got %q", snap.Events[0].TimeRemaining)
	}
}

func TestScheduler_WarningEscalatesToCritical(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := time.Date(2024, 3, 5, 13, 45, 0, 0, time.UTC)
	discardAt := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	now := base

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	rec := record("tag-a", base.Add(-3*time.Hour), discardAt)
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{rec}, nil).Times(2)

	repo.EXPECT().IsAcknowledged(gomock.Any(), "tag:tag-a:warning").Return(false, nil)
	repo.EXPECT().MarkRaised(gomock.Any(), "tag:tag-a:warning", gomock.Any()).Return(true, nil)

	repo.EXPECT().IsAcknowledged(gomock.Any(), "tag:tag-a:critical").Return(false, nil)
	repo.EXPECT().MarkRaised(gomock.Any(), "tag:tag-a:critical", gomock.Any()).Return(true, nil)
	repo.EXPECT().ClearRaised(gomock.Any(), "tag:tag-a:warning").Return(nil)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	snap := s.Snapshot()
	if len(snap.Events) != 1 || snap.Events[0].Severity != domain.SeverityWarning {
		t.Fatalf("expected one warning before the deadline, got %+v", snap.Events)
	}
	if snap.Events[0].Sound {
		t.Error("warning must not carry sound")
	}

	now = discardAt.Add(time.Minute)
	s.runTick(context.Background())

	snap = s.Snapshot()
	if len(snap.Events) != 1 {
		t.Fatalf("expected the warning replaced by a critical, got %d events", len(snap.Events))
	}
	ev := snap.Events[0]
	if ev.Severity != domain.SeverityCritical {
		t.Errorf("expected critical after the deadline, got %s", ev.Severity)
	}
	if ev.ID != "tag:tag-a:critical" {
		t.Errorf("escalation must mint a new event identity, got %s", ev.ID)
	}
	if !ev.Sound {
		t.Error("expected sound on the first critical raise")
	}
}

func TestScheduler_FetchFailureRetainsLiveSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	rec := record("tag-a", now.Add(-4*time.Hour), now.Add(-5*time.Minute))
	first := store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{rec}, nil)
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return(nil, errors.New("store unreachable")).After(first)
	repo.EXPECT().IsAcknowledged(gomock.Any(), gomock.Any()).Return(false, nil)
	repo.EXPECT().MarkRaised(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())
	s.runTick(context.Background())

	snap := s.Snapshot()
	if len(snap.Events) != 1 {
		t.Fatalf("fetch failure must retain the previous live set, got %d events", len(snap.Events))
	}
	if !snap.Stale {
		t.Error("snapshot must be marked stale after a failed fetch")
	}

	// A later successful tick drops the stale flag again.
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{rec}, nil)
	s.runTick(context.Background())
	if snap := s.Snapshot(); snap.Stale {
		t.Error("stale flag must reset after a successful fetch")
	}
}

func TestScheduler_ClearedWhenTagDiscardedUpstream(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	rec := record("tag-a", now.Add(-4*time.Hour), now.Add(-5*time.Minute))
	first := store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{rec}, nil)
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{}, nil).After(first)
	repo.EXPECT().IsAcknowledged(gomock.Any(), gomock.Any()).Return(false, nil)
	repo.EXPECT().MarkRaised(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	repo.EXPECT().ClearRaised(gomock.Any(), "tag:tag-a:critical").Return(nil)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())
	s.runTick(context.Background())

	if snap := s.Snapshot(); len(snap.Events) != 0 {
		t.Fatalf("expected empty live set once the tag left the store, got %d events", len(snap.Events))
	}
}

func TestScheduler_AcknowledgeCriticalDiscardsTag(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	records := []tagstore.TagRecord{
		record("tag-a", now.Add(-4*time.Hour), now.Add(-5*time.Minute)),
		record("tag-b", now.Add(-4*time.Hour), now.Add(-10*time.Minute)),
	}
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return(records, nil)
	repo.EXPECT().IsAcknowledged(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	repo.EXPECT().MarkRaised(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

	repo.EXPECT().MarkAcknowledged(gomock.Any(), "tag:tag-a:critical", now).Return(nil)
	store.EXPECT().UpdateTag(gomock.Any(), "tag-a", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, update tagstore.TagUpdate) error {
			if update.State == nil || *update.State != domain.LifecycleDiscarded {
				t.Errorf("expected discard update, got %+v", update)
			}
			return nil
		})

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	if err := s.Acknowledge(context.Background(), "tag:tag-a:critical"); err != nil {
		t.Fatalf("unexpected acknowledge error: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Events) != 1 {
		t.Fatalf("acknowledging one event must leave the other, got %d events", len(snap.Events))
	}
	if snap.Events[0].ID != "tag:tag-b:critical" {
		t.Errorf("wrong surviving event: %s", snap.Events[0].ID)
	}
}

func TestScheduler_AcknowledgeDiscardRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").
		Return([]tagstore.TagRecord{record("tag-a", now.Add(-4*time.Hour), now.Add(-5*time.Minute))}, nil)
	repo.EXPECT().IsAcknowledged(gomock.Any(), gomock.Any()).Return(false, nil)
	repo.EXPECT().MarkRaised(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	repo.EXPECT().MarkAcknowledged(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	transient := errors.New("store unreachable")
	gomock.InOrder(
		store.EXPECT().UpdateTag(gomock.Any(), "tag-a", gomock.Any()).Return(transient),
		store.EXPECT().UpdateTag(gomock.Any(), "tag-a", gomock.Any()).Return(nil),
	)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	if err := s.Acknowledge(context.Background(), "tag:tag-a:critical"); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
}

func TestScheduler_StaleAcknowledgeIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 14, 5, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	s := newTestScheduler(store, repo, func() time.Time { return now })

	if err := s.Acknowledge(context.Background(), "tag:gone:critical"); err != nil {
		t.Fatalf("stale acknowledge must be a no-op, got %v", err)
	}
}

func TestScheduler_AcknowledgedEventNotReRaised(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 13, 45, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	rec := record("tag-a", now.Add(-3*time.Hour), now.Add(15*time.Minute))
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{rec}, nil).Times(2)
	repo.EXPECT().IsAcknowledged(gomock.Any(), "tag:tag-a:warning").Return(false, nil)
	repo.EXPECT().MarkRaised(gomock.Any(), "tag:tag-a:warning", gomock.Any()).Return(true, nil)
	repo.EXPECT().MarkAcknowledged(gomock.Any(), "tag:tag-a:warning", gomock.Any()).Return(nil)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	if err := s.Acknowledge(context.Background(), "tag:tag-a:warning"); err != nil {
		t.Fatalf("unexpected acknowledge error: %v", err)
	}

	// The condition still holds on the next tick, but the in-memory ack
	// keeps the event suppressed without touching Redis again.
	s.runTick(context.Background())

	if snap := s.Snapshot(); len(snap.Events) != 0 {
		t.Fatalf("acknowledged warning must stay suppressed, got %d events", len(snap.Events))
	}
}

func TestScheduler_PersistedAckSuppressesAfterRestart(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 13, 45, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	rec := record("tag-a", now.Add(-3*time.Hour), now.Add(15*time.Minute))
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{rec}, nil)
	repo.EXPECT().IsAcknowledged(gomock.Any(), "tag:tag-a:warning").Return(true, nil)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	if snap := s.Snapshot(); len(snap.Events) != 0 {
		t.Fatalf("persisted ack must suppress the raise, got %d events", len(snap.Events))
	}
}

func TestScheduler_AckRecordClearedWhenConditionEnds(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 13, 45, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	rec := record("tag-a", now.Add(-3*time.Hour), now.Add(15*time.Minute))
	first := store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{rec}, nil)
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{}, nil).After(first)
	repo.EXPECT().IsAcknowledged(gomock.Any(), "tag:tag-a:warning").Return(false, nil)
	repo.EXPECT().MarkRaised(gomock.Any(), "tag:tag-a:warning", gomock.Any()).Return(true, nil)
	repo.EXPECT().MarkAcknowledged(gomock.Any(), "tag:tag-a:warning", gomock.Any()).Return(nil)
	repo.EXPECT().ClearAcknowledged(gomock.Any(), "tag:tag-a:warning").Return(nil)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	if err := s.Acknowledge(context.Background(), "tag:tag-a:warning"); err != nil {
		t.Fatalf("unexpected acknowledge error: %v", err)
	}

	s.runTick(context.Background())
}

func TestScheduler_SnapshotOrdersCriticalFirst(t *testing.T) {
	ctrl := gomock.NewController(t)
	now := time.Date(2024, 3, 5, 13, 45, 0, 0, time.UTC)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	records := []tagstore.TagRecord{
		record("tag-warn", now.Add(-3*time.Hour), now.Add(15*time.Minute)),
		record("tag-crit", now.Add(-4*time.Hour), now.Add(-5*time.Minute)),
	}
	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return(records, nil)
	repo.EXPECT().IsAcknowledged(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
	repo.EXPECT().MarkRaised(gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil).Times(2)

	s := newTestScheduler(store, repo, func() time.Time { return now })
	s.runTick(context.Background())

	snap := s.Snapshot()
	if snap.Front == nil {
		t.Fatal("expected a front event")
	}
	if snap.Front.ID != "tag:tag-crit:critical" {
		t.Errorf("critical must outrank warning at the front, got %s", snap.Front.ID)
	}
	if len(snap.Events) != 2 || snap.Events[1].ID != "tag:tag-warn:warning" {
		t.Errorf("unexpected queue order: %+v", snap.Events)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)

	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{}, nil).AnyTimes()

	s := newTestScheduler(store, repo, time.Now)
	s.Start(context.Background())
	s.Start(context.Background()) // second Start is a no-op
	s.Stop()
	s.Stop() // second Stop is a no-op

	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("tick loop did not drain after Stop")
	}
}
