package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/freshtrack/tag-alerting/internal/domain"
	"github.com/freshtrack/tag-alerting/internal/infra/tagstore"
	"github.com/freshtrack/tag-alerting/internal/observability/metrics"
	"github.com/freshtrack/tag-alerting/internal/observability/tracing"
	"github.com/freshtrack/tag-alerting/internal/service/status"
)

// Scheduler owns the recurring evaluation loop for one viewer scope. On each
// tick it fetches the scope's active tags, classifies them, diffs the
// resulting warning/critical conditions against the previous tick by stable
// event identity, and maintains the live notification set consumed through
// Snapshot and Acknowledge.
//
// Ticks run strictly sequentially on one goroutine; the live set is guarded
// by a mutex so Acknowledge is safe to call while a tick is in flight.
type Scheduler struct {
	scope        Scope
	store        tagstore.Repository
	alertRepo    domain.AlertRepository
	classifier   *status.Classifier
	recorder     domain.AlertRecorder
	alertMetrics *metrics.AlertMetrics
	tickInterval time.Duration
	now          func() time.Time

	mu       sync.Mutex
	live     map[string]domain.AlertEvent
	acked    map[string]bool
	stale    bool
	lastTick time.Time

	cancel context.CancelFunc
	done   chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewScheduler(
	scope Scope,
	store tagstore.Repository,
	alertRepo domain.AlertRepository,
	classifier *status.Classifier,
	recorder domain.AlertRecorder,
	alertMetrics *metrics.AlertMetrics,
	opts Options,
) *Scheduler {
	opts = opts.withDefaults()

	return &Scheduler{
		scope:        scope,
		store:        store,
		alertRepo:    alertRepo,
		classifier:   classifier,
		recorder:     recorder,
		alertMetrics: alertMetrics,
		tickInterval: opts.TickInterval,
		now:          opts.Now,
		live:         make(map[string]domain.AlertEvent),
		acked:        make(map[string]bool),
		done:         make(chan struct{}),
	}
}

// Start launches the tick loop. The first evaluation runs immediately.
// Calling Start more than once is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		runCtx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		go s.run(runCtx)
	})
}

// Stop cancels the loop and waits for the current tick to finish. After Stop
// returns no further events are produced; a fetch in flight at cancellation
// has its result discarded.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
	})
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	s.runTick(ctx)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			s.runTick(ctx)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	tickStart := s.now()

	tickCtx, span := tracing.StartTickSpan(ctx, s.scope.Key(), tickStart)
	defer span.End()

	fetchCtx, fetchSpan := tracing.StartStoreFetchSpan(tickCtx, s.scope.Key())
	records, err := s.store.ListActiveTags(fetchCtx, s.scope.LocationID)
	tracing.RecordStoreFetchResult(fetchSpan, len(records), err)
	fetchSpan.End()
	if err != nil {
		// Transient by design: keep the previous live set untouched and
		// try again next tick.
		slog.WarnContext(tickCtx, "tag fetch failed, retaining previous alert set",
			slog.String("scope", s.scope.Key()),
			slog.String("error", err.Error()),
		)
		s.mu.Lock()
		liveCount := len(s.live)
		s.stale = true
		s.mu.Unlock()

		if s.alertMetrics != nil {
			s.alertMetrics.RecordTickFailure(tickCtx, s.scope.Key())
		}
		tracing.RecordTickResult(span, 0, liveCount, 0, 0, err)
		s.recordTick(tickCtx, tickStart, 0, liveCount, 0, 0, true)
		return
	}

	// The loop may have been stopped while the fetch was in flight; the
	// result must not produce events past cancellation.
	if ctx.Err() != nil {
		return
	}

	now := s.now()
	current := make(map[string]domain.AlertEvent)

	for _, record := range records {
		verdict := s.classifier.Classify(record.ReadyAt, record.DiscardAt, now)

		if s.alertMetrics != nil {
			s.alertMetrics.RecordStatus(tickCtx, verdict.Status.String())
		}

		var severity domain.Severity
		switch verdict.Status {
		case status.StatusExpired:
			severity = domain.SeverityCritical
		case status.StatusExpiringSoon:
			severity = domain.SeverityWarning
		default:
			continue
		}

		id := domain.EventID(record.ID, severity)
		current[id] = domain.AlertEvent{
			ID:            id,
			Severity:      severity,
			TagID:         record.ID,
			ProductName:   record.ProductName,
			LocationName:  record.LocationName,
			TimeRemaining: verdict.HumanTimeRemaining(),
			GeneratedAt:   now,
		}
	}

	s.mu.Lock()
	prospects := make([]domain.AlertEvent, 0)
	for id, ev := range current {
		if _, isLive := s.live[id]; !isLive && !s.acked[id] {
			prospects = append(prospects, ev)
		}
	}
	cleared := make([]domain.AlertEvent, 0)
	for id, ev := range s.live {
		if _, stillPresent := current[id]; !stillPresent {
			cleared = append(cleared, ev)
		}
	}
	staleAcks := make([]string, 0)
	for id := range s.acked {
		if _, stillPresent := current[id]; !stillPresent {
			staleAcks = append(staleAcks, id)
		}
	}
	s.mu.Unlock()

	// Raise-time bookkeeping happens outside the lock: the acknowledgment
	// suppression check and the once-per-raise escalation record.
	raises := make([]domain.AlertEvent, 0, len(prospects))
	suppressed := make([]string, 0)
	for _, ev := range prospects {
		if s.isAcknowledged(tickCtx, ev.ID) {
			suppressed = append(suppressed, ev.ID)
			continue
		}
		first := s.markRaised(tickCtx, ev.ID, now)
		ev.Sound = ev.Severity.IsCritical() && first
		raises = append(raises, ev)
	}

	for _, ev := range cleared {
		if s.alertRepo != nil {
			if err := s.alertRepo.ClearRaised(tickCtx, ev.ID); err != nil {
				slog.WarnContext(tickCtx, "failed to clear raised record",
					slog.String("event_id", ev.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	for _, id := range staleAcks {
		if s.alertRepo != nil {
			if err := s.alertRepo.ClearAcknowledged(tickCtx, id); err != nil {
				slog.WarnContext(tickCtx, "failed to clear acknowledged record",
					slog.String("event_id", id),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	transitions := make([]domain.AlertTransitionRecord, 0, len(raises)+len(cleared))

	s.mu.Lock()
	for _, ev := range cleared {
		if _, stillLive := s.live[ev.ID]; !stillLive {
			// Acknowledged while the tick was running; the ack path
			// already accounted for it.
			continue
		}
		delete(s.live, ev.ID)
		transitions = append(transitions, s.transition(ev, domain.TransitionCleared, now))
		if s.alertMetrics != nil {
			s.alertMetrics.RecordCleared(tickCtx, ev.Severity.String(), s.scope.Key())
		}
		slog.InfoContext(tickCtx, "alert cleared",
			slog.String("event_id", ev.ID),
			slog.String("tag_id", ev.TagID),
			slog.String("severity", ev.Severity.String()),
		)
	}
	raisedCount := 0
	for _, ev := range raises {
		if s.acked[ev.ID] {
			// Acknowledged between the diff and now; do not resurrect.
			continue
		}
		s.live[ev.ID] = ev
		raisedCount++
		transitions = append(transitions, s.transition(ev, domain.TransitionRaised, now))
		if s.alertMetrics != nil {
			s.alertMetrics.RecordRaised(tickCtx, ev.Severity.String(), s.scope.Key(), ev.Sound)
		}
		slog.InfoContext(tickCtx, "alert raised",
			slog.String("event_id", ev.ID),
			slog.String("tag_id", ev.TagID),
			slog.String("severity", ev.Severity.String()),
			slog.Bool("sound", ev.Sound),
			slog.String("time_remaining", ev.TimeRemaining),
		)
	}
	for _, id := range suppressed {
		s.acked[id] = true
	}
	for _, id := range staleAcks {
		if _, stillPresent := current[id]; !stillPresent {
			delete(s.acked, id)
		}
	}
	// Refresh the displayed countdown on events that stay alive.
	for id, ev := range s.live {
		if cur, ok := current[id]; ok {
			ev.TimeRemaining = cur.TimeRemaining
			s.live[id] = ev
		}
	}
	s.stale = false
	s.lastTick = now
	liveCount := len(s.live)
	s.mu.Unlock()

	if s.recorder != nil && len(transitions) > 0 {
		if err := s.recorder.RecordTransitions(tickCtx, transitions); err != nil {
			slog.WarnContext(tickCtx, "failed to record alert transitions",
				slog.String("error", err.Error()),
			)
		}
	}

	if s.alertMetrics != nil {
		s.alertMetrics.RecordTickDuration(tickCtx, s.scope.Key(), s.now().Sub(tickStart))
	}
	tracing.RecordTickResult(span, len(records), liveCount, raisedCount, len(cleared), nil)
	s.recordTick(tickCtx, now, len(records), liveCount, raisedCount, len(cleared), false)
}

// Snapshot returns the ordered queue and the single front event for display.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	events := make([]domain.AlertEvent, 0, len(s.live))
	for _, ev := range s.live {
		events = append(events, ev)
	}
	snap := Snapshot{
		Scope:       s.scope.Key(),
		GeneratedAt: s.lastTick,
		Stale:       s.stale,
	}
	s.mu.Unlock()

	sort.Slice(events, func(i, j int) bool {
		if events[i].Severity != events[j].Severity {
			return events[i].Severity.IsCritical()
		}
		if !events[i].GeneratedAt.Equal(events[j].GeneratedAt) {
			return events[i].GeneratedAt.Before(events[j].GeneratedAt)
		}
		return events[i].TagID < events[j].TagID
	})

	snap.Events = events
	if len(events) > 0 {
		front := events[0]
		snap.Front = &front
	}
	return snap
}

// Acknowledge removes an event from the live set. Acknowledging an event
// that is no longer live is a no-op, not an error: races between a UI
// dismissal and a clearing tick are expected. A critical acknowledgment
// additionally requests the tag's discard via the store, since the product
// is physically gone.
func (s *Scheduler) Acknowledge(ctx context.Context, eventID string) error {
	s.mu.Lock()
	ev, ok := s.live[eventID]
	if !ok {
		s.mu.Unlock()
		slog.DebugContext(ctx, "stale acknowledge ignored",
			slog.String("event_id", eventID),
			slog.String("scope", s.scope.Key()),
		)
		return nil
	}
	delete(s.live, eventID)
	s.acked[eventID] = true
	s.mu.Unlock()

	ackCtx, span := tracing.StartAcknowledgeSpan(ctx, eventID, ev.Severity.String())
	defer span.End()

	now := s.now()

	if s.alertRepo != nil {
		if err := s.alertRepo.MarkAcknowledged(ackCtx, eventID, now); err != nil {
			slog.WarnContext(ackCtx, "failed to persist acknowledgment",
				slog.String("event_id", eventID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.alertMetrics != nil {
		s.alertMetrics.RecordAcknowledged(ackCtx, ev.Severity.String(), s.scope.Key())
	}

	if s.recorder != nil {
		record := s.transition(ev, domain.TransitionAcknowledged, now)
		if err := s.recorder.RecordTransitions(ackCtx, []domain.AlertTransitionRecord{record}); err != nil {
			slog.WarnContext(ackCtx, "failed to record acknowledgment",
				slog.String("error", err.Error()),
			)
		}
	}

	slog.InfoContext(ackCtx, "alert acknowledged",
		slog.String("event_id", eventID),
		slog.String("tag_id", ev.TagID),
		slog.String("severity", ev.Severity.String()),
	)

	if ev.Severity.IsCritical() {
		if err := s.discardTagWithRetry(ackCtx, ev.TagID); err != nil {
			slog.ErrorContext(ackCtx, "failed to discard tag after critical acknowledgment",
				slog.String("tag_id", ev.TagID),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("failed to discard tag %s: %w", ev.TagID, err)
		}
	}

	return nil
}

func (s *Scheduler) discardTagWithRetry(ctx context.Context, tagID string) error {
	const maxRetries = 3

	discarded := domain.LifecycleDiscarded
	update := tagstore.TagUpdate{State: &discarded}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
			slog.DebugContext(ctx, "retrying tag discard",
				slog.String("tag_id", tagID),
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := s.store.UpdateTag(ctx, tagID, update)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrTagNotFound) {
			// Already removed upstream; the goal state holds.
			return nil
		}
		lastErr = err
	}

	return fmt.Errorf("failed to discard tag after %d retries: %w", maxRetries, lastErr)
}

func (s *Scheduler) isAcknowledged(ctx context.Context, eventID string) bool {
	if s.alertRepo == nil {
		return false
	}
	acked, err := s.alertRepo.IsAcknowledged(ctx, eventID)
	if err != nil {
		slog.WarnContext(ctx, "failed to check acknowledgment record",
			slog.String("event_id", eventID),
			slog.String("error", err.Error()),
		)
		// Treat as not acknowledged and raise; a duplicate notification
		// beats a silently suppressed one.
		return false
	}
	return acked
}

func (s *Scheduler) markRaised(ctx context.Context, eventID string, raisedAt time.Time) bool {
	if s.alertRepo == nil {
		return true
	}
	first, err := s.alertRepo.MarkRaised(ctx, eventID, raisedAt)
	if err != nil {
		slog.WarnContext(ctx, "failed to record raise, assuming first",
			slog.String("event_id", eventID),
			slog.String("error", err.Error()),
		)
		return true
	}
	return first
}

func (s *Scheduler) transition(ev domain.AlertEvent, kind string, at time.Time) domain.AlertTransitionRecord {
	return domain.AlertTransitionRecord{
		EventID:    ev.ID,
		TagID:      ev.TagID,
		Severity:   ev.Severity.String(),
		Transition: kind,
		Scope:      s.scope.Key(),
		Sound:      ev.Sound && kind == domain.TransitionRaised,
		OccurredAt: at,
	}
}

func (s *Scheduler) recordTick(ctx context.Context, at time.Time, activeTags, liveEvents, raised, cleared int, fetchFailed bool) {
	if s.recorder == nil {
		return
	}
	record := domain.TickResultRecord{
		Scope:        s.scope.Key(),
		TickAt:       at,
		ActiveTags:   activeTags,
		LiveEvents:   liveEvents,
		RaisedCount:  raised,
		ClearedCount: cleared,
		FetchFailed:  fetchFailed,
	}
	if err := s.recorder.RecordTickResult(ctx, record); err != nil {
		slog.WarnContext(ctx, "failed to record tick result",
			slog.String("error", err.Error()),
		)
	}
}
