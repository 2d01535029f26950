package alert

import (
	"context"
	"sync"

	"github.com/freshtrack/tag-alerting/internal/domain"
	"github.com/freshtrack/tag-alerting/internal/infra/tagstore"
	"github.com/freshtrack/tag-alerting/internal/observability/metrics"
	"github.com/freshtrack/tag-alerting/internal/service/status"
)

// Manager owns one scheduler per viewer scope, starting them lazily on first
// use and stopping them together at shutdown. All schedulers share the same
// store, repository and recorder; only the scope differs.
type Manager struct {
	store        tagstore.Repository
	alertRepo    domain.AlertRepository
	classifier   *status.Classifier
	recorder     domain.AlertRecorder
	alertMetrics *metrics.AlertMetrics
	opts         Options

	baseCtx context.Context

	mu         sync.Mutex
	schedulers map[string]*Scheduler
	stopped    bool
}

func NewManager(
	baseCtx context.Context,
	store tagstore.Repository,
	alertRepo domain.AlertRepository,
	classifier *status.Classifier,
	recorder domain.AlertRecorder,
	alertMetrics *metrics.AlertMetrics,
	opts Options,
) *Manager {
	return &Manager{
		store:        store,
		alertRepo:    alertRepo,
		classifier:   classifier,
		recorder:     recorder,
		alertMetrics: alertMetrics,
		opts:         opts,
		baseCtx:      baseCtx,
		schedulers:   make(map[string]*Scheduler),
	}
}

// Get returns the scheduler for a scope, creating and starting it on first
// request. Returns nil after StopAll.
func (m *Manager) Get(scope Scope) *Scheduler {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return nil
	}

	key := scope.Key()
	if s, ok := m.schedulers[key]; ok {
		return s
	}

	s := NewScheduler(scope, m.store, m.alertRepo, m.classifier, m.recorder, m.alertMetrics, m.opts)
	s.Start(m.baseCtx)
	m.schedulers[key] = s
	return s
}

// Lookup returns the scheduler for a scope if one is already running.
func (m *Manager) Lookup(scope Scope) (*Scheduler, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedulers[scope.Key()]
	return s, ok
}

// Stop shuts down the scheduler for one scope, if running.
func (m *Manager) Stop(scope Scope) {
	m.mu.Lock()
	key := scope.Key()
	s, ok := m.schedulers[key]
	if ok {
		delete(m.schedulers, key)
	}
	m.mu.Unlock()

	if ok {
		s.Stop()
	}
}

// StopAll shuts down every scheduler and refuses further Get calls. Blocks
// until all tick loops have drained.
func (m *Manager) StopAll() {
	m.mu.Lock()
	m.stopped = true
	schedulers := make([]*Scheduler, 0, len(m.schedulers))
	for _, s := range m.schedulers {
		schedulers = append(schedulers, s)
	}
	m.schedulers = make(map[string]*Scheduler)
	m.mu.Unlock()

	for _, s := range schedulers {
		s.Stop()
	}
}
