package alert

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/freshtrack/tag-alerting/internal/domain"
	"github.com/freshtrack/tag-alerting/internal/infra/tagstore"
	"github.com/freshtrack/tag-alerting/internal/service/status"
)

func newTestManager(t *testing.T) (*Manager, *tagstore.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := tagstore.NewMockRepository(ctrl)
	repo := domain.NewMockAlertRepository(ctrl)

	m := NewManager(
		context.Background(),
		store,
		repo,
		status.NewClassifier(),
		nil,
		nil,
		Options{TickInterval: time.Hour},
	)
	return m, store
}

func TestManager_GetReusesSchedulerPerScope(t *testing.T) {
	m, store := newTestManager(t)
	defer m.StopAll()

	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{}, nil).AnyTimes()
	store.EXPECT().ListActiveTags(gomock.Any(), "").Return([]tagstore.TagRecord{}, nil).AnyTimes()

	first := m.Get(Scope{LocationID: "loc-1"})
	second := m.Get(Scope{LocationID: "loc-1"})
	if first != second {
		t.Error("expected the same scheduler for the same scope")
	}

	all := m.Get(Scope{})
	if all == first {
		t.Error("expected distinct schedulers for distinct scopes")
	}

	if _, ok := m.Lookup(Scope{LocationID: "loc-1"}); !ok {
		t.Error("expected Lookup to find the running scheduler")
	}
	if _, ok := m.Lookup(Scope{LocationID: "loc-2"}); ok {
		t.Error("Lookup must not create schedulers")
	}
}

func TestManager_StopAllRefusesFurtherGet(t *testing.T) {
	m, store := newTestManager(t)

	store.EXPECT().ListActiveTags(gomock.Any(), "loc-1").Return([]tagstore.TagRecord{}, nil).AnyTimes()

	s := m.Get(Scope{LocationID: "loc-1"})
	if s == nil {
		t.Fatal("expected a scheduler before StopAll")
	}

	m.StopAll()

	if got := m.Get(Scope{LocationID: "loc-1"}); got != nil {
		t.Error("Get after StopAll must return nil")
	}
	if _, ok := m.Lookup(Scope{LocationID: "loc-1"}); ok {
		t.Error("stopped schedulers must not be findable")
	}
}

func TestManager_StopRemovesSingleScope(t *testing.T) {
	m, store := newTestManager(t)
	defer m.StopAll()

	store.EXPECT().ListActiveTags(gomock.Any(), gomock.Any()).Return([]tagstore.TagRecord{}, nil).AnyTimes()

	m.Get(Scope{LocationID: "loc-1"})
	m.Get(Scope{LocationID: "loc-2"})

	m.Stop(Scope{LocationID: "loc-1"})

	if _, ok := m.Lookup(Scope{LocationID: "loc-1"}); ok {
		t.Error("stopped scope must be removed")
	}
	if _, ok := m.Lookup(Scope{LocationID: "loc-2"}); !ok {
		t.Error("other scopes must keep running")
	}
}
