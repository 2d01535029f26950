package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/freshtrack/tag-alerting/internal/domain"
)

func TestResolve_RelativeMinutes(t *testing.T) {
	resolver := NewResolver()

	madeAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		policy      domain.TimePolicy
		wantReady   time.Time
		wantDiscard time.Time
	}{
		{
			name: "one hour ready, four hour discard",
			policy: domain.TimePolicy{
				Kind:             domain.PolicyRelativeMinutes,
				ReadyOffsetMin:   60,
				DiscardOffsetMin: 240,
			},
			wantReady:   time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
			wantDiscard: time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC),
		},
		{
			name: "zero offsets mean ready and discard at made time",
			policy: domain.TimePolicy{
				Kind:             domain.PolicyRelativeMinutes,
				ReadyOffsetMin:   0,
				DiscardOffsetMin: 0,
			},
			wantReady:   madeAt,
			wantDiscard: madeAt,
		},
		{
			name: "equal offsets",
			policy: domain.TimePolicy{
				Kind:             domain.PolicyRelativeMinutes,
				ReadyOffsetMin:   30,
				DiscardOffsetMin: 30,
			},
			wantReady:   madeAt.Add(30 * time.Minute),
			wantDiscard: madeAt.Add(30 * time.Minute),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readyAt, discardAt, err := resolver.Resolve(tt.policy, madeAt, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !readyAt.Equal(tt.wantReady) {
				t.Errorf("readyAt = %v, want %v", readyAt, tt.wantReady)
			}
			if !discardAt.Equal(tt.wantDiscard) {
				t.Errorf("discardAt = %v, want %v", discardAt, tt.wantDiscard)
			}
			if readyAt.After(discardAt) {
				t.Errorf("readyAt %v after discardAt %v", readyAt, discardAt)
			}
		})
	}
}

func TestResolve_RelativeMinutesNegativeOffsets(t *testing.T) {
	resolver := NewResolver()
	madeAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		policy domain.TimePolicy
	}{
		{
			name: "negative ready offset",
			policy: domain.TimePolicy{
				Kind:             domain.PolicyRelativeMinutes,
				ReadyOffsetMin:   -1,
				DiscardOffsetMin: 60,
			},
		},
		{
			name: "negative discard offset",
			policy: domain.TimePolicy{
				Kind:             domain.PolicyRelativeMinutes,
				ReadyOffsetMin:   10,
				DiscardOffsetMin: -60,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := resolver.Resolve(tt.policy, madeAt, time.UTC)
			if !errors.Is(err, domain.ErrInvalidPolicy) {
				t.Errorf("err = %v, want ErrInvalidPolicy", err)
			}
		})
	}
}

func TestResolve_StartOfDay(t *testing.T) {
	resolver := NewResolver()

	tests := []struct {
		name      string
		madeAt    time.Time
		dayOffset int
		want      time.Time
	}{
		{
			name:      "next day midnight",
			madeAt:    time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC),
			dayOffset: 1,
			want:      time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "same day midnight",
			madeAt:    time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC),
			dayOffset: 0,
			want:      time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "offset crosses month boundary",
			madeAt:    time.Date(2024, 1, 31, 8, 30, 0, 0, time.UTC),
			dayOffset: 1,
			want:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := domain.TimePolicy{Kind: domain.PolicyStartOfDay, DayOffset: tt.dayOffset}

			readyAt, discardAt, err := resolver.Resolve(policy, tt.madeAt, time.UTC)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !readyAt.Equal(tt.want) {
				t.Errorf("readyAt = %v, want %v", readyAt, tt.want)
			}
			if !discardAt.Equal(readyAt) {
				t.Errorf("discardAt = %v, want same as readyAt %v", discardAt, readyAt)
			}
		})
	}
}

func TestResolve_EndOfDay(t *testing.T) {
	resolver := NewResolver()

	policy := domain.TimePolicy{Kind: domain.PolicyEndOfDay, DayOffset: 2}
	madeAt := time.Date(2024, 3, 5, 9, 15, 0, 0, time.UTC)

	readyAt, discardAt, err := resolver.Resolve(policy, madeAt, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2024, 3, 7, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if !readyAt.Equal(want) {
		t.Errorf("readyAt = %v, want %v", readyAt, want)
	}
	if !discardAt.Equal(want) {
		t.Errorf("discardAt = %v, want %v", discardAt, want)
	}
}

func TestResolve_DayBoundaryUsesLocationZone(t *testing.T) {
	resolver := NewResolver()

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}

	// 22:00 UTC on March 5 is already March 6 in Tokyo, so the next-day
	// boundary lands on March 7 local midnight.
	madeAt := time.Date(2024, 3, 5, 22, 0, 0, 0, time.UTC)
	policy := domain.TimePolicy{Kind: domain.PolicyStartOfDay, DayOffset: 1}

	readyAt, _, err := resolver.Resolve(policy, madeAt, tokyo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2024, 3, 7, 0, 0, 0, 0, tokyo)
	if !readyAt.Equal(want) {
		t.Errorf("readyAt = %v, want %v", readyAt, want)
	}
}

func TestResolve_UnknownKind(t *testing.T) {
	resolver := NewResolver()

	policy := domain.TimePolicy{Kind: domain.PolicyKind("weekly")}
	_, _, err := resolver.Resolve(policy, time.Now(), time.UTC)
	if !errors.Is(err, domain.ErrInvalidPolicy) {
		t.Errorf("err = %v, want ErrInvalidPolicy", err)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	resolver := NewResolver()

	policies := []domain.TimePolicy{
		{Kind: domain.PolicyRelativeMinutes, ReadyOffsetMin: 15, DiscardOffsetMin: 90},
		{Kind: domain.PolicyStartOfDay, DayOffset: 1},
		{Kind: domain.PolicyEndOfDay, DayOffset: 3},
	}
	madeAt := time.Date(2024, 7, 14, 16, 42, 11, 0, time.UTC)

	for _, p := range policies {
		r1, d1, err1 := resolver.Resolve(p, madeAt, time.UTC)
		r2, d2, err2 := resolver.Resolve(p, madeAt, time.UTC)
		if err1 != nil || err2 != nil {
			t.Fatalf("unexpected errors: %v, %v", err1, err2)
		}
		if !r1.Equal(r2) || !d1.Equal(d2) {
			t.Errorf("kind %s: repeated resolve diverged: (%v,%v) vs (%v,%v)", p.Kind, r1, d1, r2, d2)
		}
	}
}
