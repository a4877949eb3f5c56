package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/participant"
)

func TestEventFeedService_ListForUser_UnionAndOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	// user 1 coaches team 5.
	created := env.seedEvent(t, event.Event{Name: "created", CreatorID: 1, StartsAt: fixedNow})
	legacy := env.seedEvent(t, event.Event{Name: "legacy", CreatorID: 2, TeamID: ptr(5), StartsAt: fixedNow.Add(time.Hour)})
	linked := env.seedEvent(t, event.Event{Name: "linked", CreatorID: 2, StartsAt: fixedNow.Add(2 * time.Hour)}, 5, 9)
	joined := env.seedEvent(t, event.Event{Name: "joined", CreatorID: 2, StartsAt: fixedNow.Add(time.Hour)})
	hidden := env.seedEvent(t, event.Event{Name: "hidden", CreatorID: 2, StartsAt: fixedNow}, 7)
	// visible through every source at once.
	everywhere := env.seedEvent(t, event.Event{Name: "everywhere", CreatorID: 1, TeamID: ptr(5), StartsAt: fixedNow.Add(-time.Hour)}, 5)

	for _, id := range []int64{joined.ID, everywhere.ID} {
		if _, err := env.participants.Create(t.Context(), participant.Participant{EventID: id, UserID: ptr(1), Status: participant.StatusInvited}); err != nil {
			t.Fatalf("seed participant: %v", err)
		}
	}

	views, err := env.feed.ListForUser(t.Context(), 1)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}

	got := make([]int64, 0, len(views))
	for _, v := range views {
		got = append(got, v.ID)
		if v.ID == hidden.ID {
			t.Fatalf("event %d must not be visible", hidden.ID)
		}
	}
	// starts_at desc, id desc on ties.
	want := []int64{linked.ID, joined.ID, legacy.ID, created.ID, everywhere.ID}
	if len(got) != len(want) {
		t.Fatalf("unexpected views: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: got=%v want=%v", got, want)
		}
	}

	if teams := views[0].TeamIDs; len(teams) != 2 || teams[0] != 5 || teams[1] != 9 {
		t.Fatalf("unexpected linked teams: %v", teams)
	}
	if views[1].TeamIDs == nil {
		t.Fatalf("team ids must be an empty slice, not nil")
	}
}

func TestEventFeedService_ListForUser_Empty(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	views, err := env.feed.ListForUser(t.Context(), 4)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no events, got %d", len(views))
	}

	if _, err := env.feed.ListForUser(t.Context(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
