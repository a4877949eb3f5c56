package usecase

import (
	"errors"
	"slices"
	"testing"

	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	"github.com/riskibarqy/team-events/internal/infrastructure/repository/memory"
	athletemock "github.com/riskibarqy/team-events/internal/mocks/domain/athlete"
	"github.com/riskibarqy/team-events/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRosterSynchronizer_SyncIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ev := env.seedEvent(t, event.Event{})

	first, err := env.roster.Sync(t.Context(), ev.ID, []int64{5, 7})
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	got := participant.AthleteIDs(first)
	if !slices.Equal(got, []int64{40, 41, 42}) {
		t.Fatalf("unexpected inserted athletes: %v", got)
	}
	for _, row := range first {
		if row.Status != participant.StatusInvited || row.UserID != nil {
			t.Fatalf("roster row must be an invited athlete-only row: %+v", row)
		}
		if !row.InvitedAt.Equal(fixedNow) {
			t.Fatalf("unexpected invited_at: %s", row.InvitedAt)
		}
	}

	second, err := env.roster.Sync(t.Context(), ev.ID, []int64{7, 5})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second sync must insert nothing, got %d rows", len(second))
	}

	rows, _ := env.participants.ListByEvent(t.Context(), ev.ID)
	if len(rows) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(rows))
	}
}

func TestRosterSynchronizer_SkipsAthletesAlreadyAttached(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ev := env.seedEvent(t, event.Event{})

	// user 3 was invited directly and carries athlete 41.
	if _, err := env.participants.Create(t.Context(), participant.Participant{
		EventID:   ev.ID,
		UserID:    ptr(3),
		AthleteID: ptr(41),
		Status:    participant.StatusConfirmed,
	}); err != nil {
		t.Fatalf("seed participant: %v", err)
	}

	inserted, err := env.roster.Sync(t.Context(), ev.ID, []int64{5})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got := participant.AthleteIDs(inserted); !slices.Equal(got, []int64{40}) {
		t.Fatalf("expected only athlete 40, got %v", got)
	}

	row, found, _ := env.participants.FindByUser(t.Context(), ev.ID, 3)
	if !found || row.Status != participant.StatusConfirmed {
		t.Fatalf("existing row must be untouched: %+v", row)
	}
}

func TestRosterSynchronizer_NoTeams(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ev := env.seedEvent(t, event.Event{})

	inserted, err := env.roster.Sync(t.Context(), ev.ID, nil)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(inserted) != 0 {
		t.Fatalf("expected no rows, got %d", len(inserted))
	}
}

func TestRosterSynchronizer_InviteAthletesWithoutTeam(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ev := env.seedEvent(t, event.Event{})

	inserted, err := env.roster.InviteAthletes(t.Context(), ev.ID, []int64{43, 43})
	if err != nil {
		t.Fatalf("invite athletes: %v", err)
	}
	if got := participant.AthleteIDs(inserted); !slices.Equal(got, []int64{43}) {
		t.Fatalf("unexpected inserted athletes: %v", got)
	}
}

func TestRosterSynchronizer_SyncPropagatesRosterLookupError(t *testing.T) {
	t.Parallel()

	athletes := athletemock.NewRepository(t)
	athletes.On("ListIDsByTeams", mock.Anything, []int64{5, 7}).
		Return(nil, errors.New("connection reset")).
		Once()

	participants := memory.NewParticipantRepository(nil)
	roster := NewRosterSynchronizer(athletes, participants, logging.NewNop())

	rows, err := roster.Sync(t.Context(), 1, []int64{7, 5, 7})
	require.Error(t, err)
	require.ErrorContains(t, err, "connection reset")
	require.Nil(t, rows)

	stored, err := participants.ListByEvent(t.Context(), 1)
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestRosterSynchronizer_SyncWithoutTeamsSkipsLookup(t *testing.T) {
	t.Parallel()

	athletes := athletemock.NewRepository(t)
	roster := NewRosterSynchronizer(athletes, memory.NewParticipantRepository(nil), nil)

	rows, err := roster.Sync(t.Context(), 1, []int64{0, -4})
	require.NoError(t, err)
	require.Empty(t, rows)
	athletes.AssertNotCalled(t, "ListIDsByTeams", mock.Anything, mock.Anything)
}
