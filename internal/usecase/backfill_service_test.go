package usecase

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	"github.com/riskibarqy/team-events/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/team-events/internal/platform/logging"
)

func TestBackfillService_ReachesLiveFixedPoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	legacy := env.seedEvent(t, event.Event{Name: "legacy", TeamID: ptr(5)})
	linkedOnly := env.seedEvent(t, event.Event{Name: "linked"}, 9)
	if _, err := env.participants.Create(t.Context(), participant.Participant{
		EventID:   legacy.ID,
		AthleteID: ptr(42),
		Status:    participant.StatusConfirmed,
	}); err != nil {
		t.Fatalf("seed participant: %v", err)
	}

	result, err := env.backfill.Run(t.Context(), BackfillInput{AttachRoster: true})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if result.EventCount != 2 || result.SuccessCount != 2 || result.FailedCount != 0 || result.WorkerCount != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.LinksWritten != 3 {
		t.Fatalf("expected 3 links written, got %d", result.LinksWritten)
	}
	// legacy: 40, 41 (team 5); linked: 44 (team 9). 42 already attached.
	if result.ParticipantsAdded != 3 {
		t.Fatalf("expected 3 participants added, got %d", result.ParticipantsAdded)
	}

	links, _ := env.eventRepo.ListTeamIDs(t.Context(), legacy.ID)
	if !slices.Equal(links, []int64{5, 7}) {
		t.Fatalf("unexpected legacy links: %v", links)
	}
	links, _ = env.eventRepo.ListTeamIDs(t.Context(), linkedOnly.ID)
	if !slices.Equal(links, []int64{9}) {
		t.Fatalf("unexpected linked links: %v", links)
	}

	// live mutation with an unset selection resolves to the same set.
	live, err := env.resolver.Resolve(t.Context(), legacy, event.UnsetTeams(), []int64{42})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !slices.Equal(live, []int64{5, 7}) {
		t.Fatalf("live resolution %v differs from backfill", live)
	}

	again, err := env.backfill.Run(t.Context(), BackfillInput{AttachRoster: true, MaxWorkers: 4})
	if err != nil {
		t.Fatalf("second backfill: %v", err)
	}
	if again.ParticipantsAdded != 0 || again.LinksWritten != 3 || again.FailedCount != 0 {
		t.Fatalf("backfill must be idempotent, got %+v", again)
	}
	if again.WorkerCount != 2 {
		t.Fatalf("worker count must be capped by event count, got %d", again.WorkerCount)
	}
	if len(env.notifications.All()) != 0 {
		t.Fatalf("backfill must not notify")
	}
}

func TestBackfillService_LinksOnlyWithoutRoster(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ev := env.seedEvent(t, event.Event{TeamID: ptr(7)})

	result, err := env.backfill.Run(t.Context(), BackfillInput{EventIDs: []int64{ev.ID}})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if result.ParticipantsAdded != 0 || result.LinksWritten != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	rows, _ := env.participants.ListByEvent(t.Context(), ev.ID)
	if len(rows) != 0 {
		t.Fatalf("expected no participants, got %d", len(rows))
	}
}

type failingLinkRepo struct {
	*memory.EventRepository
	failFor int64
}

func (r failingLinkRepo) ReplaceTeamLinks(ctx context.Context, eventID int64, teamIDs []int64) ([]int64, error) {
	if eventID == r.failFor {
		return nil, errors.New("deadlock detected")
	}
	return r.EventRepository.ReplaceTeamLinks(ctx, eventID, teamIDs)
}

func TestBackfillService_ContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	first := env.seedEvent(t, event.Event{TeamID: ptr(5)})
	broken := env.seedEvent(t, event.Event{TeamID: ptr(7)})
	last := env.seedEvent(t, event.Event{TeamID: ptr(9)})

	repo := failingLinkRepo{EventRepository: env.eventRepo, failFor: broken.ID}
	resolver := NewTeamResolver(repo, env.teams, env.athletes)
	svc := NewBackfillService(repo, env.participants, resolver, env.roster, logging.NewNop())

	result, err := svc.Run(t.Context(), BackfillInput{})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Failures) != 1 || result.Failures[0].EventID != broken.ID {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}

	for _, id := range []int64{first.ID, last.ID} {
		links, _ := env.eventRepo.ListTeamIDs(t.Context(), id)
		if len(links) != 1 {
			t.Fatalf("event %d should be backfilled, links=%v", id, links)
		}
	}
}

func TestBackfillService_SkipsParticipantsOfUnknownAthletes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ev := env.seedEvent(t, event.Event{TeamID: ptr(5)})
	for _, athleteID := range []int64{42, 999} {
		if _, err := env.participants.Create(t.Context(), participant.Participant{
			EventID:   ev.ID,
			AthleteID: ptr(athleteID),
			Status:    participant.StatusInvited,
			InvitedAt: fixedNow,
		}); err != nil {
			t.Fatalf("seed participant %d: %v", athleteID, err)
		}
	}

	result, err := env.backfill.Run(t.Context(), BackfillInput{EventIDs: []int64{ev.ID}})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if result.SuccessCount != 1 || result.FailedCount != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	links, _ := env.eventRepo.ListTeamIDs(t.Context(), ev.ID)
	if len(links) != 2 || links[0] != 5 || links[1] != 7 {
		t.Fatalf("expected links [5 7], got %v", links)
	}
}

func TestSubmitAndWait_WaitsForSubmittedTasksOnRejection(t *testing.T) {
	t.Parallel()

	rejected := errors.New("pool overloaded")
	var calls, done atomic.Int32
	submit := func(task func()) error {
		if calls.Add(1) == 3 {
			return rejected
		}
		go func() {
			time.Sleep(20 * time.Millisecond)
			task()
		}()
		return nil
	}

	err := submitAndWait(submit, []int64{1, 2, 3, 4}, func(int64) { done.Add(1) })
	if !errors.Is(err, rejected) {
		t.Fatalf("expected rejection error, got %v", err)
	}
	if got := done.Load(); got != 2 {
		t.Fatalf("expected both submitted tasks to finish before return, got %d", got)
	}
}

func TestNormalizeBackfillWorkerCount(t *testing.T) {
	t.Parallel()

	if got := normalizeBackfillWorkerCount(0, 10); got != 1 {
		t.Fatalf("default worker count must be 1, got %d", got)
	}
	if got := normalizeBackfillWorkerCount(8, 3); got != 3 {
		t.Fatalf("worker count must be capped by tasks, got %d", got)
	}
}
