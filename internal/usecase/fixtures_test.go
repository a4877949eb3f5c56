package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/athlete"
	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/domain/team"
	"github.com/riskibarqy/team-events/internal/domain/user"
	"github.com/riskibarqy/team-events/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/team-events/internal/platform/logging"
)

var fixedNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

type recordingSender struct {
	mu       sync.Mutex
	messages []notification.Message
	failFor  map[string]error
}

func (s *recordingSender) Send(_ context.Context, msg notification.Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	if err, ok := s.failFor[msg.To]; ok {
		return false, err
	}
	return true, nil
}

func (s *recordingSender) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.messages))
	for _, msg := range s.messages {
		out = append(out, msg.To)
	}
	return out
}

type testEnv struct {
	eventRepo     *memory.EventRepository
	participants  *memory.ParticipantRepository
	athletes      *memory.AthleteRepository
	teams         *memory.TeamRepository
	users         *memory.UserRepository
	notifications *memory.NotificationRepository
	email         *recordingSender
	push          *recordingSender

	resolver   *TeamResolver
	roster     *RosterSynchronizer
	dispatcher *NotificationDispatcher
	eventSvc   *EventService
	rsvp       *RSVPService
	feed       *EventFeedService
	backfill   *BackfillService
}

func ptr(v int64) *int64 { return &v }

// newTestEnv wires every service over memory repositories:
//
//	teams:    5 (coach user 1), 7, 9
//	athletes: 40 (team 5), 41 (team 5, user 3), 42 (team 7), 43 (no team), 44 (team 9)
//	users:    1 coach (email+push), 2 parent (email), 3 athlete (push), 4 no address
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		eventRepo:    memory.NewEventRepository(nil),
		participants: memory.NewParticipantRepository(nil),
		athletes: memory.NewAthleteRepository([]athlete.Athlete{
			{ID: 40, TeamID: ptr(5), FirstName: "Sam", LastName: "Stone"},
			{ID: 41, TeamID: ptr(5), UserID: ptr(3), FirstName: "Riley", LastName: "Runner"},
			{ID: 42, TeamID: ptr(7), FirstName: "Alex", LastName: "Kim"},
			{ID: 43, FirstName: "Jo", LastName: "Free"},
			{ID: 44, TeamID: ptr(9), FirstName: "Lee", LastName: "Park"},
		}),
		teams: memory.NewTeamRepository([]team.Team{
			{ID: 5, Name: "Varsity", CoachID: ptr(1)},
			{ID: 7, Name: "Junior Varsity"},
			{ID: 9, Name: "Freshmen"},
		}),
		users: memory.NewUserRepository([]user.User{
			{ID: 1, Name: "Dana Coach", Email: "coach@example.com", PushToken: "push-coach"},
			{ID: 2, Name: "Pat Parent", Email: "parent@example.com"},
			{ID: 3, Name: "Riley Runner", PushToken: "push-riley"},
			{ID: 4, Name: "No Address"},
		}),
		notifications: memory.NewNotificationRepository(),
		email:         &recordingSender{failFor: map[string]error{}},
		push:          &recordingSender{failFor: map[string]error{}},
	}

	logger := logging.NewNop()
	env.resolver = NewTeamResolver(env.eventRepo, env.teams, env.athletes)
	env.roster = NewRosterSynchronizer(env.athletes, env.participants, logger)
	env.roster.now = func() time.Time { return fixedNow }
	env.dispatcher = NewNotificationDispatcher(env.users, env.notifications, map[notification.Channel]notification.Sender{
		notification.ChannelEmail: env.email,
		notification.ChannelPush:  env.push,
	}, DispatcherConfig{MaxWorkers: 4}, logger)
	env.dispatcher.now = func() time.Time { return fixedNow }
	env.eventSvc = NewEventService(env.eventRepo, env.participants, env.athletes, env.users, env.notifications, env.resolver, env.roster, env.dispatcher, logger)
	env.eventSvc.now = func() time.Time { return fixedNow }
	env.rsvp = NewRSVPService(env.eventRepo, env.participants, env.athletes, env.users, env.dispatcher, RSVPConfig{}, logger)
	env.rsvp.now = func() time.Time { return fixedNow }
	env.feed = NewEventFeedService(env.eventRepo, env.participants, env.teams)
	env.backfill = NewBackfillService(env.eventRepo, env.participants, env.resolver, env.roster, logger)

	return env
}

// seedEvent stores an event and optional links directly, bypassing the
// workflow, the way legacy rows look before backfill.
func (env *testEnv) seedEvent(t *testing.T, ev event.Event, links ...int64) event.Event {
	t.Helper()

	if ev.Name == "" {
		ev.Name = "Practice"
	}
	if ev.StartsAt.IsZero() {
		ev.StartsAt = fixedNow.Add(24 * time.Hour)
	}
	if ev.CreatorID == 0 {
		ev.CreatorID = 1
	}
	created, err := env.eventRepo.Create(t.Context(), ev)
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if len(links) > 0 {
		if _, err := env.eventRepo.ReplaceTeamLinks(t.Context(), created.ID, links); err != nil {
			t.Fatalf("seed links: %v", err)
		}
	}
	return created
}
