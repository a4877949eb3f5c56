package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/athlete"
	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	"github.com/riskibarqy/team-events/internal/domain/user"
	"github.com/riskibarqy/team-events/internal/platform/logging"
)

// EventInput carries a create or a full update of an event.
type EventInput struct {
	Name       string
	StartsAt   time.Time
	Location   string
	TeamID     *int64
	CoachID    *int64
	Teams      event.TeamSelection
	AthleteIDs []int64
	InviteeIDs []int64
	SendEmail  bool
	SendPush   bool
}

type EventResult struct {
	View                 event.View
	NewParticipants      []participant.Participant
	NotificationsWritten int
}

type EventService struct {
	eventRepo        event.Repository
	participantRepo  participant.Repository
	athleteRepo      athlete.Repository
	userRepo         user.Repository
	notificationRepo notification.Repository
	resolver         *TeamResolver
	roster           *RosterSynchronizer
	dispatcher       *NotificationDispatcher
	logger           *logging.Logger
	now              func() time.Time
}

func NewEventService(
	eventRepo event.Repository,
	participantRepo participant.Repository,
	athleteRepo athlete.Repository,
	userRepo user.Repository,
	notificationRepo notification.Repository,
	resolver *TeamResolver,
	roster *RosterSynchronizer,
	dispatcher *NotificationDispatcher,
	logger *logging.Logger,
) *EventService {
	if logger == nil {
		logger = logging.Default()
	}
	return &EventService{
		eventRepo:        eventRepo,
		participantRepo:  participantRepo,
		athleteRepo:      athleteRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		resolver:         resolver,
		roster:           roster,
		dispatcher:       dispatcher,
		logger:           logger,
		now:              time.Now,
	}
}

// Create stores the event, reconciles its teams, invites participants and
// notifies them when asked to.
func (s *EventService) Create(ctx context.Context, creatorID int64, input EventInput) (EventResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Create")
	defer span.End()

	ev := event.Event{
		Name:      strings.TrimSpace(input.Name),
		StartsAt:  input.StartsAt.UTC(),
		Location:  strings.TrimSpace(input.Location),
		TeamID:    input.TeamID,
		CreatorID: creatorID,
		CoachID:   input.CoachID,
	}
	if err := ev.Validate(); err != nil {
		return EventResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	res, err := s.resolver.prepare(ctx, ev, input.Teams, input.AthleteIDs)
	if err != nil {
		return EventResult{}, err
	}
	if err := s.requireUsers(ctx, input.InviteeIDs); err != nil {
		return EventResult{}, err
	}

	created, err := s.eventRepo.Create(ctx, ev)
	if err != nil {
		return EventResult{}, fmt.Errorf("create event: %w", err)
	}

	links, added, err := s.reconcile(ctx, created.ID, res, input)
	if err != nil {
		return EventResult{}, err
	}

	result := EventResult{
		View:            event.View{Event: created, TeamIDs: links},
		NewParticipants: added,
	}

	channels := channelsFor(input.SendEmail, input.SendPush)
	if len(channels) == 0 {
		return result, nil
	}

	recipients, err := s.recipientUserIDs(ctx, added)
	if err != nil {
		return EventResult{}, err
	}
	written, err := s.dispatcher.Dispatch(ctx, DispatchInput{
		Kind:         notification.KindInvitation,
		Event:        created,
		RecipientIDs: recipients,
		Channels:     channels,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "dispatch invitations failed", "event_id", created.ID, "error", err)
	}
	result.NotificationsWritten = written

	if err := s.eventRepo.MarkNotified(ctx, created.ID, input.SendEmail, input.SendPush); err != nil {
		s.logger.ErrorContext(ctx, "mark event notified failed", "event_id", created.ID, "error", err)
		return result, nil
	}
	result.View.EmailSent = input.SendEmail
	result.View.PushSent = input.SendPush

	return result, nil
}

// Update replaces the event fields and re-runs the reconciliation workflow.
// Existing participants get an update notice, new ones an invitation.
func (s *EventService) Update(ctx context.Context, eventID int64, input EventInput) (EventResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Update", eventIDAttr(eventID))
	defer span.End()

	current, err := s.getEvent(ctx, eventID)
	if err != nil {
		return EventResult{}, err
	}

	ev := current
	ev.Name = strings.TrimSpace(input.Name)
	ev.StartsAt = input.StartsAt.UTC()
	ev.Location = strings.TrimSpace(input.Location)
	ev.TeamID = input.TeamID
	ev.CoachID = input.CoachID
	if err := ev.Validate(); err != nil {
		return EventResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	res, err := s.resolver.prepare(ctx, ev, input.Teams, input.AthleteIDs)
	if err != nil {
		return EventResult{}, err
	}
	if err := s.requireUsers(ctx, input.InviteeIDs); err != nil {
		return EventResult{}, err
	}

	existing, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return EventResult{}, fmt.Errorf("list participants event id=%d: %w", eventID, err)
	}

	updated, err := s.eventRepo.Update(ctx, ev)
	if err != nil {
		return EventResult{}, fmt.Errorf("update event id=%d: %w", eventID, err)
	}

	links, added, err := s.reconcile(ctx, eventID, res, input)
	if err != nil {
		return EventResult{}, err
	}

	result := EventResult{
		View:            event.View{Event: updated, TeamIDs: links},
		NewParticipants: added,
	}

	channels := channelsFor(input.SendEmail, input.SendPush)
	if len(channels) == 0 {
		return result, nil
	}

	invitees, err := s.recipientUserIDs(ctx, added)
	if err != nil {
		return EventResult{}, err
	}
	previous, err := s.recipientUserIDs(ctx, existing)
	if err != nil {
		return EventResult{}, err
	}
	previous = missingIDs(previous, invitees)

	for _, batch := range []struct {
		kind       notification.Kind
		recipients []int64
	}{
		{kind: notification.KindUpdate, recipients: previous},
		{kind: notification.KindInvitation, recipients: invitees},
	} {
		written, err := s.dispatcher.Dispatch(ctx, DispatchInput{
			Kind:         batch.kind,
			Event:        updated,
			RecipientIDs: batch.recipients,
			Channels:     channels,
		})
		if err != nil {
			s.logger.WarnContext(ctx, "dispatch event notifications failed",
				"event_id", eventID,
				"kind", batch.kind,
				"error", err,
			)
		}
		result.NotificationsWritten += written
	}

	return result, nil
}

// SendReminder notifies every reachable participant that has not declined.
func (s *EventService) SendReminder(ctx context.Context, eventID int64, channels []notification.Channel) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.SendReminder", eventIDAttr(eventID))
	defer span.End()

	if len(normalizeChannels(channels)) == 0 {
		return 0, fmt.Errorf("%w: at least one valid channel is required", ErrInvalidInput)
	}

	ev, err := s.getEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	rows, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("list participants event id=%d: %w", eventID, err)
	}
	active := make([]participant.Participant, 0, len(rows))
	for _, row := range rows {
		if row.Status != participant.StatusDeclined {
			active = append(active, row)
		}
	}

	recipients, err := s.recipientUserIDs(ctx, active)
	if err != nil {
		return 0, err
	}
	return s.dispatcher.Dispatch(ctx, DispatchInput{
		Kind:         notification.KindReminder,
		Event:        ev,
		RecipientIDs: recipients,
		Channels:     channels,
	})
}

func (s *EventService) Get(ctx context.Context, eventID int64) (event.View, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.Get", eventIDAttr(eventID))
	defer span.End()

	ev, err := s.getEvent(ctx, eventID)
	if err != nil {
		return event.View{}, err
	}
	links, err := s.eventRepo.ListTeamIDs(ctx, eventID)
	if err != nil {
		return event.View{}, fmt.Errorf("list team links event id=%d: %w", eventID, err)
	}
	return event.View{Event: ev, TeamIDs: links}, nil
}

func (s *EventService) ListParticipants(ctx context.Context, eventID int64) ([]participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.ListParticipants", eventIDAttr(eventID))
	defer span.End()

	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants event id=%d: %w", eventID, err)
	}
	return rows, nil
}

func (s *EventService) ListNotifications(ctx context.Context, eventID int64) ([]notification.Notification, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.ListNotifications", eventIDAttr(eventID))
	defer span.End()

	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := s.notificationRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list notifications event id=%d: %w", eventID, err)
	}
	return rows, nil
}

// reconcile runs links, invitee rows, direct athlete invites and roster sync
// in that order, so user rows claim their athlete before roster sync runs.
func (s *EventService) reconcile(ctx context.Context, eventID int64, res teamResolution, input EventInput) ([]int64, []participant.Participant, error) {
	links, err := s.resolver.applyPrepared(ctx, eventID, res)
	if err != nil {
		return nil, nil, err
	}

	added, err := s.inviteUsers(ctx, eventID, input.InviteeIDs)
	if err != nil {
		return nil, nil, err
	}

	direct, err := s.roster.InviteAthletes(ctx, eventID, input.AthleteIDs)
	if err != nil {
		return nil, nil, err
	}
	added = append(added, direct...)

	synced, err := s.roster.Sync(ctx, eventID, links)
	if err != nil {
		return nil, nil, err
	}
	added = append(added, synced...)

	return links, added, nil
}

// inviteUsers adds one participant row per invited user that is not already
// attached, carrying the user's athlete profile when there is one.
func (s *EventService) inviteUsers(ctx context.Context, eventID int64, userIDs []int64) ([]participant.Participant, error) {
	userIDs = event.NormalizeIDs(userIDs)
	if len(userIDs) == 0 {
		return []participant.Participant{}, nil
	}

	existing, err := s.participantRepo.ListUserIDs(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participant users event id=%d: %w", eventID, err)
	}
	missing := missingIDs(userIDs, existing)
	if len(missing) == 0 {
		return []participant.Participant{}, nil
	}

	profiles, err := s.athleteRepo.GetByUserIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("get athlete profiles: %w", err)
	}
	athleteByUser := make(map[int64]int64, len(profiles))
	for _, profile := range profiles {
		if profile.UserID == nil {
			continue
		}
		if _, ok := athleteByUser[*profile.UserID]; !ok {
			athleteByUser[*profile.UserID] = profile.ID
		}
	}

	invitedAt := s.now().UTC()
	rows := make([]participant.Participant, 0, len(missing))
	for _, userID := range missing {
		uid := userID
		row := participant.Participant{
			EventID:   eventID,
			UserID:    &uid,
			Status:    participant.StatusInvited,
			InvitedAt: invitedAt,
		}
		if athleteID, ok := athleteByUser[userID]; ok {
			row.AthleteID = &athleteID
		}
		rows = append(rows, row)
	}

	inserted, err := s.participantRepo.CreateMany(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("insert invitee participants event id=%d: %w", eventID, err)
	}
	return inserted, nil
}

// recipientUserIDs maps participant rows to user accounts. Athlete-only rows
// reach the athlete's linked account; athletes without one are skipped.
func (s *EventService) recipientUserIDs(ctx context.Context, rows []participant.Participant) ([]int64, error) {
	return participantRecipients(ctx, s.athleteRepo, rows)
}

func participantRecipients(ctx context.Context, athleteRepo athlete.Repository, rows []participant.Participant) ([]int64, error) {
	userIDs := make([]int64, 0, len(rows))
	athleteIDs := make([]int64, 0)
	for _, row := range rows {
		switch {
		case row.UserID != nil:
			userIDs = append(userIDs, *row.UserID)
		case row.AthleteID != nil:
			athleteIDs = append(athleteIDs, *row.AthleteID)
		}
	}

	if len(athleteIDs) > 0 {
		athletes, err := athleteRepo.GetByIDs(ctx, athleteIDs)
		if err != nil {
			return nil, fmt.Errorf("get participant athletes: %w", err)
		}
		for _, item := range athletes {
			if item.UserID != nil {
				userIDs = append(userIDs, *item.UserID)
			}
		}
	}
	return event.NormalizeIDs(userIDs), nil
}

func (s *EventService) requireUsers(ctx context.Context, ids []int64) error {
	ids = event.NormalizeIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get invitees: %w", err)
	}
	found := make([]int64, 0, len(users))
	for _, item := range users {
		found = append(found, item.ID)
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return fmt.Errorf("%w: users %v", ErrNotFound, missing)
	}
	return nil
}

func (s *EventService) getEvent(ctx context.Context, eventID int64) (event.Event, error) {
	if eventID <= 0 {
		return event.Event{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	ev, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, fmt.Errorf("get event id=%d: %w", eventID, err)
	}
	if !exists {
		return event.Event{}, fmt.Errorf("%w: event id=%d", ErrNotFound, eventID)
	}
	return ev, nil
}
