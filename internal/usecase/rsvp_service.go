package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/athlete"
	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	"github.com/riskibarqy/team-events/internal/domain/user"
	"github.com/riskibarqy/team-events/internal/platform/logging"
)

type RSVPConfig struct {
	// Channels used to tell the organizer about a response.
	Channels []notification.Channel
}

type RSVPService struct {
	eventRepo       event.Repository
	participantRepo participant.Repository
	athleteRepo     athlete.Repository
	userRepo        user.Repository
	dispatcher      *NotificationDispatcher
	cfg             RSVPConfig
	logger          *logging.Logger
	now             func() time.Time
}

func NewRSVPService(
	eventRepo event.Repository,
	participantRepo participant.Repository,
	athleteRepo athlete.Repository,
	userRepo user.Repository,
	dispatcher *NotificationDispatcher,
	cfg RSVPConfig,
	logger *logging.Logger,
) *RSVPService {
	if logger == nil {
		logger = logging.Default()
	}
	if len(cfg.Channels) == 0 {
		cfg.Channels = []notification.Channel{notification.ChannelEmail, notification.ChannelPush}
	}
	return &RSVPService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		athleteRepo:     athleteRepo,
		userRepo:        userRepo,
		dispatcher:      dispatcher,
		cfg:             cfg,
		logger:          logger,
		now:             time.Now,
	}
}

// Respond records an RSVP for the actor, creating the participant row when
// the actor was never invited. The organizer is notified best-effort.
func (s *RSVPService) Respond(ctx context.Context, eventID int64, actor participant.Actor, status participant.Status) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RSVPService.Respond", eventIDAttr(eventID))
	defer span.End()

	if !status.IsResponse() {
		return participant.Participant{}, fmt.Errorf("%w: status %q is not a valid response", ErrInvalidInput, status)
	}
	if err := actor.Validate(); err != nil {
		return participant.Participant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if eventID <= 0 {
		return participant.Participant{}, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	ev, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return participant.Participant{}, fmt.Errorf("get event id=%d: %w", eventID, err)
	}
	if !exists {
		return participant.Participant{}, fmt.Errorf("%w: event id=%d", ErrNotFound, eventID)
	}

	profile, err := s.requireActor(ctx, actor)
	if err != nil {
		return participant.Participant{}, err
	}

	row, found, err := s.findRow(ctx, eventID, actor, profile)
	if err != nil {
		return participant.Participant{}, err
	}

	respondedAt := s.now().UTC()
	if found {
		if err := row.Respond(status, respondedAt); err != nil {
			return participant.Participant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if err := s.participantRepo.UpdateResponse(ctx, row); err != nil {
			return participant.Participant{}, fmt.Errorf("update participant response id=%d: %w", row.ID, err)
		}
	} else {
		row = participant.Participant{
			EventID:   eventID,
			UserID:    actor.UserID,
			Status:    participant.StatusInvited,
			InvitedAt: respondedAt,
		}
		if actor.UserID == nil {
			row.AthleteID = actor.AthleteID
		}
		if err := row.Respond(status, respondedAt); err != nil {
			return participant.Participant{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		row, err = s.participantRepo.Create(ctx, row)
		if err != nil {
			if errors.Is(err, participant.ErrDuplicate) {
				return participant.Participant{}, fmt.Errorf("%w: concurrent rsvp for event id=%d, retry", ErrConflict, eventID)
			}
			if errors.Is(err, participant.ErrUnknownReference) {
				return participant.Participant{}, fmt.Errorf("%w: rsvp actor for event id=%d: %v", ErrNotFound, eventID, err)
			}
			return participant.Participant{}, fmt.Errorf("create participant event id=%d: %w", eventID, err)
		}
	}

	s.notifyOrganizer(ctx, ev, actor, status)
	return row, nil
}

// requireActor checks that the responding user or athlete exists. For an
// athlete actor the loaded profile is returned.
func (s *RSVPService) requireActor(ctx context.Context, actor participant.Actor) (athlete.Athlete, error) {
	if actor.UserID != nil {
		users, err := s.userRepo.GetByIDs(ctx, []int64{*actor.UserID})
		if err != nil {
			return athlete.Athlete{}, fmt.Errorf("get user id=%d: %w", *actor.UserID, err)
		}
		if len(users) == 0 {
			return athlete.Athlete{}, fmt.Errorf("%w: user id=%d", ErrNotFound, *actor.UserID)
		}
		return athlete.Athlete{}, nil
	}

	athletes, err := s.athleteRepo.GetByIDs(ctx, []int64{*actor.AthleteID})
	if err != nil {
		return athlete.Athlete{}, fmt.Errorf("get athlete id=%d: %w", *actor.AthleteID, err)
	}
	if len(athletes) == 0 {
		return athlete.Athlete{}, fmt.Errorf("%w: athlete id=%d", ErrNotFound, *actor.AthleteID)
	}
	return athletes[0], nil
}

// findRow looks up the actor's row. A user without a row of their own
// responds on the roster row of their athlete profile when one exists, and
// an athlete whose user was invited manually responds on that user's row.
func (s *RSVPService) findRow(ctx context.Context, eventID int64, actor participant.Actor, profile athlete.Athlete) (participant.Participant, bool, error) {
	if actor.UserID != nil {
		row, found, err := s.participantRepo.FindByUser(ctx, eventID, *actor.UserID)
		if err != nil {
			return participant.Participant{}, false, fmt.Errorf("find participant by user: %w", err)
		}
		if found {
			return row, true, nil
		}

		profiles, err := s.athleteRepo.GetByUserIDs(ctx, []int64{*actor.UserID})
		if err != nil {
			return participant.Participant{}, false, fmt.Errorf("get athlete profiles: %w", err)
		}
		for _, profile := range profiles {
			row, found, err := s.participantRepo.FindByAthleteWithoutUser(ctx, eventID, profile.ID)
			if err != nil {
				return participant.Participant{}, false, fmt.Errorf("find participant by athlete: %w", err)
			}
			if found {
				return row, true, nil
			}
		}
		return participant.Participant{}, false, nil
	}

	row, found, err := s.participantRepo.FindByAthleteWithoutUser(ctx, eventID, *actor.AthleteID)
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("find participant by athlete: %w", err)
	}
	if found || profile.UserID == nil {
		return row, found, nil
	}

	row, found, err = s.participantRepo.FindByUser(ctx, eventID, *profile.UserID)
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("find participant by athlete user: %w", err)
	}
	return row, found, nil
}

func (s *RSVPService) notifyOrganizer(ctx context.Context, ev event.Event, actor participant.Actor, status participant.Status) {
	if s.dispatcher == nil {
		return
	}

	summary := fmt.Sprintf("%s responded %s.", s.actorName(ctx, actor), status)
	if _, err := s.dispatcher.Dispatch(ctx, DispatchInput{
		Kind:         notification.KindRSVP,
		Event:        ev,
		RecipientIDs: []int64{ev.CreatorID},
		Channels:     s.cfg.Channels,
		Extra:        summary,
	}); err != nil {
		s.logger.WarnContext(ctx, "notify organizer of rsvp failed",
			"event_id", ev.ID,
			"creator_id", ev.CreatorID,
			"error", err,
		)
	}
}

func (s *RSVPService) actorName(ctx context.Context, actor participant.Actor) string {
	if actor.UserID != nil {
		users, err := s.userRepo.GetByIDs(ctx, []int64{*actor.UserID})
		if err == nil && len(users) > 0 && users[0].Name != "" {
			return users[0].Name
		}
		return fmt.Sprintf("User %d", *actor.UserID)
	}
	athletes, err := s.athleteRepo.GetByIDs(ctx, []int64{*actor.AthleteID})
	if err == nil && len(athletes) > 0 && athletes[0].FullName() != "" {
		return athletes[0].FullName()
	}
	return fmt.Sprintf("Athlete %d", *actor.AthleteID)
}
