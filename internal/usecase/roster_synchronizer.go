package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/athlete"
	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	"github.com/riskibarqy/team-events/internal/platform/logging"
)

// RosterSynchronizer adds athlete participants for linked team rosters. It
// only inserts; existing rows are never changed or removed.
type RosterSynchronizer struct {
	athleteRepo     athlete.Repository
	participantRepo participant.Repository
	logger          *logging.Logger
	now             func() time.Time
}

func NewRosterSynchronizer(athleteRepo athlete.Repository, participantRepo participant.Repository, logger *logging.Logger) *RosterSynchronizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterSynchronizer{
		athleteRepo:     athleteRepo,
		participantRepo: participantRepo,
		logger:          logger,
		now:             time.Now,
	}
}

// Sync invites every athlete on teamIDs that is not yet a participant and
// returns only the rows it inserted.
func (s *RosterSynchronizer) Sync(ctx context.Context, eventID int64, teamIDs []int64) ([]participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSynchronizer.Sync", eventIDAttr(eventID))
	defer span.End()

	teamIDs = event.NormalizeIDs(teamIDs)
	if len(teamIDs) == 0 {
		return []participant.Participant{}, nil
	}

	roster, err := s.athleteRepo.ListIDsByTeams(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("list roster for teams %v: %w", teamIDs, err)
	}
	return s.insertMissing(ctx, eventID, roster)
}

// InviteAthletes invites directly selected athletes, including those without
// a team, through the same insert-missing path.
func (s *RosterSynchronizer) InviteAthletes(ctx context.Context, eventID int64, athleteIDs []int64) ([]participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSynchronizer.InviteAthletes", eventIDAttr(eventID))
	defer span.End()

	return s.insertMissing(ctx, eventID, athleteIDs)
}

func (s *RosterSynchronizer) insertMissing(ctx context.Context, eventID int64, athleteIDs []int64) ([]participant.Participant, error) {
	athleteIDs = event.NormalizeIDs(athleteIDs)
	if len(athleteIDs) == 0 {
		return []participant.Participant{}, nil
	}

	existing, err := s.participantRepo.ListAthleteIDs(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participant athletes event id=%d: %w", eventID, err)
	}

	missing := missingIDs(athleteIDs, existing)
	if len(missing) == 0 {
		return []participant.Participant{}, nil
	}

	invitedAt := s.now().UTC()
	rows := make([]participant.Participant, 0, len(missing))
	for _, athleteID := range missing {
		id := athleteID
		rows = append(rows, participant.Participant{
			EventID:   eventID,
			AthleteID: &id,
			Status:    participant.StatusInvited,
			InvitedAt: invitedAt,
		})
	}

	inserted, err := s.participantRepo.CreateMany(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("insert roster participants event id=%d: %w", eventID, err)
	}
	if len(inserted) < len(rows) {
		s.logger.InfoContext(ctx, "roster participants skipped on conflict",
			"event_id", eventID,
			"requested", len(rows),
			"inserted", len(inserted),
		)
	}
	return inserted, nil
}
