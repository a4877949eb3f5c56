package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	"github.com/riskibarqy/team-events/internal/domain/team"
	"github.com/sourcegraph/conc/pool"
)

// EventFeedService lists the events a user can see.
type EventFeedService struct {
	eventRepo       event.Repository
	participantRepo participant.Repository
	teamRepo        team.Repository
}

func NewEventFeedService(eventRepo event.Repository, participantRepo participant.Repository, teamRepo team.Repository) *EventFeedService {
	return &EventFeedService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
	}
}

// ListForUser returns events the user created, participates in, or whose
// legacy or linked team the user coaches. Newest start time first.
func (s *EventFeedService) ListForUser(ctx context.Context, userID int64) ([]event.View, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventFeedService.ListForUser")
	defer span.End()

	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	var created, participating, legacy, linked []int64
	coached, err := s.teamRepo.ListIDsByCoach(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list coached teams user id=%d: %w", userID, err)
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		ids, err := s.eventRepo.ListIDsByCreator(ctx, userID)
		if err != nil {
			return fmt.Errorf("list created events: %w", err)
		}
		created = ids
		return nil
	})
	p.Go(func(ctx context.Context) error {
		ids, err := s.participantRepo.ListEventIDsByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list participating events: %w", err)
		}
		participating = ids
		return nil
	})
	if len(coached) > 0 {
		p.Go(func(ctx context.Context) error {
			ids, err := s.eventRepo.ListIDsByLegacyTeams(ctx, coached)
			if err != nil {
				return fmt.Errorf("list legacy team events: %w", err)
			}
			legacy = ids
			return nil
		})
		p.Go(func(ctx context.Context) error {
			ids, err := s.eventRepo.ListIDsByLinkedTeams(ctx, coached)
			if err != nil {
				return fmt.Errorf("list linked team events: %w", err)
			}
			linked = ids
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(created)+len(participating)+len(legacy)+len(linked))
	ids = append(ids, created...)
	ids = append(ids, participating...)
	ids = append(ids, legacy...)
	ids = append(ids, linked...)
	ids = event.NormalizeIDs(ids)
	if len(ids) == 0 {
		return []event.View{}, nil
	}

	events, err := s.eventRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	links, err := s.eventRepo.ListTeamIDsByEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list team links: %w", err)
	}

	out := make([]event.View, 0, len(events))
	for _, ev := range events {
		teamIDs := links[ev.ID]
		if teamIDs == nil {
			teamIDs = []int64{}
		}
		out = append(out, event.View{Event: ev, TeamIDs: teamIDs})
	}
	slices.SortFunc(out, func(a, b event.View) int {
		if c := b.StartsAt.Compare(a.StartsAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}
