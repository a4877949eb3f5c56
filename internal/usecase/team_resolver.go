package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/riskibarqy/team-events/internal/domain/athlete"
	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/team"
)

// TeamResolver decides which teams an event is linked to.
type TeamResolver struct {
	eventRepo   event.Repository
	teamRepo    team.Repository
	athleteRepo athlete.Repository
}

func NewTeamResolver(eventRepo event.Repository, teamRepo team.Repository, athleteRepo athlete.Repository) *TeamResolver {
	return &TeamResolver{
		eventRepo:   eventRepo,
		teamRepo:    teamRepo,
		athleteRepo: athleteRepo,
	}
}

// teamResolution holds everything the pure resolve step needs except the
// currently persisted link set.
type teamResolution struct {
	selection      event.TeamSelection
	legacyTeamID   *int64
	athleteTeamIDs []int64
}

func (r teamResolution) apply(current []int64) []int64 {
	return resolveTeamIDs(r.selection, current, r.athleteTeamIDs, r.legacyTeamID)
}

// resolveTeamIDs is the deterministic core: an explicit selection replaces
// the current links, otherwise the current links seed the result. Athlete
// teams and the legacy team are always added.
func resolveTeamIDs(selection event.TeamSelection, current, athleteTeamIDs []int64, legacyTeamID *int64) []int64 {
	var ids []int64
	if selection.IsSet() {
		ids = selection.IDs()
	} else {
		ids = slices.Clone(current)
	}
	ids = append(ids, athleteTeamIDs...)
	if legacyTeamID != nil {
		ids = append(ids, *legacyTeamID)
	}
	return event.NormalizeIDs(ids)
}

// Resolve computes the link set without writing anything.
func (r *TeamResolver) Resolve(ctx context.Context, ev event.Event, selection event.TeamSelection, athleteIDs []int64) ([]int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamResolver.Resolve")
	defer span.End()

	res, err := r.prepare(ctx, ev, selection, athleteIDs)
	if err != nil {
		return nil, err
	}

	var current []int64
	if !selection.IsSet() && ev.ID > 0 {
		current, err = r.eventRepo.ListTeamIDs(ctx, ev.ID)
		if err != nil {
			return nil, fmt.Errorf("list team links event id=%d: %w", ev.ID, err)
		}
	}
	return res.apply(current), nil
}

// Apply resolves and persists the link set in one transaction so concurrent
// mutations of the same event cannot lose each other's links.
func (r *TeamResolver) Apply(ctx context.Context, ev event.Event, selection event.TeamSelection, athleteIDs []int64) ([]int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamResolver.Apply", eventIDAttr(ev.ID))
	defer span.End()

	res, err := r.prepare(ctx, ev, selection, athleteIDs)
	if err != nil {
		return nil, err
	}
	return r.applyPrepared(ctx, ev.ID, res)
}

func (r *TeamResolver) applyPrepared(ctx context.Context, eventID int64, res teamResolution) ([]int64, error) {
	links, err := r.eventRepo.ReconcileTeamLinks(ctx, eventID, func(current []int64) ([]int64, error) {
		return res.apply(current), nil
	})
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return nil, fmt.Errorf("%w: event id=%d", ErrNotFound, eventID)
		}
		return nil, fmt.Errorf("reconcile team links event id=%d: %w", eventID, err)
	}
	return links, nil
}

func (r *TeamResolver) prepare(ctx context.Context, ev event.Event, selection event.TeamSelection, athleteIDs []int64) (teamResolution, error) {
	res := teamResolution{selection: selection}

	ids := event.NormalizeIDs(athleteIDs)
	if len(ids) > 0 {
		athletes, err := r.athleteRepo.GetByIDs(ctx, ids)
		if err != nil {
			return teamResolution{}, fmt.Errorf("get athletes: %w", err)
		}
		if missing := missingIDs(ids, athleteIDsOf(athletes)); len(missing) > 0 {
			return teamResolution{}, fmt.Errorf("%w: athletes %v", ErrNotFound, missing)
		}
		for _, item := range athletes {
			if item.TeamID != nil {
				res.athleteTeamIDs = append(res.athleteTeamIDs, *item.TeamID)
			}
		}
	}

	required := make([]int64, 0)
	if selection.IsSet() {
		required = append(required, selection.IDs()...)
	}
	if legacy, ok := ev.LegacyTeamID(); ok {
		res.legacyTeamID = &legacy
		required = append(required, legacy)
	}
	if err := r.requireTeams(ctx, required); err != nil {
		return teamResolution{}, err
	}

	return res, nil
}

func (r *TeamResolver) requireTeams(ctx context.Context, ids []int64) error {
	ids = event.NormalizeIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	teams, err := r.teamRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get teams: %w", err)
	}
	found := make([]int64, 0, len(teams))
	for _, item := range teams {
		found = append(found, item.ID)
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return fmt.Errorf("%w: teams %v", ErrNotFound, missing)
	}
	return nil
}

// partitionAthletes splits ids into athletes that exist and ids that no
// longer resolve to an athlete.
func (r *TeamResolver) partitionAthletes(ctx context.Context, ids []int64) ([]int64, []int64, error) {
	ids = event.NormalizeIDs(ids)
	if len(ids) == 0 {
		return ids, nil, nil
	}
	athletes, err := r.athleteRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("get athletes: %w", err)
	}
	known := event.NormalizeIDs(athleteIDsOf(athletes))
	return known, missingIDs(ids, known), nil
}

func athleteIDsOf(items []athlete.Athlete) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

// missingIDs returns the sorted ids in want that are absent from have.
func missingIDs(want, have []int64) []int64 {
	present := make(map[int64]struct{}, len(have))
	for _, id := range have {
		present[id] = struct{}{}
	}
	out := make([]int64, 0)
	for _, id := range event.NormalizeIDs(want) {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
