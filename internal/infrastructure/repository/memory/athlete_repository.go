package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/team-events/internal/domain/athlete"
)

type AthleteRepository struct {
	mu       sync.RWMutex
	athletes map[int64]athlete.Athlete
}

func NewAthleteRepository(athletes []athlete.Athlete) *AthleteRepository {
	items := make(map[int64]athlete.Athlete, len(athletes))
	for _, item := range athletes {
		items[item.ID] = item
	}
	return &AthleteRepository{athletes: items}
}

func (r *AthleteRepository) GetByIDs(_ context.Context, ids []int64) ([]athlete.Athlete, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]athlete.Athlete, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.athletes[id]; ok {
			out = append(out, cloneAthlete(item))
		}
	}
	slices.SortFunc(out, func(a, b athlete.Athlete) int { return compareInt64(a.ID, b.ID) })
	return out, nil
}

func (r *AthleteRepository) ListIDsByTeams(_ context.Context, teamIDs []int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0)
	if len(teamIDs) == 0 {
		return out, nil
	}
	for id, item := range r.athletes {
		if item.TeamID != nil && slices.Contains(teamIDs, *item.TeamID) {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (r *AthleteRepository) GetByUserIDs(_ context.Context, userIDs []int64) ([]athlete.Athlete, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]athlete.Athlete, 0)
	for _, item := range r.athletes {
		if item.UserID != nil && slices.Contains(userIDs, *item.UserID) {
			out = append(out, cloneAthlete(item))
		}
	}
	slices.SortFunc(out, func(a, b athlete.Athlete) int { return compareInt64(a.ID, b.ID) })
	return out, nil
}

func cloneAthlete(item athlete.Athlete) athlete.Athlete {
	item.TeamID = cloneID(item.TeamID)
	item.UserID = cloneID(item.UserID)
	return item
}
