package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/team-events/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[int64]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	items := make(map[int64]team.Team, len(teams))
	for _, item := range teams {
		items[item.ID] = item
	}
	return &TeamRepository{teams: items}
}

func (r *TeamRepository) GetByIDs(_ context.Context, ids []int64) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.teams[id]; ok {
			item.CoachID = cloneID(item.CoachID)
			out = append(out, item)
		}
	}
	slices.SortFunc(out, func(a, b team.Team) int { return compareInt64(a.ID, b.ID) })
	return out, nil
}

func (r *TeamRepository) ListIDsByCoach(_ context.Context, userID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0)
	for id, item := range r.teams {
		if item.CoachID != nil && *item.CoachID == userID {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}
