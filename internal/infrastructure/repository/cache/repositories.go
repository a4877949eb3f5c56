package cache

import (
	"context"
	"strconv"
	"strings"

	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/team"
	basecache "github.com/riskibarqy/team-events/internal/platform/cache"
)

// TeamRepository caches team lookups. Teams change rarely and every event
// write checks team existence, so reads go through a TTL store.
type TeamRepository struct {
	next  team.Repository
	teams *basecache.Store[[]team.Team]
	ids   *basecache.Store[[]int64]
}

func NewTeamRepository(next team.Repository, teams *basecache.Store[[]team.Team], ids *basecache.Store[[]int64]) *TeamRepository {
	return &TeamRepository{next: next, teams: teams, ids: ids}
}

func (r *TeamRepository) GetByIDs(ctx context.Context, ids []int64) ([]team.Team, error) {
	ids = event.NormalizeIDs(ids)
	if len(ids) == 0 {
		return []team.Team{}, nil
	}

	items, err := r.teams.GetOrLoad(ctx, "team:ids:"+joinIDs(ids), func(ctx context.Context) ([]team.Team, error) {
		items, err := r.next.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		return cloneTeams(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneTeams(items), nil
}

func (r *TeamRepository) ListIDsByCoach(ctx context.Context, userID int64) ([]int64, error) {
	key := "team:coach:" + strconv.FormatInt(userID, 10)
	items, err := r.ids.GetOrLoad(ctx, key, func(ctx context.Context) ([]int64, error) {
		items, err := r.next.ListIDsByCoach(ctx, userID)
		if err != nil {
			return nil, err
		}
		return append([]int64(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]int64{}, items...), nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

func cloneTeams(items []team.Team) []team.Team {
	out := make([]team.Team, 0, len(items))
	for _, item := range items {
		if item.CoachID != nil {
			coach := *item.CoachID
			item.CoachID = &coach
		}
		out = append(out, item)
	}
	return out
}
