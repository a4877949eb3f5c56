package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/team-events/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[int64]user.User
}

func NewUserRepository(users []user.User) *UserRepository {
	items := make(map[int64]user.User, len(users))
	for _, item := range users {
		items[item.ID] = item
	}
	return &UserRepository{users: items}
}

func (r *UserRepository) GetByIDs(_ context.Context, ids []int64) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if item, ok := r.users[id]; ok {
			out = append(out, item)
		}
	}
	slices.SortFunc(out, func(a, b user.User) int { return compareInt64(a.ID, b.ID) })
	return out, nil
}
