package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/user"
	qb "github.com/riskibarqy/team-events/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]user.User, error) {
	ids = event.NormalizeIDs(ids)
	if len(ids) == 0 {
		return []user.User{}, nil
	}

	query, args, err := qb.Select("id", "name", "email", "push_token").
		From("users").
		Where(qb.InInt64("id", ids)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, user.User{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email.String,
			PushToken: row.PushToken.String,
		})
	}
	return out, nil
}
