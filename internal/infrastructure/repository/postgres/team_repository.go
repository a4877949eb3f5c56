package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/team"
	qb "github.com/riskibarqy/team-events/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByIDs(ctx context.Context, ids []int64) ([]team.Team, error) {
	ids = event.NormalizeIDs(ids)
	if len(ids) == 0 {
		return []team.Team{}, nil
	}

	query, args, err := qb.Select("id", "name", "coach_id").
		From("teams").
		Where(qb.InInt64("id", ids)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			ID:      row.ID,
			Name:    row.Name,
			CoachID: int64Ptr(row.CoachID),
		})
	}
	return out, nil
}

func (r *TeamRepository) ListIDsByCoach(ctx context.Context, userID int64) ([]int64, error) {
	query, args, err := qb.Select("id").
		From("teams").
		Where(qb.Eq("coach_id", userID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list coached teams query: %w", err)
	}

	ids := make([]int64, 0)
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list coached teams user id=%d: %w", userID, err)
	}
	return ids, nil
}
