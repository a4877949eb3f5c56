package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/team-events/internal/domain/athlete"
	"github.com/riskibarqy/team-events/internal/domain/event"
	qb "github.com/riskibarqy/team-events/internal/platform/querybuilder"
)

var athleteColumns = []string{"id", "team_id", "user_id", "first_name", "last_name"}

type AthleteRepository struct {
	db *sqlx.DB
}

func NewAthleteRepository(db *sqlx.DB) *AthleteRepository {
	return &AthleteRepository{db: db}
}

func (r *AthleteRepository) GetByIDs(ctx context.Context, ids []int64) ([]athlete.Athlete, error) {
	ids = event.NormalizeIDs(ids)
	if len(ids) == 0 {
		return []athlete.Athlete{}, nil
	}
	return r.list(ctx, "get athletes", qb.InInt64("id", ids))
}

func (r *AthleteRepository) GetByUserIDs(ctx context.Context, userIDs []int64) ([]athlete.Athlete, error) {
	userIDs = event.NormalizeIDs(userIDs)
	if len(userIDs) == 0 {
		return []athlete.Athlete{}, nil
	}
	return r.list(ctx, "get athletes by users", qb.InInt64("user_id", userIDs))
}

func (r *AthleteRepository) ListIDsByTeams(ctx context.Context, teamIDs []int64) ([]int64, error) {
	teamIDs = event.NormalizeIDs(teamIDs)
	if len(teamIDs) == 0 {
		return []int64{}, nil
	}

	query, args, err := qb.Select("id").
		From("athletes").
		Where(qb.InInt64("team_id", teamIDs)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list roster query: %w", err)
	}

	ids := make([]int64, 0)
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list roster teams=%v: %w", teamIDs, err)
	}
	return ids, nil
}

func (r *AthleteRepository) list(ctx context.Context, op string, condition qb.Condition) ([]athlete.Athlete, error) {
	query, args, err := qb.Select(athleteColumns...).
		From("athletes").
		Where(condition).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	var rows []athleteTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]athlete.Athlete, 0, len(rows))
	for _, row := range rows {
		out = append(out, athlete.Athlete{
			ID:        row.ID,
			TeamID:    int64Ptr(row.TeamID),
			UserID:    int64Ptr(row.UserID),
			FirstName: row.FirstName,
			LastName:  row.LastName,
		})
	}
	return out, nil
}
