package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/team-events/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo users, teams and athletes into an empty
// database. It is a no-op once any team exists.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM teams`); err != nil {
		return fmt.Errorf("count teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, u := range memory.SeedUsers() {
		err := execNamed(ctx, tx, `
INSERT INTO users (id, name, email, push_token)
VALUES (:id, :name, :email, :push_token)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":         u.ID,
			"name":       u.Name,
			"email":      nullString(u.Email),
			"push_token": nullString(u.PushToken),
		})
		if err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}

	for _, t := range memory.SeedTeams() {
		err := execNamed(ctx, tx, `
INSERT INTO teams (id, name, coach_id)
VALUES (:id, :name, :coach_id)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":       t.ID,
			"name":     t.Name,
			"coach_id": nullInt64(t.CoachID),
		})
		if err != nil {
			return fmt.Errorf("seed team %d: %w", t.ID, err)
		}
	}

	for _, a := range memory.SeedAthletes() {
		err := execNamed(ctx, tx, `
INSERT INTO athletes (id, team_id, user_id, first_name, last_name)
VALUES (:id, :team_id, :user_id, :first_name, :last_name)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":         a.ID,
			"team_id":    nullInt64(a.TeamID),
			"user_id":    nullInt64(a.UserID),
			"first_name": a.FirstName,
			"last_name":  a.LastName,
		})
		if err != nil {
			return fmt.Errorf("seed athlete %d: %w", a.ID, err)
		}
	}

	for _, table := range []string{"users", "teams", "athletes"} {
		stmt := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))`, table, table)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("advance %s sequence: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func execNamed(ctx context.Context, tx *sqlx.Tx, query string, arg map[string]any) error {
	sqlQuery, args, err := sqlx.Named(query, arg)
	if err != nil {
		return fmt.Errorf("bind query: %w", err)
	}
	sqlQuery = tx.Rebind(sqlQuery)
	_, err = tx.ExecContext(ctx, sqlQuery, args...)
	return err
}
