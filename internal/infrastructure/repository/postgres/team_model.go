package postgres

import "database/sql"

type teamTableModel struct {
	ID      int64         `db:"id"`
	Name    string        `db:"name"`
	CoachID sql.NullInt64 `db:"coach_id"`
}

type athleteTableModel struct {
	ID        int64         `db:"id"`
	TeamID    sql.NullInt64 `db:"team_id"`
	UserID    sql.NullInt64 `db:"user_id"`
	FirstName string        `db:"first_name"`
	LastName  string        `db:"last_name"`
}

type userTableModel struct {
	ID        int64          `db:"id"`
	Name      string         `db:"name"`
	Email     sql.NullString `db:"email"`
	PushToken sql.NullString `db:"push_token"`
}
