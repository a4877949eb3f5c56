package postgres

import (
	"database/sql"
	"time"
)

type participantTableModel struct {
	ID          int64         `db:"id"`
	EventID     int64         `db:"event_id"`
	UserID      sql.NullInt64 `db:"user_id"`
	AthleteID   sql.NullInt64 `db:"athlete_id"`
	Status      string        `db:"status"`
	InvitedAt   time.Time     `db:"invited_at"`
	RespondedAt *time.Time    `db:"responded_at"`
}

type participantInsertModel struct {
	EventID     int64         `db:"event_id"`
	UserID      sql.NullInt64 `db:"user_id"`
	AthleteID   sql.NullInt64 `db:"athlete_id"`
	Status      string        `db:"status"`
	InvitedAt   time.Time     `db:"invited_at"`
	RespondedAt *time.Time    `db:"responded_at"`
}
