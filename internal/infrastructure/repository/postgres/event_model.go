package postgres

import (
	"database/sql"
	"time"
)

type eventTableModel struct {
	ID        int64         `db:"id"`
	Name      string        `db:"name"`
	StartsAt  time.Time     `db:"starts_at"`
	Location  string        `db:"location"`
	TeamID    sql.NullInt64 `db:"team_id"`
	CreatorID int64         `db:"creator_id"`
	CoachID   sql.NullInt64 `db:"coach_id"`
	EmailSent bool          `db:"email_sent"`
	PushSent  bool          `db:"push_sent"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

type eventInsertModel struct {
	Name      string        `db:"name"`
	StartsAt  time.Time     `db:"starts_at"`
	Location  string        `db:"location"`
	TeamID    sql.NullInt64 `db:"team_id"`
	CreatorID int64         `db:"creator_id"`
	CoachID   sql.NullInt64 `db:"coach_id"`
	EmailSent bool          `db:"email_sent"`
	PushSent  bool          `db:"push_sent"`
}

type eventTeamLinkModel struct {
	EventID int64 `db:"event_id"`
	TeamID  int64 `db:"team_id"`
}
