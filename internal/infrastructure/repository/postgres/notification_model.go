package postgres

import (
	"database/sql"
	"time"
)

type notificationTableModel struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	EventID   sql.NullInt64  `db:"event_id"`
	Kind      string         `db:"kind"`
	Channel   string         `db:"channel"`
	Title     string         `db:"title"`
	Body      string         `db:"body"`
	Sent      bool           `db:"sent"`
	SentAt    *time.Time     `db:"sent_at"`
	Error     sql.NullString `db:"error"`
	CreatedAt time.Time      `db:"created_at"`
}

type notificationInsertModel struct {
	UserID  int64          `db:"user_id"`
	EventID sql.NullInt64  `db:"event_id"`
	Kind    string         `db:"kind"`
	Channel string         `db:"channel"`
	Title   string         `db:"title"`
	Body    string         `db:"body"`
	Sent    bool           `db:"sent"`
	SentAt  *time.Time     `db:"sent_at"`
	Error   sql.NullString `db:"error"`
}
