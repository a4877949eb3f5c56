package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	qb "github.com/riskibarqy/team-events/internal/platform/querybuilder"
)

var notificationColumns = []string{
	"id",
	"user_id",
	"event_id",
	"kind",
	"channel",
	"title",
	"body",
	"sent",
	"sent_at",
	"error",
	"created_at",
}

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	insertModel := notificationInsertModel{
		UserID:  n.UserID,
		EventID: nullInt64(n.EventID),
		Kind:    string(n.Kind),
		Channel: string(n.Channel),
		Title:   n.Title,
		Body:    n.Body,
		Sent:    n.Sent,
		SentAt:  n.SentAt,
		Error:   nullString(n.Error),
	}
	query, args, err := qb.InsertModel("notifications", insertModel, "RETURNING "+joinColumns(notificationColumns))
	if err != nil {
		return notification.Notification{}, fmt.Errorf("build insert notification query: %w", err)
	}

	var row notificationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return notification.Notification{}, fmt.Errorf("insert notification user id=%d: %w", n.UserID, err)
	}
	return notificationFromRow(row), nil
}

func (r *NotificationRepository) ListByEvent(ctx context.Context, eventID int64) ([]notification.Notification, error) {
	query, args, err := qb.Select(notificationColumns...).
		From("notifications").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list notifications query: %w", err)
	}

	var rows []notificationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications event id=%d: %w", eventID, err)
	}

	out := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, notificationFromRow(row))
	}
	return out, nil
}

func notificationFromRow(row notificationTableModel) notification.Notification {
	return notification.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		EventID:   int64Ptr(row.EventID),
		Kind:      notification.Kind(row.Kind),
		Channel:   notification.Channel(row.Channel),
		Title:     row.Title,
		Body:      row.Body,
		Sent:      row.Sent,
		SentAt:    row.SentAt,
		Error:     row.Error.String,
		CreatedAt: row.CreatedAt,
	}
}
