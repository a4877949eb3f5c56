package notification

import "context"

type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListByEvent(ctx context.Context, eventID int64) ([]Notification, error)
}
