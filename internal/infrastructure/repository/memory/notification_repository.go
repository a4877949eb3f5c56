package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/notification"
)

type NotificationRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []notification.Notification
	now    func() time.Time
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{now: time.Now}
}

func (r *NotificationRepository) Create(_ context.Context, n notification.Notification) (notification.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	n.ID = r.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.now().UTC()
	}
	n.EventID = cloneID(n.EventID)
	n.SentAt = cloneTime(n.SentAt)
	r.rows = append(r.rows, n)
	return n, nil
}

func (r *NotificationRepository) ListByEvent(_ context.Context, eventID int64) ([]notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notification.Notification, 0)
	for _, row := range r.rows {
		if row.EventID != nil && *row.EventID == eventID {
			row.EventID = cloneID(row.EventID)
			row.SentAt = cloneTime(row.SentAt)
			out = append(out, row)
		}
	}
	return out, nil
}

// All returns every audit row in insertion order.
func (r *NotificationRepository) All() []notification.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notification.Notification, len(r.rows))
	copy(out, r.rows)
	return out
}
