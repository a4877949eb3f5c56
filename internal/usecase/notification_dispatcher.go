package usecase

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/domain/user"
	"github.com/riskibarqy/team-events/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const defaultDispatchWorkers = 8

type DispatcherConfig struct {
	MaxWorkers int
}

type DispatchInput struct {
	Kind         notification.Kind
	Event        event.Event
	RecipientIDs []int64
	Channels     []notification.Channel
	// Extra is appended to the message body, e.g. the RSVP summary.
	Extra string
}

// NotificationDispatcher fans a message out to recipients over channels and
// writes one audit row per attempt. Per-recipient failures are recorded and
// never returned.
type NotificationDispatcher struct {
	userRepo         user.Repository
	notificationRepo notification.Repository
	senders          map[notification.Channel]notification.Sender
	cfg              DispatcherConfig
	logger           *logging.Logger
	now              func() time.Time
}

func NewNotificationDispatcher(
	userRepo user.Repository,
	notificationRepo notification.Repository,
	senders map[notification.Channel]notification.Sender,
	cfg DispatcherConfig,
	logger *logging.Logger,
) *NotificationDispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultDispatchWorkers
	}

	registered := make(map[notification.Channel]notification.Sender, len(senders))
	for channel, sender := range senders {
		if sender != nil {
			registered[channel] = sender
		}
	}

	return &NotificationDispatcher{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		senders:          registered,
		cfg:              cfg,
		logger:           logger,
		now:              time.Now,
	}
}

type dispatchAttempt struct {
	userID  int64
	channel notification.Channel
	sender  notification.Sender
	message notification.Message
}

// Dispatch returns the number of audit rows written.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, input DispatchInput) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationDispatcher.Dispatch")
	defer span.End()

	switch input.Kind {
	case notification.KindInvitation, notification.KindUpdate, notification.KindReminder, notification.KindRSVP:
	default:
		return 0, fmt.Errorf("%w: unknown notification kind %q", ErrInvalidInput, input.Kind)
	}

	recipientIDs := event.NormalizeIDs(input.RecipientIDs)
	channels := normalizeChannels(input.Channels)
	if len(recipientIDs) == 0 || len(channels) == 0 {
		return 0, nil
	}

	users, err := d.userRepo.GetByIDs(ctx, recipientIDs)
	if err != nil {
		return 0, fmt.Errorf("get recipients: %w", err)
	}

	title, body := composeMessage(input)
	attempts := make([]dispatchAttempt, 0, len(users)*len(channels))
	for _, recipient := range users {
		for _, channel := range channels {
			address := recipientAddress(recipient, channel)
			if address == "" {
				continue
			}
			sender, ok := d.senders[channel]
			if !ok {
				d.logger.WarnContext(ctx, "no sender registered for channel", "channel", channel)
				continue
			}
			attempts = append(attempts, dispatchAttempt{
				userID:  recipient.ID,
				channel: channel,
				sender:  sender,
				message: notification.Message{
					To:      address,
					Subject: title,
					Body:    body,
					Data: map[string]string{
						"kind":     string(input.Kind),
						"event_id": strconv.FormatInt(input.Event.ID, 10),
					},
				},
			})
		}
	}
	if len(attempts) == 0 {
		return 0, nil
	}

	var written atomic.Int64
	p := pool.New().WithMaxGoroutines(d.cfg.MaxWorkers)
	for _, attempt := range attempts {
		p.Go(func() {
			if d.deliver(ctx, input, attempt) {
				written.Add(1)
			}
		})
	}
	p.Wait()

	return int(written.Load()), nil
}

// deliver performs one attempt and reports whether its audit row was written.
func (d *NotificationDispatcher) deliver(ctx context.Context, input DispatchInput, attempt dispatchAttempt) bool {
	delivered, sendErr := safeSend(ctx, attempt.sender, attempt.message)

	row := notification.Notification{
		UserID:  attempt.userID,
		Kind:    input.Kind,
		Channel: attempt.channel,
		Title:   attempt.message.Subject,
		Body:    attempt.message.Body,
		Sent:    delivered && sendErr == nil,
	}
	if input.Event.ID > 0 {
		eventID := input.Event.ID
		row.EventID = &eventID
	}
	switch {
	case sendErr != nil:
		row.Error = sendErr.Error()
	case !delivered:
		row.Error = "not delivered"
	default:
		sentAt := d.now().UTC()
		row.SentAt = &sentAt
	}

	if _, err := d.notificationRepo.Create(ctx, row); err != nil {
		d.logger.ErrorContext(ctx, "write notification audit row failed",
			"user_id", attempt.userID,
			"channel", attempt.channel,
			"kind", input.Kind,
			"error", err,
		)
		return false
	}
	if !row.Sent {
		d.logger.WarnContext(ctx, "notification not delivered",
			"user_id", attempt.userID,
			"channel", attempt.channel,
			"kind", input.Kind,
			"reason", row.Error,
		)
	}
	return true
}

func safeSend(ctx context.Context, sender notification.Sender, msg notification.Message) (delivered bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			delivered = false
			err = fmt.Errorf("sender panic: %v", rec)
		}
	}()
	return sender.Send(ctx, msg)
}

func recipientAddress(u user.User, channel notification.Channel) string {
	switch channel {
	case notification.ChannelEmail:
		if u.HasEmail() {
			return strings.TrimSpace(u.Email)
		}
	case notification.ChannelPush:
		if u.HasPushToken() {
			return strings.TrimSpace(u.PushToken)
		}
	}
	return ""
}

func normalizeChannels(channels []notification.Channel) []notification.Channel {
	out := make([]notification.Channel, 0, len(channels))
	for _, channel := range channels {
		if _, err := notification.ParseChannel(string(channel)); err != nil {
			continue
		}
		out = append(out, channel)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// channelsFor maps the send flags of a mutation to channels.
func channelsFor(sendEmail, sendPush bool) []notification.Channel {
	out := make([]notification.Channel, 0, 2)
	if sendEmail {
		out = append(out, notification.ChannelEmail)
	}
	if sendPush {
		out = append(out, notification.ChannelPush)
	}
	return out
}

func composeMessage(input DispatchInput) (string, string) {
	ev := input.Event
	when := ev.StartsAt.UTC().Format("Mon Jan 2, 2006 15:04 MST")
	details := ev.Name + " on " + when
	if location := strings.TrimSpace(ev.Location); location != "" {
		details += " at " + location
	}

	var title, body string
	switch input.Kind {
	case notification.KindInvitation:
		title = "You're invited: " + ev.Name
		body = "You have been invited to " + details + "."
	case notification.KindUpdate:
		title = "Event updated: " + ev.Name
		body = "Details changed for " + details + "."
	case notification.KindReminder:
		title = "Reminder: " + ev.Name
		body = "Don't forget " + details + "."
	case notification.KindRSVP:
		title = "RSVP for " + ev.Name
		body = "A participant responded to " + details + "."
	}
	if extra := strings.TrimSpace(input.Extra); extra != "" {
		body += " " + extra
	}
	return title, body
}
