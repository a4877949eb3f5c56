package notification

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindInvitation Kind = "invitation"
	KindUpdate     Kind = "update"
	KindReminder   Kind = "reminder"
	KindRSVP       Kind = "rsvp"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
)

func ParseChannel(v string) (Channel, error) {
	switch c := Channel(v); c {
	case ChannelEmail, ChannelPush:
		return c, nil
	default:
		return "", fmt.Errorf("unknown notification channel %q", v)
	}
}

// Notification is one append-only audit row for a delivery attempt.
type Notification struct {
	ID        int64
	UserID    int64
	EventID   *int64
	Kind      Kind
	Channel   Channel
	Title     string
	Body      string
	Sent      bool
	SentAt    *time.Time
	Error     string
	CreatedAt time.Time
}

// Attachment is an opaque file passed through to a channel sender.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is what a channel sender delivers. To is an email address or a
// push token depending on the channel.
type Message struct {
	To          string
	Subject     string
	Body        string
	Data        map[string]string
	Attachments []Attachment
}
