package notifier

import (
	"context"

	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/platform/logging"
)

// LogSender stands in for a disabled channel. It logs the message and
// reports it as delivered.
type LogSender struct {
	channel notification.Channel
	logger  *logging.Logger
}

func NewLogSender(channel notification.Channel, logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{channel: channel, logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg notification.Message) (bool, error) {
	s.logger.InfoContext(ctx, "notification delivered to log",
		"channel", string(s.channel),
		"to", msg.To,
		"subject", msg.Subject,
		"attachments", len(msg.Attachments),
	)
	return true, nil
}
