package app

import (
	"fmt"

	"github.com/riskibarqy/team-events/external/mailer"
	"github.com/riskibarqy/team-events/external/pushgateway"
	"github.com/riskibarqy/team-events/internal/config"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/infrastructure/notifier"
	"github.com/riskibarqy/team-events/internal/platform/logging"
)

// newSenders builds one sender per channel. A disabled channel falls back to
// a log sender so dispatch still leaves an audit trail.
func newSenders(cfg config.Config, logger *logging.Logger) (map[notification.Channel]notification.Sender, error) {
	senders := make(map[notification.Channel]notification.Sender, 2)

	if cfg.EmailEnabled {
		email, err := mailer.NewResendSender(mailer.Config{
			APIKey:         cfg.ResendAPIKey,
			From:           cfg.EmailFrom,
			BaseURL:        cfg.ResendBaseURL,
			Timeout:        cfg.EmailTimeout,
			Logger:         logger,
			CircuitBreaker: cfg.NotifyCircuit,
		})
		if err != nil {
			return nil, fmt.Errorf("build email sender: %w", err)
		}
		senders[notification.ChannelEmail] = email
	} else {
		senders[notification.ChannelEmail] = notifier.NewLogSender(notification.ChannelEmail, logger)
	}

	if cfg.PushEnabled {
		push, err := pushgateway.NewClient(pushgateway.Config{
			URL:            cfg.PushGatewayURL,
			APIKey:         cfg.PushAPIKey,
			Timeout:        cfg.PushTimeout,
			Logger:         logger,
			CircuitBreaker: cfg.NotifyCircuit,
		})
		if err != nil {
			return nil, fmt.Errorf("build push sender: %w", err)
		}
		senders[notification.ChannelPush] = push
	} else {
		senders[notification.ChannelPush] = notifier.NewLogSender(notification.ChannelPush, logger)
	}

	logger.Info("notification senders ready", "email_enabled", cfg.EmailEnabled, "push_enabled", cfg.PushEnabled)
	return senders, nil
}
