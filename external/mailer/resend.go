package mailer

import (
	"context"
	stderrors "errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/resend/resend-go/v2"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/platform/logging"
	"github.com/riskibarqy/team-events/internal/platform/resilience"
	"github.com/riskibarqy/team-events/internal/usecase"
)

var errResendTransient = crerr.New("resend transient failure")

type Config struct {
	APIKey         string
	From           string
	BaseURL        string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// ResendSender delivers email notifications through the Resend API.
type ResendSender struct {
	client  *resend.Client
	from    string
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
}

func NewResendSender(cfg Config) (*ResendSender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, crerr.New("resend api key is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, crerr.New("email from address is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	client := resend.NewCustomClient(httpClient, strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		parsed, err := url.Parse(strings.TrimRight(base, "/") + "/")
		if err != nil {
			return nil, crerr.Wrap(err, "parse resend base url")
		}
		client.BaseURL = parsed
	}

	breaker := resilience.NewFromConfig("resend", cfg.CircuitBreaker, logger)

	return &ResendSender{
		client:  client,
		from:    strings.TrimSpace(cfg.From),
		logger:  logger,
		breaker: breaker,
	}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg notification.Message) (bool, error) {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return false, crerr.New("email recipient is required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: msg.Subject,
		Text:    msg.Body,
		Html:    renderHTML(msg.Body),
	}
	for _, att := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Content:     att.Content,
		})
	}

	var emailID string
	err := s.breaker.Execute(func() error {
		sent, err := s.client.Emails.SendWithContext(ctx, params)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return crerr.Mark(crerr.Wrap(err, "send resend email"), errResendTransient)
		}
		if sent != nil {
			emailID = sent.Id
		}
		return nil
	}, isCircuitFailure)
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			s.logger.WarnContext(ctx, "resend circuit breaker rejected request", "state", s.breaker.State())
			return false, fmt.Errorf("%w: email provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return false, err
	}

	if emailID == "" {
		s.logger.WarnContext(ctx, "resend accepted email without id", "subject", msg.Subject)
		return false, nil
	}
	s.logger.DebugContext(ctx, "email sent", "email_id", emailID)
	return true, nil
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errResendTransient)
}

func renderHTML(body string) string {
	lines := strings.Split(html.EscapeString(body), "\n")
	return "<p>" + strings.Join(lines, "<br>") + "</p>"
}
