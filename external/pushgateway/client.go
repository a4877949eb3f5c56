package pushgateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/platform/logging"
	"github.com/riskibarqy/team-events/internal/platform/resilience"
	"github.com/riskibarqy/team-events/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

var errPushTransient = crerr.New("push gateway transient failure")

type Config struct {
	URL            string
	APIKey         string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts push notifications to an HTTP push gateway.
type Client struct {
	http    *fasthttp.Client
	url     string
	apiKey  string
	timeout time.Duration
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
}

func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, crerr.Newf("push gateway url must be http(s), got %q", endpoint)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	breaker := resilience.NewFromConfig("push_gateway", cfg.CircuitBreaker, logger)

	return &Client{
		http: &fasthttp.Client{
			Name:                     "team-events-push",
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			NoDefaultUserAgentHeader: true,
		},
		url:     endpoint,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: timeout,
		logger:  logger,
		breaker: breaker,
	}, nil
}

type pushRequest struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type pushResponse struct {
	Accepted bool   `json:"accepted"`
	ID       string `json:"id"`
	Error    string `json:"error"`
}

func (c *Client) Send(ctx context.Context, msg notification.Message) (bool, error) {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return false, crerr.New("push token is required")
	}

	encoded, err := sonic.Marshal(pushRequest{
		To:    to,
		Title: msg.Subject,
		Body:  msg.Body,
		Data:  msg.Data,
	})
	if err != nil {
		return false, crerr.Wrap(err, "marshal push payload")
	}

	var decoded pushResponse
	err = c.breaker.Execute(func() error {
		raw, err := c.post(ctx, encoded)
		if err != nil {
			return err
		}
		if err := sonic.Unmarshal(raw, &decoded); err != nil {
			return crerr.Wrap(err, "decode push gateway response")
		}
		return nil
	}, isCircuitFailure)
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "push gateway circuit breaker rejected request", "state", c.breaker.State())
			return false, fmt.Errorf("%w: push gateway is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return false, err
	}

	if !decoded.Accepted {
		c.logger.WarnContext(ctx, "push gateway did not accept message", "reason", decoded.Error)
		return false, nil
	}
	return true, nil
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(payload)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.SetBody(buf.B)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, ctx.Err()
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "post push gateway"), errPushTransient)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	switch {
	case status >= 200 && status < 300:
		return body, nil
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		return nil, crerr.Mark(crerr.Newf("push gateway status=%d body=%s", status, abbreviate(body)), errPushTransient)
	default:
		return nil, crerr.Newf("push gateway status=%d body=%s", status, abbreviate(body))
	}
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errPushTransient)
}

func abbreviate(body []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(body))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
