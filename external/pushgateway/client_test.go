package pushgateway

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/platform/resilience"
	"github.com/riskibarqy/team-events/internal/usecase"
)

func TestClientSendPostsPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer push-key" {
			t.Fatalf("unexpected authorization header: %s", got)
		}

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		var req pushRequest
		if err := sonic.Unmarshal(raw, &req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.To != "push-coach" || req.Title != "Reminder: Practice" {
			t.Fatalf("unexpected payload: %+v", req)
		}
		if req.Data["event_id"] != "12" {
			t.Fatalf("unexpected data: %+v", req.Data)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accepted":true,"id":"p-1"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL + "/v1/push", APIKey: "push-key"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	delivered, err := client.Send(t.Context(), notification.Message{
		To:      "push-coach",
		Subject: "Reminder: Practice",
		Body:    "Starts soon",
		Data:    map[string]string{"event_id": "12"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !delivered {
		t.Fatalf("expected delivered push")
	}
}

func TestClientSendNotAccepted(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accepted":false,"error":"token expired"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	delivered, err := client.Send(t.Context(), notification.Message{To: "push-old", Subject: "x"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if delivered {
		t.Fatalf("expected undelivered push")
	}
}

func TestClientClientErrorsDoNotTripCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		URL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, err := client.Send(t.Context(), notification.Message{To: "push-bad", Subject: "x"})
		if err == nil {
			t.Fatalf("expected client error")
		}
		if errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("4xx must not open the circuit: %v", err)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 gateway calls, got %d", calls.Load())
	}
}

func TestClientServerErrorsOpenCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		URL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Send(t.Context(), notification.Message{To: "push-coach", Subject: "x"}); err == nil {
		t.Fatalf("expected gateway error")
	}
	_, err = client.Send(t.Context(), notification.Message{To: "push-coach", Subject: "x"})
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one gateway call, got %d", calls.Load())
	}
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{URL: "gateway.local"}); err == nil {
		t.Fatalf("expected invalid url error")
	}
}
