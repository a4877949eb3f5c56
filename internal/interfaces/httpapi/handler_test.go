package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/team-events/internal/domain/athlete"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/domain/team"
	"github.com/riskibarqy/team-events/internal/domain/user"
	"github.com/riskibarqy/team-events/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/team-events/internal/platform/logging"
	"github.com/riskibarqy/team-events/internal/usecase"
)

const testJobToken = "job-secret"

type staticVerifier map[string]user.Principal

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return principal, nil
}

type acceptSender struct{}

func (acceptSender) Send(context.Context, notification.Message) (bool, error) {
	return true, nil
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func int64Ptr(v int64) *int64 { return &v }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	events := memory.NewEventRepository(nil)
	participants := memory.NewParticipantRepository(nil)
	athletes := memory.NewAthleteRepository([]athlete.Athlete{
		{ID: 40, TeamID: int64Ptr(5), FirstName: "Sam", LastName: "Stone"},
		{ID: 41, TeamID: int64Ptr(5), UserID: int64Ptr(3), FirstName: "Riley", LastName: "Runner"},
		{ID: 42, TeamID: int64Ptr(7), FirstName: "Alex", LastName: "Kim"},
	})
	teams := memory.NewTeamRepository([]team.Team{
		{ID: 5, Name: "Varsity", CoachID: int64Ptr(1)},
		{ID: 7, Name: "Junior Varsity"},
	})
	users := memory.NewUserRepository([]user.User{
		{ID: 1, Name: "Dana Coach", Email: "coach@example.com", PushToken: "push-coach"},
		{ID: 3, Name: "Riley Runner", PushToken: "push-riley"},
	})
	notifications := memory.NewNotificationRepository()

	resolver := usecase.NewTeamResolver(events, teams, athletes)
	roster := usecase.NewRosterSynchronizer(athletes, participants, logger)
	dispatcher := usecase.NewNotificationDispatcher(users, notifications, map[notification.Channel]notification.Sender{
		notification.ChannelEmail: acceptSender{},
		notification.ChannelPush:  acceptSender{},
	}, usecase.DispatcherConfig{}, logger)
	eventService := usecase.NewEventService(events, participants, athletes, users, notifications, resolver, roster, dispatcher, logger)
	rsvpService := usecase.NewRSVPService(events, participants, athletes, users, dispatcher, usecase.RSVPConfig{}, logger)
	feedService := usecase.NewEventFeedService(events, participants, teams)

	handler := NewHandler(eventService, rsvpService, feedService, logger)
	verifier := staticVerifier{
		"coach-token":   {UserID: 1, Email: "coach@example.com"},
		"athlete-token": {UserID: 3},
	}
	return NewRouter(handler, verifier, logger, RouterConfig{InternalJobToken: testJobToken})
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var out envelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body.String(), err)
	}
	return out
}

func createEvent(t *testing.T, router http.Handler, body string) eventResultDTO {
	t.Helper()

	rec := doRequest(t, router, http.MethodPost, "/v1/events", "coach-token", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeEnvelope[eventResultDTO](t, rec).Data
}

func TestCreateEventDerivesTeamsFromLegacyTeamAndAthletes(t *testing.T) {
	router := newTestRouter(t)

	result := createEvent(t, router, `{"name":"Practice","starts_at":"2026-07-01T17:00:00Z","team_id":5,"athlete_ids":[42],"send_email":true}`)

	if got := result.Event.TeamIDs; len(got) != 2 || got[0] != 5 || got[1] != 7 {
		t.Fatalf("expected team_ids [5 7], got %v", got)
	}
	if result.Event.CreatorID != 1 {
		t.Fatalf("expected creator 1, got %d", result.Event.CreatorID)
	}
	if len(result.NewParticipants) != 3 {
		t.Fatalf("expected 3 new participants, got %+v", result.NewParticipants)
	}
}

func TestUpdateEventWithEmptyTeamIDsClearsLinks(t *testing.T) {
	router := newTestRouter(t)
	created := createEvent(t, router, `{"name":"Practice","starts_at":"2026-07-01T17:00:00Z","team_ids":[5]}`)

	path := fmt.Sprintf("/v1/events/%d", created.Event.ID)
	rec := doRequest(t, router, http.MethodPut, path, "coach-token", `{"name":"Practice moved","starts_at":"2026-07-02T17:00:00Z","team_ids":[]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update event: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeEnvelope[eventResultDTO](t, rec).Data
	if updated.Event.TeamIDs == nil || len(updated.Event.TeamIDs) != 0 {
		t.Fatalf("expected empty team_ids, got %v", updated.Event.TeamIDs)
	}

	rec = doRequest(t, router, http.MethodGet, path, "coach-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get event: expected 200, got %d", rec.Code)
	}
	if got := decodeEnvelope[eventDTO](t, rec).Data; got.Name != "Practice moved" || len(got.TeamIDs) != 0 {
		t.Fatalf("unexpected event after update: %+v", got)
	}
}

func TestUpdateEventRejectsNonCreator(t *testing.T) {
	router := newTestRouter(t)
	created := createEvent(t, router, `{"name":"Practice","starts_at":"2026-07-01T17:00:00Z","team_ids":[5]}`)

	path := fmt.Sprintf("/v1/events/%d", created.Event.ID)
	rec := doRequest(t, router, http.MethodPut, path, "athlete-token", `{"name":"Hijacked","starts_at":"2026-07-02T17:00:00Z"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeEnvelope[eventDTO](t, rec); got.Error == nil || got.Error.Status != "PERMISSION_DENIED" {
		t.Fatalf("unexpected error envelope: %s", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/events/999", "coach-token", `{"name":"x","starts_at":"2026-07-02T17:00:00Z"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown event, got %d", rec.Code)
	}
}

func TestRespondToEventUsesAthleteProfileRow(t *testing.T) {
	router := newTestRouter(t)
	created := createEvent(t, router, `{"name":"Game","starts_at":"2026-07-01T17:00:00Z","team_ids":[5]}`)

	path := fmt.Sprintf("/v1/events/%d/rsvp", created.Event.ID)
	rec := doRequest(t, router, http.MethodPost, path, "athlete-token", `{"status":"confirmed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rsvp: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	row := decodeEnvelope[participantDTO](t, rec).Data
	if row.Status != "confirmed" {
		t.Fatalf("expected confirmed, got %s", row.Status)
	}
	if row.AthleteID == nil || *row.AthleteID != 41 {
		t.Fatalf("expected athlete 41 roster row, got %+v", row)
	}

	rec = doRequest(t, router, http.MethodGet, fmt.Sprintf("/v1/events/%d/participants", created.Event.ID), "coach-token", "")
	rows := decodeEnvelope[[]participantDTO](t, rec).Data
	if len(rows) != 2 {
		t.Fatalf("rsvp must not add a row, got %+v", rows)
	}
}

func TestRespondToEventRejectsInvalidStatus(t *testing.T) {
	router := newTestRouter(t)
	created := createEvent(t, router, `{"name":"Game","starts_at":"2026-07-01T17:00:00Z"}`)

	rec := doRequest(t, router, http.MethodPost, fmt.Sprintf("/v1/events/%d/rsvp", created.Event.ID), "athlete-token", `{"status":"invited"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListMyEventsUnionsCreatedAndInvitedEvents(t *testing.T) {
	router := newTestRouter(t)
	createEvent(t, router, `{"name":"Old","starts_at":"2026-07-01T17:00:00Z","team_ids":[7]}`)
	createEvent(t, router, `{"name":"New","starts_at":"2026-07-08T17:00:00Z","team_ids":[5],"invitee_ids":[3]}`)

	rec := doRequest(t, router, http.MethodGet, "/v1/me/events", "athlete-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	items := decodeEnvelope[[]eventDTO](t, rec).Data
	if len(items) != 1 || items[0].Name != "New" {
		t.Fatalf("invited user should only see the event they were invited to, got %+v", items)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/me/events", "coach-token", "")
	items = decodeEnvelope[[]eventDTO](t, rec).Data
	if len(items) != 2 || items[0].Name != "New" {
		t.Fatalf("creator should see both events newest first, got %+v", items)
	}
}

func TestEventRoutesErrors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{name: "missing token", method: http.MethodGet, path: "/v1/me/events", want: http.StatusUnauthorized},
		{name: "unknown token", method: http.MethodGet, path: "/v1/me/events", token: "nope", want: http.StatusUnauthorized},
		{name: "unknown event", method: http.MethodGet, path: "/v1/events/999", token: "coach-token", want: http.StatusNotFound},
		{name: "bad event id", method: http.MethodGet, path: "/v1/events/abc", token: "coach-token", want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/v1/events", token: "coach-token", body: `{"name":"x","starts_at":"2026-07-01T17:00:00Z","teams":[5]}`, want: http.StatusBadRequest},
		{name: "unknown team", method: http.MethodPost, path: "/v1/events", token: "coach-token", body: `{"name":"x","starts_at":"2026-07-01T17:00:00Z","team_ids":[99]}`, want: http.StatusNotFound},
		{name: "negative athlete", method: http.MethodPost, path: "/v1/events", token: "coach-token", body: `{"name":"x","starts_at":"2026-07-01T17:00:00Z","athlete_ids":[-1]}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSendEventReminderRequiresJobToken(t *testing.T) {
	router := newTestRouter(t)
	created := createEvent(t, router, `{"name":"Game","starts_at":"2026-07-01T17:00:00Z","team_ids":[5]}`)
	path := fmt.Sprintf("/v1/internal/events/%d/reminders", created.Event.ID)

	rec := doRequest(t, router, http.MethodPost, path, "", `{"channels":["push"]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"channels":["push"]}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decodeEnvelope[reminderResultDTO](t, rec).Data
	if result.NotificationsWritten != 1 {
		t.Fatalf("expected one push reminder for user 3, got %d", result.NotificationsWritten)
	}
}
