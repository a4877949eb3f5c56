package httpapi

import (
	"time"

	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/domain/notification"
	"github.com/riskibarqy/team-events/internal/domain/participant"
	"github.com/riskibarqy/team-events/internal/usecase"
)

// eventRequest distinguishes an absent team_ids (keep or derive) from an
// explicit list, where [] clears every link.
type eventRequest struct {
	Name       string    `json:"name" validate:"required,max=200"`
	StartsAt   time.Time `json:"starts_at"`
	Location   string    `json:"location" validate:"max=500"`
	TeamID     *int64    `json:"team_id" validate:"omitempty,gt=0"`
	CoachID    *int64    `json:"coach_id" validate:"omitempty,gt=0"`
	TeamIDs    *[]int64  `json:"team_ids" validate:"omitempty,dive,gt=0"`
	AthleteIDs []int64   `json:"athlete_ids" validate:"omitempty,dive,gt=0"`
	InviteeIDs []int64   `json:"invitee_ids" validate:"omitempty,dive,gt=0"`
	SendEmail  bool      `json:"send_email"`
	SendPush   bool      `json:"send_push"`
}

type rsvpRequest struct {
	Status    string `json:"status" validate:"required,oneof=confirmed declined maybe"`
	AthleteID *int64 `json:"athlete_id" validate:"omitempty,gt=0"`
}

type reminderRequest struct {
	Channels []string `json:"channels" validate:"required,min=1,dive,oneof=email push"`
}

type eventDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartsAt  time.Time `json:"starts_at"`
	Location  string    `json:"location"`
	TeamID    *int64    `json:"team_id"`
	TeamIDs   []int64   `json:"team_ids"`
	CreatorID int64     `json:"creator_id"`
	CoachID   *int64    `json:"coach_id"`
	EmailSent bool      `json:"email_sent"`
	PushSent  bool      `json:"push_sent"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type eventResultDTO struct {
	Event                eventDTO         `json:"event"`
	NewParticipants      []participantDTO `json:"new_participants"`
	NotificationsWritten int              `json:"notifications_written"`
}

type participantDTO struct {
	ID          int64      `json:"id"`
	EventID     int64      `json:"event_id"`
	UserID      *int64     `json:"user_id"`
	AthleteID   *int64     `json:"athlete_id"`
	Status      string     `json:"status"`
	InvitedAt   time.Time  `json:"invited_at"`
	RespondedAt *time.Time `json:"responded_at"`
}

type notificationDTO struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	EventID   *int64     `json:"event_id"`
	Kind      string     `json:"kind"`
	Channel   string     `json:"channel"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Sent      bool       `json:"sent"`
	SentAt    *time.Time `json:"sent_at"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type reminderResultDTO struct {
	EventID              int64 `json:"event_id"`
	NotificationsWritten int   `json:"notifications_written"`
}

func eventToDTO(view event.View) eventDTO {
	teamIDs := view.TeamIDs
	if teamIDs == nil {
		teamIDs = []int64{}
	}
	return eventDTO{
		ID:        view.ID,
		Name:      view.Name,
		StartsAt:  view.StartsAt.UTC(),
		Location:  view.Location,
		TeamID:    view.TeamID,
		TeamIDs:   teamIDs,
		CreatorID: view.CreatorID,
		CoachID:   view.CoachID,
		EmailSent: view.EmailSent,
		PushSent:  view.PushSent,
		CreatedAt: view.CreatedAt.UTC(),
		UpdatedAt: view.UpdatedAt.UTC(),
	}
}

func eventResultToDTO(result usecase.EventResult) eventResultDTO {
	return eventResultDTO{
		Event:                eventToDTO(result.View),
		NewParticipants:      participantsToDTO(result.NewParticipants),
		NotificationsWritten: result.NotificationsWritten,
	}
}

func participantToDTO(p participant.Participant) participantDTO {
	return participantDTO{
		ID:          p.ID,
		EventID:     p.EventID,
		UserID:      p.UserID,
		AthleteID:   p.AthleteID,
		Status:      string(p.Status),
		InvitedAt:   p.InvitedAt.UTC(),
		RespondedAt: p.RespondedAt,
	}
}

func participantsToDTO(rows []participant.Participant) []participantDTO {
	items := make([]participantDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, participantToDTO(row))
	}
	return items
}

func notificationToDTO(n notification.Notification) notificationDTO {
	return notificationDTO{
		ID:        n.ID,
		UserID:    n.UserID,
		EventID:   n.EventID,
		Kind:      string(n.Kind),
		Channel:   string(n.Channel),
		Title:     n.Title,
		Body:      n.Body,
		Sent:      n.Sent,
		SentAt:    n.SentAt,
		Error:     n.Error,
		CreatedAt: n.CreatedAt.UTC(),
	}
}
