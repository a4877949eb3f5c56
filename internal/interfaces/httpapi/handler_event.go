package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/team-events/internal/domain/event"
	"github.com/riskibarqy/team-events/internal/usecase"
)

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateEvent")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.eventService.Create(ctx, principal.UserID, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "create event failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventResultToDTO(result))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateEvent")
	defer span.End()

	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	annotateEventID(span, eventID)

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	current, err := h.eventService.Get(ctx, eventID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if current.CreatorID != principal.UserID {
		writeError(ctx, w, fmt.Errorf("%w: only the event creator can update event %d", usecase.ErrForbidden, eventID))
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.eventService.Update(ctx, eventID, req.toInput())
	if err != nil {
		h.logger.WarnContext(ctx, "update event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventResultToDTO(result))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEvent")
	defer span.End()

	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	annotateEventID(span, eventID)

	view, err := h.eventService.Get(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "get event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(view))
}

func (h *Handler) ListEventParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEventParticipants")
	defer span.End()

	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	annotateEventID(span, eventID)

	rows, err := h.eventService.ListParticipants(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "list participants failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, participantsToDTO(rows))
}

func (h *Handler) ListEventNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEventNotifications")
	defer span.End()

	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	annotateEventID(span, eventID)

	rows, err := h.eventService.ListNotifications(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "list notifications failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]notificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, notificationToDTO(row))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyEvents")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	views, err := h.feedService.ListForUser(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list events for user failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]eventDTO, 0, len(views))
	for _, view := range views {
		items = append(items, eventToDTO(view))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (req eventRequest) toInput() usecase.EventInput {
	selection := event.UnsetTeams()
	if req.TeamIDs != nil {
		selection = event.SelectTeams(*req.TeamIDs...)
	}

	return usecase.EventInput{
		Name:       req.Name,
		StartsAt:   req.StartsAt,
		Location:   req.Location,
		TeamID:     req.TeamID,
		CoachID:    req.CoachID,
		Teams:      selection,
		AthleteIDs: req.AthleteIDs,
		InviteeIDs: req.InviteeIDs,
		SendEmail:  req.SendEmail,
		SendPush:   req.SendPush,
	}
}
