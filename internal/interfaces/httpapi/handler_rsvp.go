package httpapi

import (
	"net/http"

	"github.com/riskibarqy/team-events/internal/domain/participant"
)

func (h *Handler) RespondToEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RespondToEvent")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	annotateEventID(span, eventID)

	var req rsvpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	// athlete_id responds for an athlete without an account.
	userID := principal.UserID
	actor := participant.Actor{UserID: &userID}
	if req.AthleteID != nil {
		actor = participant.Actor{AthleteID: req.AthleteID}
	}

	row, err := h.rsvpService.Respond(ctx, eventID, actor, participant.Status(req.Status))
	if err != nil {
		h.logger.WarnContext(ctx, "rsvp failed", "event_id", eventID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, participantToDTO(row))
}
