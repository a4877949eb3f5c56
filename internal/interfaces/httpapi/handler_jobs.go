package httpapi

import (
	"net/http"

	"github.com/riskibarqy/team-events/internal/domain/notification"
)

func (h *Handler) SendEventReminder(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SendEventReminder")
	defer span.End()

	eventID, err := pathID(r, "eventID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	annotateEventID(span, eventID)

	var req reminderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	channels := make([]notification.Channel, 0, len(req.Channels))
	for _, raw := range req.Channels {
		channels = append(channels, notification.Channel(raw))
	}

	written, err := h.eventService.SendReminder(ctx, eventID, channels)
	if err != nil {
		h.logger.WarnContext(ctx, "send reminder failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "event reminder dispatched", "event_id", eventID, "notifications_written", written)
	writeSuccess(ctx, w, http.StatusAccepted, reminderResultDTO{
		EventID:              eventID,
		NotificationsWritten: written,
	})
}
