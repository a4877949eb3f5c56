package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerEventRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/events", RequireAuth(verifier, http.HandlerFunc(handler.CreateEvent)))
	mux.Handle("GET /v1/events/{eventID}", RequireAuth(verifier, http.HandlerFunc(handler.GetEvent)))
	mux.Handle("PUT /v1/events/{eventID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateEvent)))
	mux.Handle("GET /v1/events/{eventID}/participants", RequireAuth(verifier, http.HandlerFunc(handler.ListEventParticipants)))
	mux.Handle("GET /v1/events/{eventID}/notifications", RequireAuth(verifier, http.HandlerFunc(handler.ListEventNotifications)))
	mux.Handle("POST /v1/events/{eventID}/rsvp", RequireAuth(verifier, http.HandlerFunc(handler.RespondToEvent)))
	mux.Handle("GET /v1/me/events", RequireAuth(verifier, http.HandlerFunc(handler.ListMyEvents)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/events/{eventID}/reminders", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SendEventReminder)))
}
