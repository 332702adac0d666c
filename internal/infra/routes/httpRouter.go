package routes

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"meetscribe/internal/infra/handlers"
)

// Pinger is anything whose liveness the health check reports.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Routes struct {
	Mux             *mux.Router
	AuthHandlers    *handlers.AuthHandlers
	MeetingHandlers *handlers.MeetingHandlers
	ChatHandlers    *handlers.ChatHandlers
	AuthMiddleware  func(http.Handler) http.Handler
	Store           Pinger
	Buffer          Pinger
}

func NewRoutes(mux *mux.Router, authHandlers *handlers.AuthHandlers, meetingHandlers *handlers.MeetingHandlers, chatHandlers *handlers.ChatHandlers, authMiddleware func(http.Handler) http.Handler, store, buffer Pinger) *Routes {
	return &Routes{
		Mux:             mux,
		AuthHandlers:    authHandlers,
		MeetingHandlers: meetingHandlers,
		ChatHandlers:    chatHandlers,
		AuthMiddleware:  authMiddleware,
		Store:           store,
		Buffer:          buffer,
	}
}

func (r *Routes) Init() {
	r.Mux.HandleFunc("/auth/google", r.AuthHandlers.GoogleAuth).Methods(http.MethodPost)

	api := r.Mux.PathPrefix("/meetings").Subrouter()
	api.Use(r.AuthMiddleware)
	api.HandleFunc("", r.MeetingHandlers.ListMeetings).Methods(http.MethodGet)
	api.HandleFunc("", r.MeetingHandlers.CreateMeeting).Methods(http.MethodPost)
	api.HandleFunc("/{meetingId}", r.MeetingHandlers.GetMeeting).Methods(http.MethodGet)
	api.HandleFunc("/{meetingId}/segments", r.MeetingHandlers.AddSegment).Methods(http.MethodPost)
	api.HandleFunc("/{meetingId}/chat", r.ChatHandlers.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/{meetingId}/chat", r.ChatHandlers.SaveHistory).Methods(http.MethodPost)

	r.Mux.HandleFunc("/healthCheck", r.healthCheck).Methods(http.MethodGet)
}

func (r *Routes) healthCheck(w http.ResponseWriter, req *http.Request) {
	databaseStatus := "ok"
	bufferStatus := "ok"

	if err := r.Store.Ping(req.Context()); err != nil {
		databaseStatus = "error"
	}
	if err := r.Buffer.Ping(req.Context()); err != nil {
		bufferStatus = "error"
	}

	status := http.StatusOK
	overall := "healthy"
	if databaseStatus != "ok" || bufferStatus != "ok" {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"status":"` + overall + `","dependencies":{"database":"` + databaseStatus + `","buffer":"` + bufferStatus + `"}}`))
}
