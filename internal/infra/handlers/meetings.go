package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"meetscribe/internal/domain/dto"
	Irepository "meetscribe/internal/domain/interfaces/repository"
	Iservices "meetscribe/internal/domain/interfaces/services"
	"meetscribe/internal/infra/logger"
	"meetscribe/internal/middleware"
)

type MeetingHandlers struct {
	Logger         *logger.Logger
	MeetingService Iservices.IMeetingService
	SegmentService Iservices.ISegmentService
}

func NewMeetingHandlers(logger *logger.Logger, meetingService Iservices.IMeetingService, segmentService Iservices.ISegmentService) *MeetingHandlers {
	return &MeetingHandlers{Logger: logger, MeetingService: meetingService, SegmentService: segmentService}
}

// CreateMeeting resolves or creates the session for the caller's meeting
// identifier and returns its descriptor.
func (mh *MeetingHandlers) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var body dto.MeetingCreate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	if err := body.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := mh.MeetingService.ResolveOrCreate(r.Context(), body.MeetingIdentifier, user, body.Title)
	if err != nil {
		mh.Logger.Error(fmt.Sprintf("Failed to resolve meeting %s: %v", body.MeetingIdentifier, err))
		writeError(w, http.StatusInternalServerError, "Failed to resolve meeting")
		return
	}

	writeJSON(w, http.StatusOK, dto.MeetingOut{
		SessionKey: session.SessionKey,
		MeetingID:  session.MeetingID,
		UserID:     session.UserID,
		Title:      session.Title,
		CreatedAt:  session.CreatedAt,
	})
}

// AddSegment validates the submitted segment, resolves its write-target
// session and enqueues it. 202 means buffered, not durable.
func (mh *MeetingHandlers) AddSegment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	meetingID := mux.Vars(r)["meetingId"]

	var segment dto.SegmentCreate
	if err := json.NewDecoder(r.Body).Decode(&segment); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	if err := segment.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := mh.MeetingService.ResolveOrCreate(r.Context(), meetingID, user, "")
	if err != nil {
		mh.Logger.Error(fmt.Sprintf("Failed to resolve session for meeting %s: %v", meetingID, err))
		writeError(w, http.StatusInternalServerError, "Failed to resolve meeting")
		return
	}

	if err := mh.SegmentService.EnqueueSegment(r.Context(), session.SessionKey, segment); err != nil {
		// Buffering store unavailable: fail fast so the caller retries.
		writeError(w, http.StatusServiceUnavailable, "Segment buffering unavailable, try again")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Segment accepted for batch processing"})
}

// GetMeeting returns the reconciled transcript of the active session, or
// 404 when there is none (including a latest session past the continuation
// window).
func (mh *MeetingHandlers) GetMeeting(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	meetingID := mux.Vars(r)["meetingId"]

	transcript, err := mh.MeetingService.GetTranscript(r.Context(), meetingID, user)
	if errors.Is(err, Irepository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	if err != nil {
		mh.Logger.Error(fmt.Sprintf("Failed to load transcript for meeting %s: %v", meetingID, err))
		writeError(w, http.StatusInternalServerError, "Failed to load transcript")
		return
	}

	writeJSON(w, http.StatusOK, transcript)
}

// ListMeetings returns the caller's sessions with their speaker sets,
// newest first.
func (mh *MeetingHandlers) ListMeetings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	meetings, err := mh.MeetingService.ListMeetings(r.Context(), user)
	if err != nil {
		mh.Logger.Error(fmt.Sprintf("Failed to list meetings for user %s: %v", user.ID, err))
		writeError(w, http.StatusInternalServerError, "Failed to list meetings")
		return
	}

	writeJSON(w, http.StatusOK, meetings)
}
