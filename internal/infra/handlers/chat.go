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

type ChatHandlers struct {
	Logger      *logger.Logger
	ChatService Iservices.IChatService
}

func NewChatHandlers(logger *logger.Logger, chatService Iservices.IChatService) *ChatHandlers {
	return &ChatHandlers{Logger: logger, ChatService: chatService}
}

func (ch *ChatHandlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	meetingID := mux.Vars(r)["meetingId"]

	history, err := ch.ChatService.History(r.Context(), meetingID, user)
	if errors.Is(err, Irepository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	if err != nil {
		ch.Logger.Error(fmt.Sprintf("Failed to load chat history for meeting %s: %v", meetingID, err))
		writeError(w, http.StatusInternalServerError, "Failed to load chat history")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (ch *ChatHandlers) SaveHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	meetingID := mux.Vars(r)["meetingId"]

	var body dto.ChatHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	for _, message := range body.History {
		if err := message.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	err := ch.ChatService.SaveHistory(r.Context(), meetingID, user, body.History)
	if errors.Is(err, Irepository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	if err != nil {
		ch.Logger.Error(fmt.Sprintf("Failed to save chat history for meeting %s: %v", meetingID, err))
		writeError(w, http.StatusInternalServerError, "Failed to save chat history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
