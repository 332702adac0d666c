package services

import (
	"context"
	"fmt"

	"meetscribe/internal/domain/dto"
	"meetscribe/internal/domain/entities"
	Irepository "meetscribe/internal/domain/interfaces/repository"
	"meetscribe/internal/infra/logger"
)

// ChatService stores the chat thread attached to a session. The thread is
// replaced wholesale on save; the client owns the canonical copy while the
// meeting is live.
type ChatService struct {
	Sessions Irepository.SessionRepository
	Chat     Irepository.ChatRepository
	Logger   *logger.Logger
}

func NewChatService(sessions Irepository.SessionRepository, chat Irepository.ChatRepository, logger *logger.Logger) *ChatService {
	return &ChatService{Sessions: sessions, Chat: chat, Logger: logger}
}

func (cs *ChatService) History(ctx context.Context, meetingID string, user entities.User) ([]dto.ChatMessageResponse, error) {
	session, err := cs.Sessions.LatestForBaseKey(ctx, baseSessionKey(meetingID, user))
	if err != nil {
		return nil, err
	}

	messages, err := cs.Chat.HistoryBySession(ctx, session.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("load chat history for %s: %w", session.SessionKey, err)
	}

	history := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		history = append(history, dto.ChatMessageResponse{
			ID:        message.ID,
			Sender:    message.Sender,
			Content:   message.Content,
			CreatedAt: message.CreatedAt,
		})
	}
	return history, nil
}

func (cs *ChatService) SaveHistory(ctx context.Context, meetingID string, user entities.User, history []dto.ChatMessageCreate) error {
	session, err := cs.Sessions.LatestForBaseKey(ctx, baseSessionKey(meetingID, user))
	if err != nil {
		return err
	}

	messages := make([]entities.ChatMessage, 0, len(history))
	for _, message := range history {
		messages = append(messages, entities.ChatMessage{
			SessionKey: session.SessionKey,
			Sender:     message.Sender,
			Content:    message.Content,
			CreatedAt:  message.CreatedAt,
		})
	}

	if err := cs.Chat.ReplaceHistory(ctx, session.SessionKey, messages); err != nil {
		return fmt.Errorf("replace chat history for %s: %w", session.SessionKey, err)
	}
	return nil
}
