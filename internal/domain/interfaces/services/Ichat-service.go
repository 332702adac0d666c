package services

import (
	"context"

	"meetscribe/internal/domain/dto"
	"meetscribe/internal/domain/entities"
)

type IChatService interface {
	History(ctx context.Context, meetingID string, user entities.User) ([]dto.ChatMessageResponse, error)
	SaveHistory(ctx context.Context, meetingID string, user entities.User, history []dto.ChatMessageCreate) error
}
