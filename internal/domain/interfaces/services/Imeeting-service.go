package services

import (
	"context"

	"meetscribe/internal/domain/dto"
	"meetscribe/internal/domain/entities"
)

// IMeetingService resolves meeting identifiers to sessions and answers
// transcript queries.
type IMeetingService interface {
	// ResolveOrCreate maps (meetingID, user) to the session new segments
	// should be written against, creating a fresh session when the 24h
	// continuation window has passed.
	ResolveOrCreate(ctx context.Context, meetingID string, user entities.User, title string) (entities.Session, error)
	// GetTranscript returns the reconciled transcript of the active session
	// for (meetingID, user). Returns repository.ErrNotFound when no session
	// exists or the latest one is older than the continuation window.
	GetTranscript(ctx context.Context, meetingID string, user entities.User) (dto.TranscriptOut, error)
	// ListMeetings returns the user's sessions, newest first, each with its
	// distinct speaker set.
	ListMeetings(ctx context.Context, user entities.User) ([]dto.MeetingListItem, error)
}
