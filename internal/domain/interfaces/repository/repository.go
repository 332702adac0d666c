package repository

import (
	"context"
	"errors"

	"meetscribe/internal/domain/entities"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateKey is returned when an insert violates a uniqueness
// constraint. The session resolver relies on it as the final arbiter of
// concurrent session creation.
var ErrDuplicateKey = errors.New("duplicate key")

type UserRepository interface {
	FindByID(ctx context.Context, id string) (entities.User, error)
	FindOrCreate(ctx context.Context, user entities.User) (entities.User, error)
}

type SessionRepository interface {
	// Create inserts the session and returns it with its row id and
	// created_at populated. Returns ErrDuplicateKey when the session key
	// already exists.
	Create(ctx context.Context, session entities.Session) (entities.Session, error)
	// LatestForBaseKey returns the most recently created session whose key
	// is baseKey or baseKey plus a date suffix.
	LatestForBaseKey(ctx context.Context, baseKey string) (entities.Session, error)
	// ByOwner returns every session owned by userID, newest first.
	ByOwner(ctx context.Context, userID string) ([]entities.Session, error)
}

type SegmentRepository interface {
	// InsertBatch persists all segments in a single transaction.
	InsertBatch(ctx context.Context, sessionKey string, segments []entities.TranscriptSegment) error
	// BySession returns every stored segment of the session in one
	// consistent read.
	BySession(ctx context.Context, sessionKey string) ([]entities.TranscriptSegment, error)
	// SpeakersBySession returns the distinct speaker names of the session.
	SpeakersBySession(ctx context.Context, sessionKey string) ([]string, error)
}

type ChatRepository interface {
	HistoryBySession(ctx context.Context, sessionKey string) ([]entities.ChatMessage, error)
	// ReplaceHistory overwrites the session's thread in one transaction.
	ReplaceHistory(ctx context.Context, sessionKey string, messages []entities.ChatMessage) error
}
