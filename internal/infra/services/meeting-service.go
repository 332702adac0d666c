package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetscribe/internal/domain/dto"
	"meetscribe/internal/domain/entities"
	Irepository "meetscribe/internal/domain/interfaces/repository"
	"meetscribe/internal/infra/logger"
)

// ContinuationWindow is how long a session keeps accepting writes for its
// meeting identifier before a new occurrence gets a fresh session.
const ContinuationWindow = 24 * time.Hour

// resolveRetries bounds the create/lookup loop when two callers race a
// continuation boundary.
const resolveRetries = 3

// MeetingService resolves meeting identifiers to sessions and serves
// transcript reads.
type MeetingService struct {
	Sessions Irepository.SessionRepository
	Segments Irepository.SegmentRepository
	Logger   *logger.Logger

	// now is replaceable in tests.
	now func() time.Time
}

func NewMeetingService(sessions Irepository.SessionRepository, segments Irepository.SegmentRepository, logger *logger.Logger) *MeetingService {
	return &MeetingService{
		Sessions: sessions,
		Segments: segments,
		Logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func baseSessionKey(meetingID string, user entities.User) string {
	return meetingID + "-" + user.ID
}

// ResolveOrCreate returns the session new segments for (meetingID, user)
// should be written against. The most recent session for the key is reused
// while it is younger than the continuation window; past the window a new
// session with a date-suffixed key is created. The UNIQUE constraint on the
// session key arbitrates concurrent creation: on a duplicate-key conflict
// the lookup is retried and finds the winner's row.
func (ms *MeetingService) ResolveOrCreate(ctx context.Context, meetingID string, user entities.User, title string) (entities.Session, error) {
	baseKey := baseSessionKey(meetingID, user)

	for attempt := 0; attempt < resolveRetries; attempt++ {
		now := ms.now()

		latest, err := ms.Sessions.LatestForBaseKey(ctx, baseKey)
		switch {
		case err == nil && now.Sub(latest.CreatedAt) < ContinuationWindow:
			return latest, nil
		case err != nil && !errors.Is(err, Irepository.ErrNotFound):
			return entities.Session{}, fmt.Errorf("resolve session for %s: %w", baseKey, err)
		}

		sessionKey := baseKey
		if err == nil {
			// An expired session exists: this is a new occurrence of the
			// same meeting, keyed by today's date.
			sessionKey = baseKey + "-" + now.Format(time.DateOnly)
		}

		created, err := ms.Sessions.Create(ctx, entities.Session{
			SessionKey: sessionKey,
			MeetingID:  meetingID,
			UserID:     user.ID,
			Title:      title,
			CreatedAt:  now,
		})
		if errors.Is(err, Irepository.ErrDuplicateKey) {
			// Lost the race; the next lookup returns the winner.
			continue
		}
		if err != nil {
			return entities.Session{}, fmt.Errorf("create session %s: %w", sessionKey, err)
		}

		ms.Logger.Info(fmt.Sprintf("Created session %s for meeting %s", created.SessionKey, meetingID))
		return created, nil
	}

	return entities.Session{}, fmt.Errorf("resolve session for %s: retries exhausted", baseKey)
}

// GetTranscript is the read-only path: it never creates a session, and a
// session older than the continuation window is reported as not found so
// the caller treats it as "no active transcript".
func (ms *MeetingService) GetTranscript(ctx context.Context, meetingID string, user entities.User) (dto.TranscriptOut, error) {
	baseKey := baseSessionKey(meetingID, user)

	session, err := ms.Sessions.LatestForBaseKey(ctx, baseKey)
	if err != nil {
		return dto.TranscriptOut{}, err
	}
	if ms.now().Sub(session.CreatedAt) >= ContinuationWindow {
		return dto.TranscriptOut{}, Irepository.ErrNotFound
	}

	stored, err := ms.Segments.BySession(ctx, session.SessionKey)
	if err != nil {
		return dto.TranscriptOut{}, fmt.Errorf("load segments for %s: %w", session.SessionKey, err)
	}

	speakers, err := ms.Segments.SpeakersBySession(ctx, session.SessionKey)
	if err != nil {
		return dto.TranscriptOut{}, fmt.Errorf("load speakers for %s: %w", session.SessionKey, err)
	}

	reconciled := Reconcile(stored)
	segments := make([]dto.SegmentOut, 0, len(reconciled))
	for _, segment := range reconciled {
		segments = append(segments, dto.SegmentOut{
			ID:          segment.ID,
			SpeakerID:   segment.SpeakerID,
			SpeakerName: segment.SpeakerName,
			Timestamp:   segment.Timestamp,
			Text:        segment.Text,
			Version:     segment.Version,
			MessageID:   segment.MessageID,
			CreatedAt:   segment.CreatedAt,
		})
	}

	if speakers == nil {
		speakers = []string{}
	}

	return dto.TranscriptOut{
		SessionKey: session.SessionKey,
		MeetingID:  session.MeetingID,
		Title:      session.Title,
		CreatedAt:  session.CreatedAt,
		Speakers:   speakers,
		Segments:   segments,
	}, nil
}

// ListMeetings returns every session the user owns, newest first, each
// annotated with the speakers observed in it.
func (ms *MeetingService) ListMeetings(ctx context.Context, user entities.User) ([]dto.MeetingListItem, error) {
	sessions, err := ms.Sessions.ByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions for user %s: %w", user.ID, err)
	}

	items := make([]dto.MeetingListItem, 0, len(sessions))
	for _, session := range sessions {
		speakers, err := ms.Segments.SpeakersBySession(ctx, session.SessionKey)
		if err != nil {
			return nil, fmt.Errorf("load speakers for %s: %w", session.SessionKey, err)
		}
		if speakers == nil {
			speakers = []string{}
		}
		items = append(items, dto.MeetingListItem{
			SessionKey: session.SessionKey,
			MeetingID:  session.MeetingID,
			Title:      session.Title,
			CreatedAt:  session.CreatedAt,
			Speakers:   speakers,
		})
	}
	return items, nil
}
