package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetscribe/internal/domain/entities"
	Irepository "meetscribe/internal/domain/interfaces/repository"
)

var testUser = entities.User{ID: "u1", Email: "u1@example.com", Name: "User One"}

func newTestMeetingService(now time.Time) (*MeetingService, *fakeSessionRepo, *fakeSegmentRepo) {
	sessions := newFakeSessionRepo()
	segments := newFakeSegmentRepo()
	service := NewMeetingService(sessions, segments, testLogger())
	service.now = func() time.Time { return now }
	return service, sessions, segments
}

func TestResolveOrCreateFirstSession(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	service, _, _ := newTestMeetingService(now)

	session, err := service.ResolveOrCreate(context.Background(), "abc-defg-hij", testUser, "Standup")
	require.NoError(t, err)
	assert.Equal(t, "abc-defg-hij-u1", session.SessionKey)
	assert.Equal(t, "Standup", session.Title)
}

func TestResolveOrCreateReusesWithinWindow(t *testing.T) {
	created := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	service, _, _ := newTestMeetingService(created)

	first, err := service.ResolveOrCreate(context.Background(), "abc", testUser, "")
	require.NoError(t, err)

	// 23 hours later: same session.
	service.now = func() time.Time { return created.Add(23 * time.Hour) }
	second, err := service.ResolveOrCreate(context.Background(), "abc", testUser, "")
	require.NoError(t, err)
	assert.Equal(t, first.SessionKey, second.SessionKey)
}

func TestResolveOrCreateNewSessionPastWindow(t *testing.T) {
	created := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	service, _, _ := newTestMeetingService(created)

	first, err := service.ResolveOrCreate(context.Background(), "abc", testUser, "")
	require.NoError(t, err)

	// 25 hours later: fresh session with a date-suffixed key.
	later := created.Add(25 * time.Hour)
	service.now = func() time.Time { return later }
	second, err := service.ResolveOrCreate(context.Background(), "abc", testUser, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionKey, second.SessionKey)
	assert.Equal(t, "abc-u1-"+later.Format(time.DateOnly), second.SessionKey)

	// The suffixed session is now the write target.
	third, err := service.ResolveOrCreate(context.Background(), "abc", testUser, "")
	require.NoError(t, err)
	assert.Equal(t, second.SessionKey, third.SessionKey)
}

func TestResolveOrCreateRetriesOnDuplicateKey(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	service, sessions, _ := newTestMeetingService(now)

	// Simulate a concurrent caller winning the insert between our lookup
	// and create: the key already exists when we first resolve.
	winner, err := sessions.Create(context.Background(), entities.Session{
		SessionKey: "abc-u1",
		MeetingID:  "abc",
		UserID:     testUser.ID,
		CreatedAt:  now,
	})
	require.NoError(t, err)

	resolved, err := service.ResolveOrCreate(context.Background(), "abc", testUser, "")
	require.NoError(t, err)
	assert.Equal(t, winner.SessionKey, resolved.SessionKey)
}

func TestGetTranscriptNotFoundWithoutSession(t *testing.T) {
	service, _, _ := newTestMeetingService(time.Now().UTC())

	_, err := service.GetTranscript(context.Background(), "missing", testUser)
	assert.True(t, errors.Is(err, Irepository.ErrNotFound))
}

func TestGetTranscriptNotFoundWhenStale(t *testing.T) {
	created := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	service, _, _ := newTestMeetingService(created)

	_, err := service.ResolveOrCreate(context.Background(), "abc", testUser, "")
	require.NoError(t, err)

	service.now = func() time.Time { return created.Add(25 * time.Hour) }
	_, err = service.GetTranscript(context.Background(), "abc", testUser)
	assert.True(t, errors.Is(err, Irepository.ErrNotFound))
}

func TestGetTranscriptEmptySessionIsNotAnError(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	service, _, _ := newTestMeetingService(now)

	_, err := service.ResolveOrCreate(context.Background(), "abc", testUser, "Empty")
	require.NoError(t, err)

	transcript, err := service.GetTranscript(context.Background(), "abc", testUser)
	require.NoError(t, err)
	assert.Empty(t, transcript.Segments)
	assert.Empty(t, transcript.Speakers)
	assert.Equal(t, "abc-u1", transcript.SessionKey)
}

func TestGetTranscriptReconcilesStoredSegments(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	service, _, segments := newTestMeetingService(now)

	session, err := service.ResolveOrCreate(context.Background(), "abc", testUser, "")
	require.NoError(t, err)

	err = segments.InsertBatch(context.Background(), session.SessionKey, []entities.TranscriptSegment{
		{SpeakerID: "a", SpeakerName: "Alice", MessageID: "5", Version: 1, Text: "hello", Timestamp: now, CreatedAt: now},
		{SpeakerID: "a", SpeakerName: "Alice", MessageID: "5", Version: 2, Text: "hello there", Timestamp: now, CreatedAt: now.Add(time.Second)},
		{SpeakerID: "b", SpeakerName: "Bob", MessageID: "5", Version: 1, Text: "hi", Timestamp: now.Add(time.Second), CreatedAt: now.Add(2 * time.Second)},
	})
	require.NoError(t, err)

	transcript, err := service.GetTranscript(context.Background(), "abc", testUser)
	require.NoError(t, err)
	require.Len(t, transcript.Segments, 2)
	assert.Equal(t, "hello there", transcript.Segments[0].Text)
	assert.Equal(t, "hi", transcript.Segments[1].Text)
	assert.Equal(t, []string{"Alice", "Bob"}, transcript.Speakers)
}

func TestListMeetingsNewestFirstWithSpeakers(t *testing.T) {
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	service, _, segments := newTestMeetingService(start)

	older, err := service.ResolveOrCreate(context.Background(), "weekly", testUser, "Weekly")
	require.NoError(t, err)

	service.now = func() time.Time { return start.Add(48 * time.Hour) }
	newer, err := service.ResolveOrCreate(context.Background(), "weekly", testUser, "Weekly")
	require.NoError(t, err)
	require.NotEqual(t, older.SessionKey, newer.SessionKey)

	err = segments.InsertBatch(context.Background(), older.SessionKey, []entities.TranscriptSegment{
		{SpeakerID: "a", SpeakerName: "Alice", MessageID: "1", Version: 1, Text: "hi", Timestamp: start, CreatedAt: start},
	})
	require.NoError(t, err)

	meetings, err := service.ListMeetings(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	assert.Equal(t, newer.SessionKey, meetings[0].SessionKey)
	assert.Empty(t, meetings[0].Speakers)
	assert.Equal(t, older.SessionKey, meetings[1].SessionKey)
	assert.Equal(t, []string{"Alice"}, meetings[1].Speakers)
}
