package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"meetscribe/internal/domain/entities"
	Irepository "meetscribe/internal/domain/interfaces/repository"
	"meetscribe/internal/infra/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(context.Background(), false)
}

// fakeSegmentRepo is an in-memory SegmentRepository. Sessions listed in
// failing reject InsertBatch, emulating a durable-storage outage.
type fakeSegmentRepo struct {
	mu       sync.Mutex
	segments map[string][]entities.TranscriptSegment
	failing  map[string]bool
	nextID   int64
}

func newFakeSegmentRepo() *fakeSegmentRepo {
	return &fakeSegmentRepo{
		segments: make(map[string][]entities.TranscriptSegment),
		failing:  make(map[string]bool),
	}
}

func (f *fakeSegmentRepo) InsertBatch(_ context.Context, sessionKey string, segments []entities.TranscriptSegment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[sessionKey] {
		return errors.New("insert failed")
	}
	now := time.Now().UTC()
	for _, segment := range segments {
		f.nextID++
		segment.ID = f.nextID
		segment.SessionKey = sessionKey
		if segment.CreatedAt.IsZero() {
			segment.CreatedAt = now
		}
		f.segments[sessionKey] = append(f.segments[sessionKey], segment)
	}
	return nil
}

func (f *fakeSegmentRepo) BySession(_ context.Context, sessionKey string) ([]entities.TranscriptSegment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entities.TranscriptSegment(nil), f.segments[sessionKey]...), nil
}

func (f *fakeSegmentRepo) SpeakersBySession(_ context.Context, sessionKey string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var speakers []string
	for _, segment := range f.segments[sessionKey] {
		if !seen[segment.SpeakerName] {
			seen[segment.SpeakerName] = true
			speakers = append(speakers, segment.SpeakerName)
		}
	}
	sort.Strings(speakers)
	return speakers, nil
}

// fakeSessionRepo is an in-memory SessionRepository with the same
// unique-key semantics as the SQLite store.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []entities.Session
	nextID   int64
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{}
}

func (f *fakeSessionRepo) Create(_ context.Context, session entities.Session) (entities.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.sessions {
		if existing.SessionKey == session.SessionKey {
			return entities.Session{}, Irepository.ErrDuplicateKey
		}
	}
	f.nextID++
	session.ID = f.nextID
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	f.sessions = append(f.sessions, session)
	return session, nil
}

func (f *fakeSessionRepo) LatestForBaseKey(_ context.Context, baseKey string) (entities.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest entities.Session
	found := false
	for _, session := range f.sessions {
		if session.SessionKey != baseKey && !isDateSuffixed(session.SessionKey, baseKey) {
			continue
		}
		if !found || session.ID > latest.ID {
			latest = session
			found = true
		}
	}
	if !found {
		return entities.Session{}, Irepository.ErrNotFound
	}
	return latest, nil
}

func isDateSuffixed(key, baseKey string) bool {
	suffix, found := strings.CutPrefix(key, baseKey+"-")
	if !found {
		return false
	}
	_, err := time.Parse(time.DateOnly, suffix)
	return err == nil
}

func (f *fakeSessionRepo) ByOwner(_ context.Context, userID string) ([]entities.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var owned []entities.Session
	for _, session := range f.sessions {
		if session.UserID == userID {
			owned = append(owned, session)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID > owned[j].ID
	})
	return owned, nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]entities.User)}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return entities.User{}, Irepository.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindOrCreate(_ context.Context, user entities.User) (entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.users[user.ID]; ok {
		return existing, nil
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	f.users[user.ID] = user
	return user, nil
}
