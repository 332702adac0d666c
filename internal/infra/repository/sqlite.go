package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"meetscribe/internal/domain/entities"
	Irepository "meetscribe/internal/domain/interfaces/repository"
)

// timeLayout is fixed-width so stored timestamps sort lexically the same
// way they sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore is the durable relational store behind the user, session,
// segment and chat repositories.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens (or creates) the database and initializes the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL so flusher writes do not block transcript reads.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(1) // SQLite only supports one writer
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{conn: conn}
	if err := store.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func wrapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", Irepository.ErrDuplicateKey, err)
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	return time.Parse(timeLayout, raw)
}

// --- users ---

func (s *SQLiteStore) FindByID(ctx context.Context, id string) (entities.User, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, email, name, created_at FROM users WHERE id = ?
	`, id)
	return scanUser(row)
}

func (s *SQLiteStore) FindOrCreate(ctx context.Context, user entities.User) (entities.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, user.ID, user.Email, user.Name, formatTime(user.CreatedAt))
	if err != nil {
		return entities.User{}, fmt.Errorf("insert user %s: %w", user.ID, err)
	}
	return s.FindByID(ctx, user.ID)
}

func scanUser(row *sql.Row) (entities.User, error) {
	var user entities.User
	var createdAt string
	err := row.Scan(&user.ID, &user.Email, &user.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.User{}, Irepository.ErrNotFound
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("scan user: %w", err)
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return entities.User{}, fmt.Errorf("parse user created_at: %w", err)
	}
	return user, nil
}

// --- sessions ---

func (s *SQLiteStore) Create(ctx context.Context, session entities.Session) (entities.Session, error) {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	result, err := s.conn.ExecContext(ctx, `
		INSERT INTO sessions (session_key, meeting_id, user_id, title, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, session.SessionKey, session.MeetingID, session.UserID, session.Title, formatTime(session.CreatedAt))
	if err != nil {
		return entities.Session{}, wrapConstraint(err)
	}
	session.ID, err = result.LastInsertId()
	if err != nil {
		return entities.Session{}, fmt.Errorf("session insert id: %w", err)
	}
	return session, nil
}

// LatestForBaseKey matches the exact base key or the base key followed by a
// "-YYYY-MM-DD" suffix, so a meeting identifier that happens to prefix
// another identifier can never be confused with a continuation.
func (s *SQLiteStore) LatestForBaseKey(ctx context.Context, baseKey string) (entities.Session, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, session_key, meeting_id, user_id, title, created_at
		FROM sessions
		WHERE session_key = ? OR session_key LIKE ? || '-____-__-__'
		ORDER BY id DESC
		LIMIT 1
	`, baseKey, baseKey)
	if err != nil {
		return entities.Session{}, fmt.Errorf("query latest session for %s: %w", baseKey, err)
	}
	defer rows.Close()

	sessions, err := scanSessions(rows)
	if err != nil {
		return entities.Session{}, err
	}
	if len(sessions) == 0 {
		return entities.Session{}, Irepository.ErrNotFound
	}
	return sessions[0], nil
}

func (s *SQLiteStore) ByOwner(ctx context.Context, userID string) ([]entities.Session, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, session_key, meeting_id, user_id, title, created_at
		FROM sessions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]entities.Session, error) {
	var sessions []entities.Session
	for rows.Next() {
		var session entities.Session
		var createdAt string
		err := rows.Scan(&session.ID, &session.SessionKey, &session.MeetingID,
			&session.UserID, &session.Title, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if session.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse session created_at: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// --- segments ---

func (s *SQLiteStore) InsertBatch(ctx context.Context, sessionKey string, segments []entities.TranscriptSegment) error {
	if len(segments) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (session_key, speaker_id, speaker_name, timestamp, text, version, message_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, segment := range segments {
		createdAt := segment.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		_, err := stmt.ExecContext(ctx, sessionKey, segment.SpeakerID, segment.SpeakerName,
			formatTime(segment.Timestamp), segment.Text, segment.Version, segment.MessageID,
			formatTime(createdAt))
		if err != nil {
			return fmt.Errorf("insert segment %s/%s: %w", segment.SpeakerID, segment.MessageID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// BySession reads the session's full segment set in one query, giving the
// reconciler a consistent snapshot.
func (s *SQLiteStore) BySession(ctx context.Context, sessionKey string) ([]entities.TranscriptSegment, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, session_key, speaker_id, speaker_name, timestamp, text, version, message_id, created_at
		FROM segments
		WHERE session_key = ?
		ORDER BY id
	`, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("query segments for session %s: %w", sessionKey, err)
	}
	defer rows.Close()

	var segments []entities.TranscriptSegment
	for rows.Next() {
		var segment entities.TranscriptSegment
		var timestamp, createdAt string
		err := rows.Scan(&segment.ID, &segment.SessionKey, &segment.SpeakerID, &segment.SpeakerName,
			&timestamp, &segment.Text, &segment.Version, &segment.MessageID, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		if segment.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, fmt.Errorf("parse segment timestamp: %w", err)
		}
		if segment.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse segment created_at: %w", err)
		}
		segments = append(segments, segment)
	}
	return segments, rows.Err()
}

func (s *SQLiteStore) SpeakersBySession(ctx context.Context, sessionKey string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT DISTINCT speaker_name FROM segments WHERE session_key = ? ORDER BY speaker_name
	`, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("query speakers for session %s: %w", sessionKey, err)
	}
	defer rows.Close()

	var speakers []string
	for rows.Next() {
		var speaker string
		if err := rows.Scan(&speaker); err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		speakers = append(speakers, speaker)
	}
	return speakers, rows.Err()
}

// --- chat messages ---

func (s *SQLiteStore) HistoryBySession(ctx context.Context, sessionKey string) ([]entities.ChatMessage, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, session_key, sender, content, created_at
		FROM chat_messages
		WHERE session_key = ?
		ORDER BY created_at, id
	`, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("query chat history for session %s: %w", sessionKey, err)
	}
	defer rows.Close()

	var messages []entities.ChatMessage
	for rows.Next() {
		var message entities.ChatMessage
		var createdAt string
		err := rows.Scan(&message.ID, &message.SessionKey, &message.Sender, &message.Content, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if message.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse chat message created_at: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) ReplaceHistory(ctx context.Context, sessionKey string, messages []entities.ChatMessage) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chat transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_key = ?`, sessionKey); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}

	for _, message := range messages {
		createdAt := message.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chat_messages (session_key, sender, content, created_at) VALUES (?, ?, ?, ?)
		`, sessionKey, message.Sender, message.Content, formatTime(createdAt))
		if err != nil {
			return fmt.Errorf("insert chat message: %w", err)
		}
	}

	return tx.Commit()
}
