package repository

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_key TEXT UNIQUE NOT NULL,
		meeting_id TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);

	CREATE TABLE IF NOT EXISTS segments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_key TEXT NOT NULL REFERENCES sessions(session_key) ON DELETE CASCADE,
		speaker_id TEXT NOT NULL,
		speaker_name TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		text TEXT NOT NULL,
		version INTEGER NOT NULL,
		message_id TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_segments_session_key ON segments(session_key);
	CREATE INDEX IF NOT EXISTS idx_segments_speaker_message ON segments(session_key, speaker_id, message_id);
	CREATE INDEX IF NOT EXISTS idx_segments_created_at ON segments(created_at);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_key TEXT NOT NULL REFERENCES sessions(session_key) ON DELETE CASCADE,
		sender TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chat_messages_session_key ON chat_messages(session_key);
	`

	_, err := s.conn.Exec(schema)
	return err
}
