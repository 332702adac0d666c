package entities

import "time"

// Session is one continuous occurrence of a meeting. SessionKey is derived
// from the caller's meeting identifier plus the owner's user id, optionally
// suffixed with a date when the 24h continuation boundary is crossed. The key
// is unique in durable storage and is the arbiter for concurrent creation.
type Session struct {
	ID         int64     `json:"id"`
	SessionKey string    `json:"session_key"`
	MeetingID  string    `json:"meeting_id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatMessage is one entry of a session's chat thread.
type ChatMessage struct {
	ID         int64     `json:"id"`
	SessionKey string    `json:"session_key"`
	Sender     string    `json:"sender"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
