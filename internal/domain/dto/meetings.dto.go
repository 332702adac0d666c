package dto

import (
	"errors"
	"time"
)

type MeetingCreate struct {
	MeetingIdentifier string `json:"meeting_identifier"`
	Title             string `json:"title"`
}

func (m MeetingCreate) Validate() error {
	if m.MeetingIdentifier == "" {
		return errors.New("meeting_identifier is required")
	}
	return nil
}

// MeetingOut is the resolved session descriptor.
type MeetingOut struct {
	SessionKey string    `json:"session_key"`
	MeetingID  string    `json:"meeting_id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
}

// TranscriptOut is the reconciled transcript of one session.
type TranscriptOut struct {
	SessionKey string       `json:"session_key"`
	MeetingID  string       `json:"meeting_id"`
	Title      string       `json:"title"`
	CreatedAt  time.Time    `json:"created_at"`
	Speakers   []string     `json:"speakers"`
	Segments   []SegmentOut `json:"segments"`
}

// MeetingListItem is one entry of the meeting list, annotated with the
// speakers observed in that session.
type MeetingListItem struct {
	SessionKey string    `json:"session_key"`
	MeetingID  string    `json:"meeting_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	Speakers   []string  `json:"speakers"`
}
