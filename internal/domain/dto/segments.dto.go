package dto

import (
	"errors"
	"time"
)

// SegmentCreate is the body of a segment submission. It is also the wire
// form buffered between enqueue and flush, so it must round-trip through
// JSON losslessly.
type SegmentCreate struct {
	SpeakerID   string    `json:"speaker_id"`
	SpeakerName string    `json:"speaker_name"`
	Timestamp   time.Time `json:"timestamp"`
	Text        string    `json:"text"`
	Version     int       `json:"version"`
	MessageID   string    `json:"message_id"`
}

// Validate rejects structurally malformed payloads before they reach the
// buffer.
func (s SegmentCreate) Validate() error {
	if s.SpeakerID == "" {
		return errors.New("speaker_id is required")
	}
	if s.Text == "" {
		return errors.New("text is required")
	}
	if s.MessageID == "" {
		return errors.New("message_id is required")
	}
	if s.Version <= 0 {
		return errors.New("version must be a positive integer")
	}
	if s.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	return nil
}

type SegmentOut struct {
	ID          int64     `json:"id"`
	SpeakerID   string    `json:"speaker_id"`
	SpeakerName string    `json:"speaker_name"`
	Timestamp   time.Time `json:"timestamp"`
	Text        string    `json:"text"`
	Version     int       `json:"version"`
	MessageID   string    `json:"message_id"`
	CreatedAt   time.Time `json:"created_at"`
}
