package entities

import (
	"strings"
	"time"
)

// MessageIDDelimiter separates the root of a message id from its child part.
// A message id without the delimiter is its own root.
const MessageIDDelimiter = "."

// TranscriptSegment is one stored fragment of transcribed speech. Several
// rows may share the same (SpeakerID, MessageID) pair, one per revision;
// reconciliation keeps only the highest Version among them.
//
// Timestamp is the caller-supplied event time and is monotonic per speaker
// only. CreatedAt is the server receipt time and is the stable secondary
// sort key.
type TranscriptSegment struct {
	ID          int64     `json:"id"`
	SessionKey  string    `json:"session_key"`
	SpeakerID   string    `json:"speaker_id"`
	SpeakerName string    `json:"speaker_name"`
	Timestamp   time.Time `json:"timestamp"`
	Text        string    `json:"text"`
	Version     int       `json:"version"`
	MessageID   string    `json:"message_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageRoot returns the portion of the message id before the delimiter,
// identifying the logical message session the segment belongs to.
func (s TranscriptSegment) MessageRoot() string {
	root, _, _ := strings.Cut(s.MessageID, MessageIDDelimiter)
	return root
}
