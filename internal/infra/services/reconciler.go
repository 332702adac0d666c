package services

import (
	"sort"

	"meetscribe/internal/domain/entities"
)

// Reconcile resolves a session's full stored segment set into the canonical
// ordered transcript. It is a pure function: the same input always yields
// the same output.
//
// Versioning and message-id numbering are independent per speaker, and a
// message id root (the part before the delimiter) scopes one burst of
// corrections to the same evolving utterance. Grouping therefore goes
// speaker -> root -> full message id, keeping one survivor per full id,
// before the final chronological sort.
func Reconcile(segments []entities.TranscriptSegment) []entities.TranscriptSegment {
	if len(segments) == 0 {
		return nil
	}

	bySpeaker := make(map[string][]entities.TranscriptSegment)
	for _, segment := range segments {
		bySpeaker[segment.SpeakerID] = append(bySpeaker[segment.SpeakerID], segment)
	}

	var survivors []entities.TranscriptSegment
	for _, speakerSegments := range bySpeaker {
		byRoot := make(map[string][]entities.TranscriptSegment)
		for _, segment := range speakerSegments {
			root := segment.MessageRoot()
			byRoot[root] = append(byRoot[root], segment)
		}

		for _, messageSession := range byRoot {
			latest := make(map[string]entities.TranscriptSegment)
			for _, segment := range messageSession {
				current, seen := latest[segment.MessageID]
				if !seen || supersedes(segment, current) {
					latest[segment.MessageID] = segment
				}
			}
			for _, segment := range latest {
				survivors = append(survivors, segment)
			}
		}
	}

	// Display order is caller event time; created_at stabilizes ties and
	// the row id makes the order total. Version is resolution metadata and
	// plays no part here.
	sort.Slice(survivors, func(i, j int) bool {
		a, b := survivors[i], survivors[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return survivors
}

// supersedes reports whether candidate is a more recent revision than
// current for the same full message id: higher version wins, and among
// equal versions the most recently stored row wins.
func supersedes(candidate, current entities.TranscriptSegment) bool {
	if candidate.Version != current.Version {
		return candidate.Version > current.Version
	}
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.After(current.CreatedAt)
	}
	return candidate.ID > current.ID
}
