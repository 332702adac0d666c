package buffer

import "context"

// SegmentBuffer is the ephemeral write buffer between segment submission and
// durable storage. Payloads are opaque serialized segments; the buffer keeps
// FIFO arrival order per session and nothing more.
//
// Implementations must make DrainAndClear atomic with respect to concurrent
// Enqueue calls on the same key: a payload enqueued after the snapshot is
// taken must survive into a later drain, never be lost.
type SegmentBuffer interface {
	Enqueue(ctx context.Context, sessionKey string, payload []byte) error
	DrainAndClear(ctx context.Context, sessionKey string) ([][]byte, error)
	ListSessions(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}
