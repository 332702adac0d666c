package services

import (
	"context"

	"meetscribe/internal/domain/dto"
)

// ISegmentService buffers incoming segments and moves drained batches into
// durable storage.
type ISegmentService interface {
	// EnqueueSegment appends the segment to the session's queue. It never
	// touches durable storage and fails fast when the buffering store is
	// unreachable.
	EnqueueSegment(ctx context.Context, sessionKey string, segment dto.SegmentCreate) error
	// FlushSession drains the session's queue and persists the batch in a
	// single transaction.
	FlushSession(ctx context.Context, sessionKey string) error
	// FlushAll runs FlushSession for every session with pending segments.
	// One session's failure does not stop the others.
	FlushAll(ctx context.Context) error
}
