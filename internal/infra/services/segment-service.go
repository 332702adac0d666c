package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"meetscribe/internal/domain/dto"
	"meetscribe/internal/domain/entities"
	Ibuffer "meetscribe/internal/domain/interfaces/buffer"
	Irepository "meetscribe/internal/domain/interfaces/repository"
	"meetscribe/internal/infra/logger"
)

// bufferedSegment is the wire form held in the buffering store between
// enqueue and flush. ReceivedAt is stamped at enqueue so the stored
// created_at reflects server receipt order, not flush order.
type bufferedSegment struct {
	dto.SegmentCreate
	ReceivedAt time.Time `json:"received_at"`
}

// SegmentService owns the ingestion side of the pipeline: buffering
// submitted segments and persisting drained batches.
type SegmentService struct {
	Buffer   Ibuffer.SegmentBuffer
	Segments Irepository.SegmentRepository
	Logger   *logger.Logger
}

func NewSegmentService(buffer Ibuffer.SegmentBuffer, segments Irepository.SegmentRepository, logger *logger.Logger) *SegmentService {
	return &SegmentService{Buffer: buffer, Segments: segments, Logger: logger}
}

// EnqueueSegment serializes the segment and appends it to the session's
// queue. Durable storage is never touched here; a buffering-store failure
// is returned to the caller instead of being swallowed.
func (ss *SegmentService) EnqueueSegment(ctx context.Context, sessionKey string, segment dto.SegmentCreate) error {
	payload, err := json.Marshal(bufferedSegment{SegmentCreate: segment, ReceivedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("serialize segment: %w", err)
	}

	if err := ss.Buffer.Enqueue(ctx, sessionKey, payload); err != nil {
		ss.Logger.Error(fmt.Sprintf("Failed to enqueue segment for session %s: %v", sessionKey, err))
		return err
	}
	return nil
}

// FlushSession atomically drains the session's queue and inserts the batch
// in a single transaction. A failed insert is logged with the full payload
// for manual replay and is not re-enqueued.
func (ss *SegmentService) FlushSession(ctx context.Context, sessionKey string) error {
	payloads, err := ss.Buffer.DrainAndClear(ctx, sessionKey)
	if err != nil {
		return fmt.Errorf("drain session %s: %w", sessionKey, err)
	}
	if len(payloads) == 0 {
		return nil
	}

	segments := make([]entities.TranscriptSegment, 0, len(payloads))
	for _, payload := range payloads {
		var buffered bufferedSegment
		if err := json.Unmarshal(payload, &buffered); err != nil {
			ss.logBatchFailure(sessionKey, payloads, fmt.Errorf("decode buffered segment: %w", err))
			return fmt.Errorf("decode buffered segment for session %s: %w", sessionKey, err)
		}
		segments = append(segments, entities.TranscriptSegment{
			SessionKey:  sessionKey,
			SpeakerID:   buffered.SpeakerID,
			SpeakerName: buffered.SpeakerName,
			Timestamp:   buffered.Timestamp,
			Text:        buffered.Text,
			Version:     buffered.Version,
			MessageID:   buffered.MessageID,
			CreatedAt:   buffered.ReceivedAt,
		})
	}

	if err := ss.Segments.InsertBatch(ctx, sessionKey, segments); err != nil {
		ss.logBatchFailure(sessionKey, payloads, err)
		return fmt.Errorf("insert batch for session %s: %w", sessionKey, err)
	}

	ss.Logger.Info(fmt.Sprintf("Saved %d segments for session %s", len(segments), sessionKey))
	return nil
}

// FlushAll drains every pending session queue. Sessions are independent:
// one failure is collected and the rest still flush.
func (ss *SegmentService) FlushAll(ctx context.Context) error {
	sessionKeys, err := ss.Buffer.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list pending sessions: %w", err)
	}

	var errs []error
	for _, sessionKey := range sessionKeys {
		if err := ss.FlushSession(ctx, sessionKey); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// logBatchFailure records the drained payloads in full. The data is already
// out of the buffer at this point, so the log line is the recovery path.
func (ss *SegmentService) logBatchFailure(sessionKey string, payloads [][]byte, cause error) {
	raw := make([]string, len(payloads))
	for i, payload := range payloads {
		raw[i] = string(payload)
	}
	ss.Logger.Error("Failed to persist segment batch, data at risk of loss", logrus.Fields{
		"session_key": sessionKey,
		"batch_size":  len(payloads),
		"segments":    raw,
		"error":       cause.Error(),
	})
}
