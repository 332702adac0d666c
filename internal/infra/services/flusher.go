package services

import (
	"context"
	"fmt"
	"time"

	Iservices "meetscribe/internal/domain/interfaces/services"
	"meetscribe/internal/infra/logger"
)

// Flusher runs the periodic flush cycle. A single goroutine owns the loop,
// so ticks for the same cycle never overlap: a slow cycle simply delays the
// next tick. Each cycle is bounded by a timeout so a stalled store cannot
// block future cycles forever.
type Flusher struct {
	SegmentService Iservices.ISegmentService
	Logger         *logger.Logger
	Interval       time.Duration
	Timeout        time.Duration

	done chan struct{}
}

func NewFlusher(segmentService Iservices.ISegmentService, logger *logger.Logger, interval, timeout time.Duration) *Flusher {
	return &Flusher{
		SegmentService: segmentService,
		Logger:         logger,
		Interval:       interval,
		Timeout:        timeout,
		done:           make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled, flushing all pending session queues on
// every tick. On shutdown it runs one final cycle so segments enqueued since
// the last tick are not stranded in the buffer.
func (f *Flusher) Run(ctx context.Context) {
	defer close(f.done)

	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	f.Logger.Info(fmt.Sprintf("Batch flusher started, interval %s", f.Interval))

	for {
		select {
		case <-ctx.Done():
			f.Logger.Info("Batch flusher stopping, running final flush")
			f.flushCycle(context.Background())
			return
		case <-ticker.C:
			f.flushCycle(ctx)
		}
	}
}

// Wait blocks until Run has returned.
func (f *Flusher) Wait() {
	<-f.done
}

func (f *Flusher) flushCycle(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, f.Timeout)
	defer cancel()

	if err := f.SegmentService.FlushAll(ctx); err != nil {
		// Failures are already logged with payloads by the segment
		// service; the scheduler keeps running regardless.
		f.Logger.Error(fmt.Sprintf("Flush cycle finished with errors: %v", err))
	}
}
