package buffer

import (
	"context"
	"sync"
)

// MemoryBuffer keeps per-session queues in process memory. It backs tests
// and single-node deployments that can tolerate losing unflushed segments on
// restart.
type MemoryBuffer struct {
	mu     sync.Mutex
	queues map[string][][]byte
}

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{queues: make(map[string][][]byte)}
}

func (b *MemoryBuffer) Enqueue(_ context.Context, sessionKey string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queues[sessionKey] = append(b.queues[sessionKey], payload)
	return nil
}

// DrainAndClear removes and returns the session's whole queue. The swap
// happens under the lock, so an Enqueue racing with the drain lands either
// in the returned snapshot or in a fresh queue for the next cycle.
func (b *MemoryBuffer) DrainAndClear(_ context.Context, sessionKey string) ([][]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	drained := b.queues[sessionKey]
	delete(b.queues, sessionKey)
	return drained, nil
}

func (b *MemoryBuffer) ListSessions(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.queues))
	for key := range b.queues {
		keys = append(keys, key)
	}
	return keys, nil
}

func (b *MemoryBuffer) Ping(_ context.Context) error {
	return nil
}
