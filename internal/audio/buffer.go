package audio

import (
	"sync"
	"time"
)

// Buffer accumulates raw PCM chunks from a capture stream into a single
// contiguous byte buffer. Audio arrives from the host platform in arbitrary
// chunk sizes; the buffer collects everything handed to it until the caller
// takes the assembled payload for framing.
type Buffer struct {
	data       []byte
	chunks     int
	lastUpdate time.Time

	mu sync.RWMutex
}

// BufferStats represents buffer statistics for monitoring
type BufferStats struct {
	SizeBytes  int       `json:"size_bytes"`
	Chunks     int       `json:"chunks"`
	LastUpdate time.Time `json:"last_update"`
}

// NewBuffer creates a new PCM accumulation buffer. The capacity hint is in
// bytes; pass 0 to use a default sized for a few seconds of 16 kHz mono audio.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 16000 * 2 * 4 // 4 seconds of 16-bit samples at 16 kHz
	}

	return &Buffer{
		data:       make([]byte, 0, capacity),
		lastUpdate: time.Now(),
	}
}

// Append adds a chunk of raw PCM bytes to the buffer. The chunk is copied;
// the caller may reuse its slice afterwards. Empty chunks are ignored.
func (b *Buffer) Append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = append(b.data, chunk...)
	b.chunks++
	b.lastUpdate = time.Now()
}

// Bytes returns a copy of the accumulated PCM data
func (b *Buffer) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]byte, len(b.data))
	copy(out, b.data)

	return out
}

// Len returns the number of accumulated bytes
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Chunks returns the number of chunks appended so far
func (b *Buffer) Chunks() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.chunks
}

// LastUpdate returns the time of the last append
func (b *Buffer) LastUpdate() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdate
}

// Reset discards the accumulated data but keeps the allocated capacity
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = b.data[:0]
	b.chunks = 0
	b.lastUpdate = time.Now()
}

// GetStats returns current buffer statistics
func (b *Buffer) GetStats() BufferStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BufferStats{
		SizeBytes:  len(b.data),
		Chunks:     b.chunks,
		LastUpdate: b.lastUpdate,
	}
}
