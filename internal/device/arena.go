package device

import (
	"errors"
	"fmt"
	"sync"
)

// ErrArenaExhausted is returned when an acquisition would exceed the arena's
// byte limit.
var ErrArenaExhausted = errors.New("device: workspace arena limit exceeded")

// Arena hands out pooled scratch buffers used as per-call kernel workspace.
// Released buffers are bucketed by their 256-byte aligned size and reused on
// the next acquisition of that size, so steady-state dispatch does not
// allocate. The arena itself does the serialization; callers never share a
// live buffer between concurrent calls.
type Arena struct {
	mu      sync.Mutex
	limit   int64 // 0 means unlimited
	buckets map[int][]*Buffer
	stats   ArenaStats
}

// ArenaStats is a snapshot of arena activity.
type ArenaStats struct {
	Hits        int64 // acquisitions served from the pool
	Misses      int64 // acquisitions that allocated
	AllocBytes  int64 // total bytes ever allocated
	InUseBytes  int64 // bytes currently held by live buffers
	PooledCount int   // buffers currently parked in the pool
}

// Buffer is one workspace allocation. Its lifetime is scoped to a single
// routine call; Release parks it back in the owning arena.
type Buffer struct {
	arena *Arena
	data  []byte
}

// NewArena creates an arena bounded to limit bytes of in-use workspace.
// A non-positive limit means unbounded.
func NewArena(limit int64) *Arena {
	return &Arena{
		limit:   limit,
		buckets: make(map[int][]*Buffer),
	}
}

// alignSize rounds up to a 256-byte boundary so that near-identical request
// sizes share a bucket.
func alignSize(n int64) int64 {
	return (n + 255) &^ 255
}

// Acquire returns a buffer of at least size bytes, reusing a pooled buffer
// when one of the aligned size is parked.
func (a *Arena) Acquire(size int64) (*Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("device: negative workspace size %d", size)
	}
	aligned := alignSize(size)

	a.mu.Lock()
	defer a.mu.Unlock()

	if bufs := a.buckets[int(aligned)]; len(bufs) > 0 {
		buf := bufs[len(bufs)-1]
		a.buckets[int(aligned)] = bufs[:len(bufs)-1]
		a.stats.Hits++
		a.stats.PooledCount--
		a.stats.InUseBytes += aligned
		return buf, nil
	}

	if a.limit > 0 && a.stats.InUseBytes+aligned > a.limit {
		return nil, fmt.Errorf("%w: want %d bytes, %d of %d in use",
			ErrArenaExhausted, aligned, a.stats.InUseBytes, a.limit)
	}

	a.stats.Misses++
	a.stats.AllocBytes += aligned
	a.stats.InUseBytes += aligned
	return &Buffer{arena: a, data: make([]byte, aligned)}, nil
}

// Stats returns a snapshot of the arena counters.
func (a *Arena) Stats() ArenaStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Bytes exposes the buffer's backing storage.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Release parks the buffer for reuse. Releasing nil is a no-op; a buffer
// must not be used after release.
func (b *Buffer) Release() {
	if b == nil || b.arena == nil {
		return
	}
	a := b.arena
	a.mu.Lock()
	a.buckets[len(b.data)] = append(a.buckets[len(b.data)], b)
	a.stats.PooledCount++
	a.stats.InUseBytes -= int64(len(b.data))
	a.mu.Unlock()
}
