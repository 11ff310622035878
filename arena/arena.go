package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/flatmap/internal/conv"
	"github.com/hupe1980/flatmap/internal/mmap"
)

// Allocator hands out raw buffers for the container's backing store.
//
// Alloc returns a zeroed buffer of exactly size bytes. Realloc returns a
// buffer of the new size with the old contents copied in; the old buffer
// must not be used afterwards. Free releases a buffer; depending on the
// implementation this may be deferred until the allocator itself is closed.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Realloc(buf []byte, size int) ([]byte, error)
	Free(buf []byte)
}

// MemoryAcquirer is an interface for acquiring memory from a budget,
// e.g. resource.Controller.
type MemoryAcquirer interface {
	AcquireMemory(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrClosed is returned when allocating from a closed arena.
	ErrClosed = errors.New("arena: closed")
	// ErrAllocationFailed is returned when an allocation fails.
	ErrAllocationFailed = errors.New("arena: allocation failed")
)

const (
	// DefaultChunkSize is the default size of a chunk (1MB).
	DefaultChunkSize = 1024 * 1024
	// DefaultAlignment is the default buffer alignment (8 bytes).
	DefaultAlignment = 8
	// acquireTimeout bounds how long a chunk allocation may wait on the
	// memory acquirer before failing.
	acquireTimeout = 100 * time.Millisecond
)

// Stats tracks arena memory usage metrics.
//
// Note on semantics:
//   - BytesReserved: total memory mapped from the OS
//   - BytesUsed: actual bytes requested by allocations (before alignment)
//   - BytesFreed: bytes handed back via Free (reclaimed only at Close)
//   - ActiveChunks: number of chunks currently held
//   - TotalAllocs: cumulative allocation count
type Stats struct {
	ChunksAllocated uint64 // Historical: total chunks ever created
	BytesReserved   uint64 // Current: total memory mapped
	BytesUsed       uint64 // Current: bytes handed out
	BytesFreed      uint64 // Current: bytes released via Free
	ActiveChunks    uint64 // Current: active chunk count
	TotalAllocs     uint64 // Historical: total allocations
}

type atomicStats struct {
	ChunksAllocated atomic.Uint64
	BytesReserved   atomic.Uint64
	BytesUsed       atomic.Uint64
	BytesFreed      atomic.Uint64
	ActiveChunks    atomic.Uint64
	TotalAllocs     atomic.Uint64
}

type chunk struct {
	data    []byte
	mapping *mmap.Mapping
	offset  atomic.Int64 // MUST be atomic - accessed concurrently without locks
}

// Arena is a chunked bump allocator over anonymous memory mappings.
// It implements Allocator.
type Arena struct {
	chunkSize int
	alignment int

	mu      sync.Mutex // Protects chunk growth and Close
	chunks  []*chunk
	current atomic.Pointer[chunk]
	closed  atomic.Bool

	stats    atomicStats
	acquirer MemoryAcquirer
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena. Chunk
// allocations are charged against the acquirer's budget and released
// on Close.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// New creates a new Arena with the given chunk size.
// A chunkSize <= 0 selects DefaultChunkSize.
func New(chunkSize int, opts ...Option) (*Arena, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	a := &Arena{
		chunkSize: chunkSize,
		alignment: DefaultAlignment,
	}

	for _, opt := range opts {
		opt(a)
	}

	if err := a.allocateChunk(a.chunkSize); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Arena) allocateChunk(size int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocateChunkLocked(size)
}

func (a *Arena) allocateChunkLocked(size int) error {
	if a.acquirer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
		defer cancel()
		if err := a.acquirer.AcquireMemory(ctx, int64(size)); err != nil {
			return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
		}
	}

	mapping, err := mmap.MapAnon(size)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		return fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}

	newChunk := &chunk{
		data:    mapping.Bytes(),
		mapping: mapping,
	}
	a.chunks = append(a.chunks, newChunk)

	a.stats.ChunksAllocated.Add(1)
	sizeU64, _ := conv.IntToUint64(size)
	a.stats.BytesReserved.Add(sizeU64)
	a.stats.ActiveChunks.Add(1)

	// Make visible to Alloc
	a.current.Store(newChunk)

	return nil
}

// Alloc allocates a zeroed buffer of exactly size bytes.
func (a *Arena) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	if a.closed.Load() {
		return nil, ErrClosed
	}

	mask := a.alignment - 1
	alignedSize := (size + mask) & ^mask

	// Requests larger than a chunk get a dedicated chunk.
	if alignedSize > a.chunkSize {
		return a.allocLarge(size, alignedSize)
	}

	for {
		curr := a.current.Load()
		if curr == nil {
			return nil, ErrClosed
		}

		if data, ok := a.tryAllocInChunk(curr, size, alignedSize); ok {
			return data, nil
		}

		// Current chunk is full. Check if someone else already swapped in
		// a fresh one before taking the lock.
		if a.current.Load() != curr {
			continue
		}

		a.mu.Lock()
		if a.current.Load() != curr {
			a.mu.Unlock()
			continue
		}
		if err := a.allocateChunkLocked(a.chunkSize); err != nil {
			a.mu.Unlock()
			return nil, err
		}
		a.mu.Unlock()
	}
}

func (a *Arena) allocLarge(size, alignedSize int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.acquirer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), acquireTimeout)
		defer cancel()
		if err := a.acquirer.AcquireMemory(ctx, int64(alignedSize)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
		}
	}

	mapping, err := mmap.MapAnon(alignedSize)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(alignedSize))
		}
		return nil, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}

	c := &chunk{
		data:    mapping.Bytes(),
		mapping: mapping,
	}
	c.offset.Store(int64(alignedSize))

	// Dedicated chunks are never installed as current: they have no
	// leftover space worth bumping into.
	a.chunks = append(a.chunks, c)

	a.stats.ChunksAllocated.Add(1)
	alignedU64, _ := conv.IntToUint64(alignedSize)
	a.stats.BytesReserved.Add(alignedU64)
	a.stats.ActiveChunks.Add(1)
	sizeU64, _ := conv.IntToUint64(size)
	a.stats.BytesUsed.Add(sizeU64)
	a.stats.TotalAllocs.Add(1)

	return c.data[:size:size], nil
}

func (a *Arena) tryAllocInChunk(curr *chunk, size, alignedSize int) ([]byte, bool) {
	oldOffset := curr.offset.Load()
	newOffset := oldOffset + int64(alignedSize)

	if newOffset > int64(len(curr.data)) {
		return nil, false
	}

	if !curr.offset.CompareAndSwap(oldOffset, newOffset) {
		return nil, false
	}

	sizeU64, _ := conv.IntToUint64(size)
	a.stats.BytesUsed.Add(sizeU64)
	a.stats.TotalAllocs.Add(1)

	end := oldOffset + int64(size)
	return curr.data[oldOffset:end:end], true
}

// Realloc allocates a buffer of the new size and copies the old contents in.
// The old buffer is freed and must not be used afterwards.
func (a *Arena) Realloc(buf []byte, size int) ([]byte, error) {
	newBuf, err := a.Alloc(size)
	if err != nil {
		return nil, err
	}
	copy(newBuf, buf)
	a.Free(buf)
	return newBuf, nil
}

// Free releases a buffer back to the arena.
//
// Bump allocation cannot reclaim individual buffers; Free only records the
// bytes as dead. The memory itself is returned to the OS by Close.
func (a *Arena) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	sizeU64, _ := conv.IntToUint64(len(buf))
	a.stats.BytesFreed.Add(sizeU64)
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	return Stats{
		ChunksAllocated: a.stats.ChunksAllocated.Load(),
		BytesReserved:   a.stats.BytesReserved.Load(),
		BytesUsed:       a.stats.BytesUsed.Load(),
		BytesFreed:      a.stats.BytesFreed.Load(),
		ActiveChunks:    a.stats.ActiveChunks.Load(),
		TotalAllocs:     a.stats.TotalAllocs.Load(),
	}
}

// Usage returns the memory usage percentage (live bytes over reserved bytes).
func (a *Arena) Usage() float64 {
	stats := a.Stats()
	if stats.BytesReserved == 0 {
		return 0
	}
	live := stats.BytesUsed - min(stats.BytesUsed, stats.BytesFreed)
	return float64(live) / float64(stats.BytesReserved) * 100
}

// Close unmaps all arena memory and releases it from the acquirer's budget.
//
// IMPORTANT:
//  1. Do NOT call Close concurrently with allocations
//  2. All buffers handed out by this arena become invalid after Close
//  3. Typical usage: defer a.Close() at the owner of the arena's lifetime
//
// After Close, the arena cannot be reused. Create a new arena instead.
// Close is idempotent.
func (a *Arena) Close() error {
	if a.closed.Swap(true) {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.acquirer != nil {
		reserved := a.stats.BytesReserved.Load()
		if reserved > 0 {
			a.acquirer.ReleaseMemory(int64(reserved))
		}
	}

	var firstErr error
	for _, c := range a.chunks {
		if c.mapping != nil {
			if err := c.mapping.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	a.chunks = nil
	a.current.Store(nil)

	a.stats.ActiveChunks.Store(0)
	a.stats.BytesReserved.Store(0)
	a.stats.BytesUsed.Store(0)
	a.stats.BytesFreed.Store(0)

	return firstErr
}

func (a *Arena) String() string {
	stats := a.Stats()
	return fmt.Sprintf(
		"Arena{chunks: %d, reserved: %.2f MB, used: %.2f MB, freed: %.2f KB, usage: %.1f%%, allocs: %d}",
		stats.ActiveChunks,
		float64(stats.BytesReserved)/(1024*1024),
		float64(stats.BytesUsed)/(1024*1024),
		float64(stats.BytesFreed)/1024,
		a.Usage(),
		stats.TotalAllocs,
	)
}

var _ Allocator = (*Arena)(nil)
