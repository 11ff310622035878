package arena

import (
	"github.com/hupe1980/flatmap/internal/mem"
)

// Heap is a garbage-collected Allocator. Buffers are ordinary Go slices
// with cache-line alignment; Free is a no-op and the GC reclaims buffers
// once unreachable. Heap is the default allocator.
//
// Buffers are byte slices, which the garbage collector treats as
// pointerless: the pointer-free element rule from the package doc applies
// to Heap just as it does to Arena.
type Heap struct{}

// NewHeap creates a new heap allocator.
func NewHeap() *Heap {
	return &Heap{}
}

// Alloc allocates a zeroed, 64-byte-aligned buffer of exactly size bytes.
func (h *Heap) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	return mem.AllocAligned(size), nil
}

// Realloc allocates a buffer of the new size and copies the old contents in.
func (h *Heap) Realloc(buf []byte, size int) ([]byte, error) {
	newBuf, err := h.Alloc(size)
	if err != nil {
		return nil, err
	}
	copy(newBuf, buf)
	return newBuf, nil
}

// Free is a no-op; the garbage collector reclaims heap buffers.
func (h *Heap) Free(buf []byte) {}

var _ Allocator = (*Heap)(nil)
