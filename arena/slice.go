package arena

import (
	"unsafe"
)

// SizeOf returns the size in bytes of T.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Slice reinterprets an allocator buffer as a typed slice with the given
// capacity. The buffer must be at least capacity*SizeOf[T]() bytes long and
// aligned for T; buffers from Arena and Heap satisfy both for fixed-size
// element types.
//
// The returned slice aliases buf. It is valid exactly as long as buf is.
func Slice[T any](buf []byte, capacity int) []T {
	if capacity == 0 || len(buf) == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), capacity) //nolint:gosec // unsafe is required for typed views over raw buffers
}
