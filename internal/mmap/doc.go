// Package mmap provides anonymous memory mappings for off-heap allocation.
//
// # Overview
//
// MapAnon() creates read-write anonymous mappings that live outside the Go
// garbage collector's control. The arena allocator uses these to obtain its
// chunks, so that large key/value buffers neither inflate GC scan time nor
// move underneath outstanding offsets.
//
// # Platform Support
//
// The package provides a unified API across platforms:
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with MAP_ANON|MAP_PRIVATE
//   - Windows: Uses VirtualAlloc with MEM_RESERVE|MEM_COMMIT
//
// # Thread Safety
//
// Mapping is safe for concurrent read access. The Close() method is
// idempotent and protected by atomic operations. However, callers must
// ensure no goroutines access Bytes() after Close() returns.
package mmap
