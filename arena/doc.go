// Package arena provides the memory allocators backing the flat map's
// key/value buffers.
//
// # Allocators
//
// Two Allocator implementations are provided:
//
//   - Arena: a chunked bump allocator over anonymous memory mappings.
//     Memory lives off the Go heap, individual Free calls are bookkeeping
//     only, and everything is returned to the OS at once by Close(). This
//     is the right choice when many containers share one lifetime (e.g.
//     per-frame or per-index arenas).
//   - Heap: a garbage-collected allocator using cache-line-aligned slices.
//     Free is a no-op; the GC reclaims buffers when they become
//     unreachable. This is the default.
//
// # Concurrency Model
//
// Arena supports concurrent Alloc/Realloc calls via a lock-free CAS fast
// path but does NOT support Close concurrent with allocations. The typical
// usage pattern is:
//
//   - Create one arena per group of containers sharing a lifetime
//   - Allocate from multiple goroutines while building (SAFE)
//   - Call Close() once when the group is torn down (NOT concurrent with
//     allocations)
//
// # Pointer-free data only
//
// Buffers handed out by Arena are invisible to the garbage collector.
// Storing Go pointers (including strings, slices, maps) in them is a
// use-after-free waiting to happen. Only fixed-size, pointer-free element
// types may live in arena memory.
package arena
