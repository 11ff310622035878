// Package flatmap provides a sorted, contiguous, array-backed associative
// container with logarithmic lookup over explicitly-managed memory.
//
// A Map keeps its keys and values in two parallel buffers obtained from an
// arena.Allocator. Keys are held in strict ascending order at all times;
// lookup is a binary search, and insertion/removal maintain order through a
// single bulk move of the buffer tail. There is no per-entry allocation and
// no pointer chasing, which makes the container cheap to scan and friendly
// to off-heap arenas.
//
// # Quick Start
//
//	m, err := flatmap.New[uint64, Pose]()
//	if err != nil {
//	    panic(err)
//	}
//	defer m.Close()
//
//	added, err := m.Insert(42, pose) // no-op if key 42 already exists
//	if err != nil {
//	    panic(err)
//	}
//
//	if p, ok := m.Get(42); ok {
//	    use(p)
//	}
//
//	for k, v := range m.All() {
//	    process(k, v)
//	}
//
// To place the backing buffers off the Go heap, supply an arena:
//
//	a, _ := arena.New(0)
//	defer a.Close()
//
//	m, _ := flatmap.New[uint64, Pose](flatmap.WithAllocator(a))
//	defer m.Close()
//
// # Element types
//
// Keys are fixed-size numeric types (see Key). Values may be any fixed-size
// type that contains no Go pointers (no strings, slices, maps, or
// pointers). The backing buffers are raw byte memory (off-heap for Arena,
// pointerless heap memory for Heap), so the garbage collector never sees
// pointers stored in them.
//
// # Duplicate keys
//
// The two mutation entry points have deliberately different duplicate
// policies:
//
//   - Insert is a strict insert: on an existing key it is a no-op and
//     returns false.
//   - Set is an upsert: on an existing key it overwrites the value in
//     place, otherwise it inserts.
//
// # Thread Safety
//
// A Map has no internal synchronization. It is designed for single-writer
// use; concurrent readers are safe only while no writer is active.
// Structural mutation during iteration is undefined behavior. Callers that
// share a Map across goroutines must serialize access externally.
//
// # Lifecycle
//
// Close releases the backing buffers to the allocator. When readers may
// still be in flight on other goroutines, CloseAfter chains disposal behind
// a completion signal instead of tearing down immediately.
package flatmap
