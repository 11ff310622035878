package flatmap

import (
	"cmp"
	"sync/atomic"
	"time"

	"github.com/hupe1980/flatmap/arena"
)

// Key is the constraint on map keys: fixed-size numeric types with a total
// order. Strings are excluded on purpose; they carry internal pointers and
// have no fixed layout, so they cannot live in arena-backed buffers.
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Map is a sorted flat map: an array-backed associative container whose
// keys are held in strict ascending order across two parallel,
// allocator-owned buffers.
//
// The zero value is not usable; construct with New.
type Map[K Key, V any] struct {
	alloc arena.Allocator

	// Parallel backing buffers. keys and vals are typed views over
	// keysBuf/valsBuf with len == capacity; entries at index >= length
	// are dead and must not be read.
	keysBuf []byte
	valsBuf []byte
	keys    []K
	vals    []V

	length   int
	capacity int

	closed atomic.Bool

	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty map with a small initial capacity.
func New[K Key, V any](opts ...Option) (*Map[K, V], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := &Map[K, V]{
		alloc:   o.allocator,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}

	if err := m.setCapacity(o.initialCapacity); err != nil {
		return nil, err
	}

	return m, nil
}

// setCapacity reallocates both buffers to hold n entries and rebuilds the
// typed views. n must be >= m.length. Reallocation may relocate the
// buffers, so callers must not hold slices across this call.
func (m *Map[K, V]) setCapacity(n int) error {
	valBytes := n * arena.SizeOf[V]()
	if n > 0 && valBytes == 0 {
		// Zero-size V still needs a non-nil base for the typed view.
		valBytes = 1
	}

	keysBuf, err := m.alloc.Realloc(m.keysBuf, n*arena.SizeOf[K]())
	if err != nil {
		return &ErrAllocation{Capacity: n, cause: err}
	}
	valsBuf, err := m.alloc.Realloc(m.valsBuf, valBytes)
	if err != nil {
		// The keys buffer was already moved; hand the orphan back.
		m.alloc.Free(keysBuf)
		return &ErrAllocation{Capacity: n, cause: err}
	}

	m.keysBuf = keysBuf
	m.valsBuf = valsBuf
	m.keys = arena.Slice[K](keysBuf, n)
	m.vals = arena.Slice[V](valsBuf, n)
	m.capacity = n

	return nil
}

// search locates key in keys[0:length). It returns the index of the entry
// on a hit, or the bitwise complement of the insertion point on a miss
// (always negative), so one sign check distinguishes the two and ^result
// recovers the position that keeps the keys ordered.
func (m *Map[K, V]) search(key K) int {
	lo, hi := 0, m.length-1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		switch c := cmp.Compare(m.keys[mid], key); {
		case c < 0:
			lo = mid + 1
		case c > 0:
			hi = mid - 1
		default:
			return mid
		}
	}
	return ^lo
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return m.length
}

// IsEmpty reports whether the map has no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.length == 0
}

// Cap returns the current capacity of the backing store.
func (m *Map[K, V]) Cap() int {
	return m.capacity
}

// ContainsKey reports whether key is present.
func (m *Map[K, V]) ContainsKey(key K) bool {
	found := m.search(key) >= 0
	if m.metrics != nil {
		m.metrics.RecordLookup(found)
	}
	return found
}

// Get returns the value stored under key.
// The boolean reports whether the key was present; a miss is a normal
// outcome, not an error.
func (m *Map[K, V]) Get(key K) (V, bool) {
	i := m.search(key)
	if m.metrics != nil {
		m.metrics.RecordLookup(i >= 0)
	}
	if i < 0 {
		var zero V
		return zero, false
	}
	return m.vals[i], true
}

// GetOrDefault returns the value stored under key, or the zero value of V
// if the key is absent.
//
// Callers that need to distinguish "absent" from "stored zero value" must
// use Get instead; the zero value is indistinguishable from a miss here.
func (m *Map[K, V]) GetOrDefault(key K) V {
	v, _ := m.Get(key)
	return v
}

// Min returns the smallest key and its value, or false if the map is empty.
func (m *Map[K, V]) Min() (K, V, bool) {
	if m.length == 0 {
		var k K
		var v V
		return k, v, false
	}
	return m.keys[0], m.vals[0], true
}

// Max returns the largest key and its value, or false if the map is empty.
func (m *Map[K, V]) Max() (K, V, bool) {
	if m.length == 0 {
		var k K
		var v V
		return k, v, false
	}
	return m.keys[m.length-1], m.vals[m.length-1], true
}

// Insert adds an entry for key. If key is already present, Insert is a
// no-op and returns false; the stored value is untouched. Use Set to
// overwrite.
//
// An error is returned only when growing the backing store fails.
func (m *Map[K, V]) Insert(key K, value V) (bool, error) {
	if m.closed.Load() {
		return false, ErrClosed
	}

	var start time.Time
	if m.metrics != nil {
		start = time.Now()
	}

	i := m.search(key)
	if i >= 0 {
		if m.metrics != nil {
			m.metrics.RecordInsert(time.Since(start), nil)
		}
		return false, nil
	}

	err := m.insertAt(^i, key, value)
	if m.metrics != nil {
		m.metrics.RecordInsert(time.Since(start), err)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Set stores value under key: on a hit it overwrites the value in place
// (ordering is untouched, values take no part in it), on a miss it inserts.
func (m *Map[K, V]) Set(key K, value V) error {
	if m.closed.Load() {
		return ErrClosed
	}

	var start time.Time
	if m.metrics != nil {
		start = time.Now()
	}

	i := m.search(key)
	if i >= 0 {
		m.vals[i] = value
		if m.metrics != nil {
			m.metrics.RecordSet(time.Since(start), nil)
		}
		return nil
	}

	err := m.insertAt(^i, key, value)
	if m.metrics != nil {
		m.metrics.RecordSet(time.Since(start), err)
	}
	return err
}

// insertAt places an entry at position p, shifting the tail one slot to
// the right. Growth, when needed, happens before the move offsets are
// computed: reallocation may relocate both buffers.
func (m *Map[K, V]) insertAt(p int, key K, value V) error {
	if m.length == m.capacity {
		if err := m.grow(); err != nil {
			return err
		}
	}

	// One block move per buffer; zero-length when p == length.
	copy(m.keys[p+1:m.length+1], m.keys[p:m.length])
	copy(m.vals[p+1:m.length+1], m.vals[p:m.length])

	m.keys[p] = key
	m.vals[p] = value
	m.length++

	return nil
}

func (m *Map[K, V]) grow() error {
	oldCap := m.capacity
	newCap := max(oldCap*2, oldCap+1)

	if err := m.setCapacity(newCap); err != nil {
		return err
	}

	if m.logger != nil {
		m.logger.LogGrow(oldCap, newCap)
	}
	if m.metrics != nil {
		m.metrics.RecordGrow(oldCap, newCap)
	}

	return nil
}

// Remove deletes the entry for key, shifting the tail one slot to the
// left. It returns false without mutation if key is absent. Capacity is
// never shrunk by removal; see Compact.
func (m *Map[K, V]) Remove(key K) bool {
	if m.closed.Load() {
		return false
	}

	var start time.Time
	if m.metrics != nil {
		start = time.Now()
	}

	i := m.search(key)
	if i < 0 {
		if m.metrics != nil {
			m.metrics.RecordRemove(time.Since(start), false)
		}
		return false
	}

	copy(m.keys[i:m.length-1], m.keys[i+1:m.length])
	copy(m.vals[i:m.length-1], m.vals[i+1:m.length])
	m.length--

	if m.metrics != nil {
		m.metrics.RecordRemove(time.Since(start), true)
	}
	return true
}

// Clear removes all entries. Capacity is retained, so a subsequent fill up
// to the old length triggers no reallocation.
func (m *Map[K, V]) Clear() {
	m.length = 0
}

// Compact shrinks the backing store to the current length. This is the
// only operation that ever reduces capacity.
func (m *Map[K, V]) Compact() error {
	if m.closed.Load() {
		return ErrClosed
	}
	target := max(m.length, 1)
	if target == m.capacity {
		return nil
	}
	return m.setCapacity(target)
}
