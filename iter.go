package flatmap

import "iter"

// All returns a lazy, restartable sequence of all entries in ascending key
// order.
//
// The sequence reads the backing store directly: structural mutation
// (Insert, Set on a missing key, Remove, Clear, Compact, Close) while a
// walk is in progress is undefined behavior. This mirrors the map's
// single-writer contract and is not defended against internally.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := 0; i < m.length; i++ {
			if !yield(m.keys[i], m.vals[i]) {
				return
			}
		}
	}
}

// Keys returns a lazy sequence of all keys in ascending order.
// The mutation caveats of All apply.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for i := 0; i < m.length; i++ {
			if !yield(m.keys[i]) {
				return
			}
		}
	}
}

// Values returns a lazy sequence of all values in ascending key order.
// The mutation caveats of All apply.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for i := 0; i < m.length; i++ {
			if !yield(m.vals[i]) {
				return
			}
		}
	}
}
