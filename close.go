package flatmap

// Close releases both backing buffers to the allocator.
//
// Close is idempotent, but any other use of the map after Close is a
// caller error: lookups observe an empty map, mutations return ErrClosed,
// and slices previously obtained from iteration must not be touched.
// Closing the map does not close a caller-supplied arena.
func (m *Map[K, V]) Close() error {
	if m.closed.Swap(true) {
		return nil
	}

	if m.logger != nil {
		m.logger.LogClose(m.length, m.capacity)
	}

	m.alloc.Free(m.keysBuf)
	m.alloc.Free(m.valsBuf)
	m.keysBuf = nil
	m.valsBuf = nil
	m.keys = nil
	m.vals = nil
	m.length = 0
	m.capacity = 0

	return nil
}

// CloseAfter schedules Close to run once prev is closed and returns a
// channel that is closed when disposal has completed. A nil prev means
// "close immediately, but asynchronously".
//
// This is advisory composition for cross-goroutine teardown ordering:
// readers that were handed the map must be covered by prev. CloseAfter
// cannot detect readers it was never told about.
func (m *Map[K, V]) CloseAfter(prev <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		_ = m.Close()
	}()
	return done
}
