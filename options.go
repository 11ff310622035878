package flatmap

import (
	"github.com/hupe1980/flatmap/arena"
)

// DefaultInitialCapacity is the capacity a new map starts with when none is
// configured. Small but non-zero, so the first inserts do not reallocate.
const DefaultInitialCapacity = 8

type options struct {
	initialCapacity  int
	allocator        arena.Allocator
	logger           *Logger
	metricsCollector MetricsCollector
}

func defaultOptions() options {
	return options{
		initialCapacity: DefaultInitialCapacity,
		allocator:       arena.NewHeap(),
	}
}

// Option configures Map construction.
type Option func(*options)

// WithInitialCapacity sets the initial capacity hint.
// Values <= 0 select DefaultInitialCapacity.
func WithInitialCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.initialCapacity = capacity
		}
	}
}

// WithAllocator sets the allocator owning the backing buffers.
//
// The map does not take ownership of the allocator: Close releases the
// map's buffers but never closes an arena, which may back other containers
// with the same lifetime.
func WithAllocator(a arena.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.allocator = a
		}
	}
}

// WithLogger sets the logger used for growth and lifecycle events.
// If nil (the default), nothing is logged.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector for per-operation
// recording. If nil (the default), no metrics are recorded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}
