package flatmap

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each Insert operation.
	// duration is the time taken, err is nil if successful.
	RecordInsert(duration time.Duration, err error)

	// RecordSet is called after each Set operation.
	RecordSet(duration time.Duration, err error)

	// RecordRemove is called after each Remove operation.
	// removed reports whether an entry was deleted.
	RecordRemove(duration time.Duration, removed bool)

	// RecordLookup is called after each Get/ContainsKey operation.
	RecordLookup(found bool)

	// RecordGrow is called after each capacity-growth event.
	RecordGrow(oldCapacity, newCapacity int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error) {}
func (NoopMetricsCollector) RecordSet(time.Duration, error)    {}
func (NoopMetricsCollector) RecordRemove(time.Duration, bool)  {}
func (NoopMetricsCollector) RecordLookup(bool)                 {}
func (NoopMetricsCollector) RecordGrow(int, int)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	InsertTotalNanos atomic.Int64
	SetCount         atomic.Int64
	SetErrors        atomic.Int64
	SetTotalNanos    atomic.Int64
	RemoveCount      atomic.Int64
	RemoveMisses     atomic.Int64
	LookupCount      atomic.Int64
	LookupMisses     atomic.Int64
	GrowCount        atomic.Int64
}

func (c *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	c.InsertCount.Add(1)
	c.InsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.InsertErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordSet(duration time.Duration, err error) {
	c.SetCount.Add(1)
	c.SetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.SetErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordRemove(duration time.Duration, removed bool) {
	c.RemoveCount.Add(1)
	if !removed {
		c.RemoveMisses.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordLookup(found bool) {
	c.LookupCount.Add(1)
	if !found {
		c.LookupMisses.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordGrow(int, int) {
	c.GrowCount.Add(1)
}

var _ MetricsCollector = NoopMetricsCollector{}
var _ MetricsCollector = (*BasicMetricsCollector)(nil)
