// Package resource provides global resource budgeting for allocators.
//
// A Controller caps how much memory a group of arenas may reserve and how
// fast they may reserve it. It implements arena.MemoryAcquirer.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// AllocRateBytesPerSec limits how many bytes per second may be newly
	// reserved. This smooths out reallocation bursts from growing
	// containers. If 0, unlimited.
	AllocRateBytesPerSec int64
}

// Controller manages a global memory budget.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	allocLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.AllocRateBytesPerSec > 0 {
		c.allocLimiter = rate.NewLimiter(rate.Limit(cfg.AllocRateBytesPerSec), int(cfg.AllocRateBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// If a hard limit is configured and usage would exceed it, this blocks
// until memory is available or ctx is canceled. The rate limiter, when
// configured, is applied first.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.allocLimiter != nil {
		n := int(bytes)
		// Reservations beyond the burst are waited out in burst-sized steps.
		for n > c.allocLimiter.Burst() {
			if err := c.allocLimiter.WaitN(ctx, c.allocLimiter.Burst()); err != nil {
				return err
			}
			n -= c.allocLimiter.Burst()
		}
		if err := c.allocLimiter.WaitN(ctx, n); err != nil {
			return err
		}
	}

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if the limit would be exceeded.
// The rate limiter is not consulted.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil {
		return true
	}
	if bytes <= 0 {
		return true
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return false
		}
	}

	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	return c.memUsed.Load()
}
