package flatmap

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when mutating a closed map.
	ErrClosed = errors.New("flatmap: map is closed")
)

// ErrAllocation indicates that growing the backing store failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrAllocation struct {
	Capacity int
	cause    error
}

func (e *ErrAllocation) Error() string {
	return fmt.Sprintf("allocation for capacity %d failed", e.Capacity)
}

func (e *ErrAllocation) Unwrap() error { return e.cause }
