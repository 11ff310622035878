// Package mem provides memory allocation utilities for the heap-backed
// allocator.
package mem
