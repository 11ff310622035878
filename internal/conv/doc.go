// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer
// overflow/underflow when converting between signed/unsigned and different
// bit-width integer types, e.g. when translating allocator byte counts and
// chunk indices into fixed-width stat counters.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
