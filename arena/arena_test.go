package arena

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
	"unsafe"
)

func TestArena_New(t *testing.T) {
	t.Run("default chunk size", func(t *testing.T) {
		a, err := New(0)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Close()

		if a.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize=%d, got %d", DefaultChunkSize, a.chunkSize)
		}
		if a.alignment != DefaultAlignment {
			t.Errorf("expected alignment=%d, got %d", DefaultAlignment, a.alignment)
		}
		if a.current.Load() == nil {
			t.Error("current chunk should not be nil")
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		a, err := New(4096)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Close()

		if a.chunkSize != 4096 {
			t.Errorf("expected chunkSize=4096, got %d", a.chunkSize)
		}
	})
}

func TestArena_Alloc(t *testing.T) {
	t.Run("basic allocation", func(t *testing.T) {
		a, err := New(4096)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Close()

		buf, err := a.Alloc(100)
		if err != nil {
			t.Fatalf("Alloc failed: %v", err)
		}
		if len(buf) != 100 {
			t.Errorf("expected len=100, got %d", len(buf))
		}

		// Verify zero-initialization
		for i, b := range buf {
			if b != 0 {
				t.Errorf("byte at index %d not zero: %d", i, b)
			}
		}
	})

	t.Run("zero size", func(t *testing.T) {
		a, err := New(4096)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Close()

		buf, err := a.Alloc(0)
		if err != nil {
			t.Fatalf("Alloc failed: %v", err)
		}
		if buf != nil {
			t.Error("expected nil for zero size")
		}
	})

	t.Run("alignment", func(t *testing.T) {
		a, err := New(4096)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Close()

		sizes := []int{1, 3, 5, 7, 9, 15, 17}
		for _, size := range sizes {
			buf, err := a.Alloc(size)
			if err != nil {
				t.Fatalf("allocation failed for size=%d: %v", size, err)
			}

			ptr := uintptr(unsafe.Pointer(&buf[0]))
			if ptr%uintptr(DefaultAlignment) != 0 {
				t.Errorf("size=%d ptr=%x not aligned", size, ptr)
			}
		}
	})

	t.Run("multiple chunks", func(t *testing.T) {
		a, err := New(4096)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Close()

		for i := 0; i < 10; i++ {
			if _, err := a.Alloc(1024); err != nil {
				t.Fatalf("allocation %d failed: %v", i, err)
			}
		}

		stats := a.Stats()
		if stats.ChunksAllocated <= 1 {
			t.Error("expected multiple chunks")
		}
	})

	t.Run("oversize allocation gets dedicated chunk", func(t *testing.T) {
		a, err := New(4096)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Close()

		buf, err := a.Alloc(64 * 1024)
		if err != nil {
			t.Fatalf("oversize Alloc failed: %v", err)
		}
		if len(buf) != 64*1024 {
			t.Errorf("expected len=%d, got %d", 64*1024, len(buf))
		}

		// Small allocations must still land in bump chunks afterwards.
		if _, err := a.Alloc(64); err != nil {
			t.Fatalf("small Alloc after oversize failed: %v", err)
		}
	})
}

func TestArena_Realloc(t *testing.T) {
	a, err := New(4096)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	buf, err := a.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	for i := range buf {
		buf[i] = byte(i + 1)
	}

	grown, err := a.Realloc(buf, 64)
	if err != nil {
		t.Fatalf("Realloc failed: %v", err)
	}
	if len(grown) != 64 {
		t.Errorf("expected len=64, got %d", len(grown))
	}
	for i := 0; i < 16; i++ {
		if grown[i] != byte(i+1) {
			t.Errorf("byte %d lost during realloc: got %d", i, grown[i])
		}
	}
	for i := 16; i < 64; i++ {
		if grown[i] != 0 {
			t.Errorf("grown byte %d not zero: %d", i, grown[i])
		}
	}

	stats := a.Stats()
	if stats.BytesFreed != 16 {
		t.Errorf("expected BytesFreed=16, got %d", stats.BytesFreed)
	}
}

func TestArena_Stats(t *testing.T) {
	t.Run("initial stats", func(t *testing.T) {
		a, err := New(4096)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Close()

		stats := a.Stats()
		if stats.ChunksAllocated != 1 {
			t.Errorf("expected ChunksAllocated=1, got %d", stats.ChunksAllocated)
		}
		if stats.BytesReserved != 4096 {
			t.Errorf("expected BytesReserved=4096, got %d", stats.BytesReserved)
		}
		if stats.BytesUsed != 0 {
			t.Errorf("expected BytesUsed=0, got %d", stats.BytesUsed)
		}
	})

	t.Run("after allocations", func(t *testing.T) {
		a, err := New(4096)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer a.Close()

		a.Alloc(100)
		a.Alloc(200)

		stats := a.Stats()
		if stats.BytesUsed != 300 {
			t.Errorf("expected BytesUsed=300, got %d", stats.BytesUsed)
		}
		if stats.TotalAllocs != 2 {
			t.Errorf("expected TotalAllocs=2, got %d", stats.TotalAllocs)
		}
	})
}

func TestArena_Close(t *testing.T) {
	a, err := New(4096)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	a.Alloc(100)

	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	stats := a.Stats()
	if stats.ActiveChunks != 0 {
		t.Errorf("expected ActiveChunks=0 after close, got %d", stats.ActiveChunks)
	}

	// Idempotent
	if err := a.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Allocating from a closed arena fails
	if _, err := a.Alloc(16); err == nil {
		t.Error("expected error allocating from closed arena")
	}
}

func TestArena_Concurrent(t *testing.T) {
	a, err := New(DefaultChunkSize)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	const goroutines = 50
	const allocsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < allocsPerGoroutine; j++ {
				buf, err := a.Alloc(64)
				if err != nil {
					t.Error(err)
					return
				}
				buf[0] = byte(j)
				runtime.KeepAlive(buf)
			}
		}()
	}

	wg.Wait()

	stats := a.Stats()
	if stats.TotalAllocs != goroutines*allocsPerGoroutine {
		t.Errorf("expected TotalAllocs=%d, got %d",
			goroutines*allocsPerGoroutine, stats.TotalAllocs)
	}
}

func BenchmarkArena_Alloc(b *testing.B) {
	sizes := []int{16, 64, 256, 1024}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size=%d", size), func(b *testing.B) {
			a, err := New(DefaultChunkSize)
			if err != nil {
				b.Fatal(err)
			}
			defer a.Close()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_, _ = a.Alloc(size)
			}
		})
	}
}
