package alloc

import (
	"fmt"
	"io"
)

// PoolStats describes one pool's occupancy.
type PoolStats struct {
	ChunkSize      int `json:"chunk_size"`
	ChunkCount     int `json:"chunk_count"`
	FreeChunks     int `json:"free_chunks"`
	LargestFreeRun int `json:"largest_free_run"`
}

// FreeBytes returns the pool's aggregate free capacity.
func (s PoolStats) FreeBytes() int { return s.FreeChunks * s.ChunkSize }

// Capacity returns the pool size in bytes.
func (s PoolStats) Capacity() int { return s.ChunkCount * s.ChunkSize }

// Stats is a snapshot of allocator counters.
type Stats struct {
	AllocCalls     int   `json:"alloc_calls"`
	FreeCalls      int   `json:"free_calls"`
	OutOfMemory    int   `json:"out_of_memory"`    // Alloc calls failing with ErrOutOfMemory
	Fragmented     int   `json:"fragmented"`       // subset of OutOfMemory where the chosen pool had the bytes but no run
	InvalidPointer int   `json:"invalid_pointer"`  // Free calls failing with ErrInvalidPointer
	BytesReserved  int64 `json:"bytes_reserved"`   // chunk bytes handed out, including rounding
	BytesReleased  int64 `json:"bytes_released"`   // chunk bytes returned

	Pools []PoolStats `json:"pools"`
}

// InUse returns the chunk bytes currently reserved.
func (s Stats) InUse() int64 { return s.BytesReserved - s.BytesReleased }

// allocatorStats holds the running counters; pool figures are added on snapshot.
type allocatorStats struct {
	AllocCalls     int
	FreeCalls      int
	OutOfMemory    int
	Fragmented     int
	InvalidPointer int
	BytesReserved  int64
	BytesReleased  int64
}

// WriteTo prints a human-readable summary.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	var total int64
	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		total += int64(n)
		return err
	}
	if err := write("Alloc calls:     %d (oom: %d, fragmented: %d)\n", s.AllocCalls, s.OutOfMemory, s.Fragmented); err != nil {
		return total, err
	}
	if err := write("Free calls:      %d (invalid: %d)\n", s.FreeCalls, s.InvalidPointer); err != nil {
		return total, err
	}
	if err := write("Bytes in use:    %d\n", s.InUse()); err != nil {
		return total, err
	}
	for i, p := range s.Pools {
		if err := write("Pool %d: %d × %dB, %d free chunks, largest run %d\n",
			i, p.ChunkCount, p.ChunkSize, p.FreeChunks, p.LargestFreeRun); err != nil {
			return total, err
		}
	}
	return total, nil
}
