package alloc

import "fmt"

// Addr is the address of the first byte of an allocation.
// It is an identity only and is never converted back into a pointer.
type Addr uintptr

// String formats the address in hex.
func (a Addr) String() string { return fmt.Sprintf("%#x", uintptr(a)) }

// Spec configures one pool: Chunks chunks of ChunkSize bytes each.
type Spec struct {
	Chunks    int
	ChunkSize int
}

// Capacity returns the pool's total size in bytes.
func (s Spec) Capacity() int { return s.Chunks * s.ChunkSize }

// Ref is the logical handle of an allocated run: which pool, the first chunk,
// and the run length in chunks. Addresses are translated to and from Refs only
// at the public boundary.
type Ref struct {
	Pool  int
	Chunk int
	Run   int
}

// Interface is the allocation surface shared by Allocator and Locked.
type Interface interface {
	// Alloc reserves room for count elements and returns the block's address
	// and its bytes (len = count × element size).
	Alloc(count int) (Addr, []byte, error)

	// Free releases the block of count elements starting at addr.
	Free(addr Addr, count int) error

	// Stats returns a snapshot of counters and per-pool occupancy.
	Stats() Stats

	// Close releases every pool's memory.
	Close() error
}
