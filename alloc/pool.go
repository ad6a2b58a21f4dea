package alloc

import (
	"github.com/pkg/errors"

	"github.com/joshuapare/poolalloc/internal/arena"
	"github.com/joshuapare/poolalloc/internal/bitmap"
	"github.com/joshuapare/poolalloc/internal/buf"
)

// Pool is one fixed region split into equal-size chunks.
//
// Invariants:
//   - occupancy has exactly chunkCount bits, bit i set ⇔ chunk i occupied
//   - freeChunks == chunkCount - occupancy.Count() after every operation
//   - every reserved run has its first chunk set in starts and its last in ends
//   - the region never moves or resizes until Close
type Pool struct {
	id         int
	chunkSize  int
	chunkCount int
	freeChunks int
	occupancy  *bitmap.Bitmap
	starts     *bitmap.Bitmap
	ends       *bitmap.Bitmap
	region     *arena.Region
}

// NewPool creates a fully free pool of chunkCount chunks of chunkSize bytes,
// backed by an OS mapping where available.
func NewPool(chunkCount, chunkSize int) (*Pool, error) {
	return newPool(0, Spec{Chunks: chunkCount, ChunkSize: chunkSize}, arena.New)
}

func newPool(id int, spec Spec, acquire func(int) (*arena.Region, error)) (*Pool, error) {
	if spec.Chunks <= 0 || spec.ChunkSize <= 0 {
		return nil, errors.Wrapf(ErrBadSpec, "pool %d: %d chunks of %d bytes", id, spec.Chunks, spec.ChunkSize)
	}
	size, ok := buf.MulOverflowSafe(spec.Chunks, spec.ChunkSize)
	if !ok {
		return nil, errors.Wrapf(ErrBadSpec, "pool %d: %d × %d bytes overflows", id, spec.Chunks, spec.ChunkSize)
	}
	region, err := acquire(size)
	if err != nil {
		return nil, errors.Wrapf(ErrOutOfMemory, "pool %d: %v", id, err)
	}
	return &Pool{
		id:         id,
		chunkSize:  spec.ChunkSize,
		chunkCount: spec.Chunks,
		freeChunks: spec.Chunks,
		occupancy:  bitmap.New(spec.Chunks),
		starts:     bitmap.New(spec.Chunks),
		ends:       bitmap.New(spec.Chunks),
		region:     region,
	}, nil
}

// ChunkSize returns the bytes per chunk.
func (p *Pool) ChunkSize() int { return p.chunkSize }

// ChunkCount returns the number of chunks.
func (p *Pool) ChunkCount() int { return p.chunkCount }

// FreeChunks returns the cached number of free chunks.
func (p *Pool) FreeChunks() int { return p.freeChunks }

// FreeBytes returns the aggregate free capacity, free chunks × chunk size.
// Free bytes need not be contiguous.
func (p *Pool) FreeBytes() int { return p.freeChunks * p.chunkSize }

// Capacity returns the pool size in bytes.
func (p *Pool) Capacity() int { return p.chunkCount * p.chunkSize }

// Base returns the address of the pool's first byte.
func (p *Pool) Base() Addr { return Addr(p.region.Base()) }

// Occupied reports whether chunk i is occupied.
func (p *Pool) Occupied(i int) bool { return p.occupancy.Test(i) }

// LargestFreeRun returns the longest contiguous free run, in chunks.
func (p *Pool) LargestFreeRun() int { return p.occupancy.LongestRun() }

// OccupancyMap renders chunk occupancy as '#' (occupied) and '.' (free).
func (p *Pool) OccupancyMap() string { return p.occupancy.String() }

// Contains reports whether addr lies inside the pool's region, including
// every byte of the last chunk.
func (p *Pool) Contains(addr Addr) bool {
	base := p.region.Base()
	a := uintptr(addr)
	return a >= base && a-base < uintptr(p.Capacity())
}

// chunkOf returns the index of the chunk containing addr. addr must be contained.
func (p *Pool) chunkOf(addr Addr) int {
	return int(uintptr(addr)-p.region.Base()) / p.chunkSize
}

// addrOf translates a chunk index into the address of its first byte.
func (p *Pool) addrOf(chunk int) Addr {
	return Addr(p.region.Base() + uintptr(chunk*p.chunkSize))
}

// runLen returns the number of chunks needed to hold byteSize bytes.
func (p *Pool) runLen(byteSize int) int {
	return buf.CeilDiv(byteSize, p.chunkSize)
}

// Reserve finds the left-most contiguous free run holding at least byteSize
// bytes, marks it occupied and returns its first chunk. It fails with
// ErrOutOfMemory when no run is long enough, even if the pool's total free
// bytes would be.
func (p *Pool) Reserve(byteSize int) (int, error) {
	if p.region.Closed() {
		return 0, ErrClosed
	}
	if byteSize <= 0 {
		return 0, errors.Wrapf(ErrBadCount, "pool %d: reserve %d bytes", p.id, byteSize)
	}
	run := p.runLen(byteSize)
	start, ok := p.occupancy.FirstFit(run)
	if !ok {
		return 0, errors.Wrapf(ErrOutOfMemory,
			"pool %d: no run of %d chunks (%d free, largest run %d)",
			p.id, run, p.freeChunks, p.occupancy.LongestRun())
	}
	p.occupancy.SetRange(start, run)
	p.starts.SetRange(start, 1)
	p.ends.SetRange(start+run-1, 1)
	p.freeChunks -= run
	return start, nil
}

// Release frees the run starting at chunk start that holds count elements of
// elemSize bytes: ceil(count × elemSize / chunkSize) chunks.
func (p *Pool) Release(start, count, elemSize int) error {
	size, ok := buf.MulOverflowSafe(count, elemSize)
	if !ok || size <= 0 {
		return errors.Wrapf(ErrBadCount, "pool %d: release %d × %d bytes", p.id, count, elemSize)
	}
	return p.releaseRun(start, p.runLen(size))
}

// releaseRun marks run chunks starting at start free. The chunks must be
// exactly one run handed out by Reserve; otherwise nothing changes.
func (p *Pool) releaseRun(start, run int) error {
	if p.region.Closed() {
		return ErrClosed
	}
	if !p.isRun(start, run) {
		return errors.Wrapf(ErrInvalidPointer,
			"pool %d: chunks [%d,%d) are not an allocated run", p.id, start, start+run)
	}
	p.occupancy.ClearRange(start, run)
	p.starts.ClearRange(start, 1)
	p.ends.ClearRange(start+run-1, 1)
	p.freeChunks += run
	return nil
}

// isRun reports whether [start, start+run) is exactly one reserved run.
func (p *Pool) isRun(start, run int) bool {
	if run <= 0 || !p.occupancy.AllSet(start, run) {
		return false
	}
	last := start + run - 1
	return p.starts.Test(start) && p.ends.Test(last) &&
		!p.starts.AnySet(start+1, run-1) && !p.ends.AnySet(start, run-1)
}

// Bytes returns the first n bytes of the run starting at chunk start.
func (p *Pool) Bytes(start, n int) ([]byte, bool) {
	off, ok := buf.MulOverflowSafe(start, p.chunkSize)
	if !ok {
		return nil, false
	}
	return buf.Slice(p.region.Bytes(), off, n)
}

// Stats returns the pool's current occupancy figures.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		ChunkSize:      p.chunkSize,
		ChunkCount:     p.chunkCount,
		FreeChunks:     p.freeChunks,
		LargestFreeRun: p.occupancy.LongestRun(),
	}
}

// Close releases the pool's region. Closing twice is a no-op.
func (p *Pool) Close() error {
	return p.region.Close()
}
