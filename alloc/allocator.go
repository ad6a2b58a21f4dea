package alloc

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/joshuapare/poolalloc/internal/buf"
)

// Allocator routes variable-size requests over a fixed, ordered set of pools.
//
// Alloc picks the pool with the smallest aggregate free capacity that still
// fits the request (best fit), then the left-most contiguous run inside it
// (first fit). Free finds the owning pool by address containment.
//
// An Allocator is not safe for concurrent use; wrap it with NewLocked.
type Allocator struct {
	pools    []*Pool
	elemSize int
	log      *zap.Logger
	stats    allocatorStats
	closed   bool
}

// New creates one pool per spec, in order. If any pool cannot be built, the
// pools created so far are released and the error is returned.
func New(specs []Spec, opts ...Option) (*Allocator, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if len(specs) == 0 {
		return nil, ErrNoPools
	}
	if o.elemSize <= 0 {
		return nil, errors.Wrapf(ErrBadSpec, "element size %d", o.elemSize)
	}
	if o.log == nil {
		o.log = defaultLogger()
	}

	a := &Allocator{
		pools:    make([]*Pool, 0, len(specs)),
		elemSize: o.elemSize,
		log:      o.log,
	}
	for i, spec := range specs {
		p, err := newPool(i, spec, o.acquire)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.pools = append(a.pools, p)
	}

	a.log.Debug("allocator ready",
		zap.Int("pools", len(a.pools)),
		zap.Int("elem_size", a.elemSize))
	return a, nil
}

// ElemSize returns the bytes per element.
func (a *Allocator) ElemSize() int { return a.elemSize }

// Pools returns the allocator's pools in construction order.
// Callers must not close or mutate them directly.
func (a *Allocator) Pools() []*Pool { return a.pools }

// byteSize converts an element count into bytes.
func (a *Allocator) byteSize(count int) (int, error) {
	size, ok := buf.MulOverflowSafe(count, a.elemSize)
	if count <= 0 || !ok {
		return 0, errors.Wrapf(ErrBadCount, "count %d × %d bytes", count, a.elemSize)
	}
	return size, nil
}

// Alloc reserves room for count elements. The returned slice has length
// count × element size and stays valid until the matching Free.
func (a *Allocator) Alloc(count int) (Addr, []byte, error) {
	a.stats.AllocCalls++
	if a.closed {
		return 0, nil, ErrClosed
	}
	size, err := a.byteSize(count)
	if err != nil {
		return 0, nil, err
	}

	ref, err := a.reserve(size)
	if err != nil {
		a.log.Debug("alloc failed", zap.Int("bytes", size), zap.Error(err))
		return 0, nil, err
	}

	p := a.pools[ref.Pool]
	data, _ := p.Bytes(ref.Chunk, size)
	a.stats.BytesReserved += int64(ref.Run * p.chunkSize)
	a.log.Debug("alloc",
		zap.Int("bytes", size),
		zap.Int("pool", ref.Pool),
		zap.Int("chunk", ref.Chunk),
		zap.Int("run", ref.Run))
	return p.addrOf(ref.Chunk), data, nil
}

// reserve selects a pool for size bytes and reserves a run in it.
func (a *Allocator) reserve(size int) (Ref, error) {
	idx := a.pickPool(size)
	if idx < 0 {
		a.stats.OutOfMemory++
		return Ref{}, errors.Wrapf(ErrOutOfMemory, "no pool has %d free bytes", size)
	}
	p := a.pools[idx]
	chunk, err := p.Reserve(size)
	if err != nil {
		if errors.Is(err, ErrOutOfMemory) {
			a.stats.OutOfMemory++
			a.stats.Fragmented++
		}
		return Ref{}, err
	}
	return Ref{Pool: idx, Chunk: chunk, Run: p.runLen(size)}, nil
}

// pickPool returns the index of the pool with the smallest free capacity that
// is still at least size bytes, or -1. Ties go to the earlier pool.
func (a *Allocator) pickPool(size int) int {
	best, bestFree := -1, 0
	for i, p := range a.pools {
		free := p.FreeBytes()
		if size <= free && (best < 0 || free < bestFree) {
			best, bestFree = i, free
		}
	}
	return best
}

// Free releases the block of count elements that Alloc returned at addr.
// Nothing changes when it fails.
func (a *Allocator) Free(addr Addr, count int) error {
	a.stats.FreeCalls++
	if a.closed {
		return ErrClosed
	}
	ref, err := a.Lookup(addr, count)
	if err != nil {
		if errors.Is(err, ErrInvalidPointer) {
			a.stats.InvalidPointer++
		}
		return err
	}
	p := a.pools[ref.Pool]
	if err := p.releaseRun(ref.Chunk, ref.Run); err != nil {
		a.stats.InvalidPointer++
		a.log.Debug("free rejected", zap.Stringer("addr", addr), zap.Error(err))
		return err
	}
	a.stats.BytesReleased += int64(ref.Run * p.chunkSize)
	a.log.Debug("free",
		zap.Int("pool", ref.Pool),
		zap.Int("chunk", ref.Chunk),
		zap.Int("run", ref.Run))
	return nil
}

// Lookup translates addr and an element count into the handle of the run
// they describe. The first pool containing addr wins. Lookup does not check
// that the run is allocated.
func (a *Allocator) Lookup(addr Addr, count int) (Ref, error) {
	if a.closed {
		return Ref{}, ErrClosed
	}
	size, err := a.byteSize(count)
	if err != nil {
		return Ref{}, err
	}
	for i, p := range a.pools {
		if p.Contains(addr) {
			return Ref{Pool: i, Chunk: p.chunkOf(addr), Run: p.runLen(size)}, nil
		}
	}
	return Ref{}, errors.Wrapf(ErrInvalidPointer, "address %s is not owned by any pool", addr)
}

// Bytes returns the count × element size bytes of the live block at addr.
func (a *Allocator) Bytes(addr Addr, count int) ([]byte, error) {
	ref, err := a.Lookup(addr, count)
	if err != nil {
		return nil, err
	}
	p := a.pools[ref.Pool]
	if !p.isRun(ref.Chunk, ref.Run) {
		return nil, errors.Wrapf(ErrInvalidPointer, "address %s is not a live block", addr)
	}
	size, _ := a.byteSize(count)
	off := int(uintptr(addr) - p.region.Base())
	data, ok := buf.Slice(p.region.Bytes(), off, size)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidPointer, "block at %s runs past its pool", addr)
	}
	return data, nil
}

// Stats returns a snapshot of the counters and every pool's occupancy.
func (a *Allocator) Stats() Stats {
	s := Stats{
		AllocCalls:     a.stats.AllocCalls,
		FreeCalls:      a.stats.FreeCalls,
		OutOfMemory:    a.stats.OutOfMemory,
		Fragmented:     a.stats.Fragmented,
		InvalidPointer: a.stats.InvalidPointer,
		BytesReserved:  a.stats.BytesReserved,
		BytesReleased:  a.stats.BytesReleased,
		Pools:          make([]PoolStats, len(a.pools)),
	}
	for i, p := range a.pools {
		s.Pools[i] = p.Stats()
	}
	return s
}

// Close releases every pool. Further calls return ErrClosed; closing twice is a no-op.
func (a *Allocator) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	var err error
	for _, p := range a.pools {
		err = multierr.Append(err, p.Close())
	}
	_ = a.log.Sync()
	return err
}

// Compile-time interface check
var _ Interface = (*Allocator)(nil)
