package alloc

import "github.com/pkg/errors"

var (
	// ErrOutOfMemory indicates that no pool has enough free capacity for a request,
	// or the selected pool has the capacity but no contiguous run long enough.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrInvalidPointer indicates an address that no pool owns, or a run that is
	// not currently allocated.
	ErrInvalidPointer = errors.New("alloc: invalid pointer")

	// ErrBadSpec indicates a pool spec or option with a non-positive or overflowing size.
	ErrBadSpec = errors.New("alloc: bad pool spec")

	// ErrNoPools indicates an allocator was constructed without any pool specs.
	ErrNoPools = errors.New("alloc: no pools configured")

	// ErrBadCount indicates a non-positive element count or an overflowing byte size.
	ErrBadCount = errors.New("alloc: element count must be positive")

	// ErrClosed indicates use of an allocator or pool after Close.
	ErrClosed = errors.New("alloc: allocator closed")
)
