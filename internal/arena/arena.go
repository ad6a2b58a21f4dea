// Package arena acquires the fixed byte regions that back allocator pools.
//
// A Region is address-stable for its whole lifetime: the backing memory is
// never moved or resized, so the address of any byte inside it can be used as
// an identity until Close is called. On Linux, Darwin and the BSDs regions are
// anonymous private mappings; elsewhere they are ordinary Go heap slices.
package arena

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrSize indicates a region was requested with a non-positive size.
var ErrSize = errors.New("arena: region size must be positive")

// Region is one contiguous, address-stable byte region.
type Region struct {
	data    []byte
	base    uintptr
	release func([]byte) error
	mapped  bool
}

// New acquires a region of exactly size bytes using the platform mapping
// where one is available.
func New(size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrSize
	}
	data, release, err := mapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("arena: acquire %d bytes: %w", size, err)
	}
	return newRegion(data, release, release != nil), nil
}

// NewHeap acquires a region backed by the Go heap. The runtime never moves
// heap objects, so the region is address-stable like a mapped one.
func NewHeap(size int) (*Region, error) {
	if size <= 0 {
		return nil, ErrSize
	}
	return newRegion(make([]byte, size), nil, false), nil
}

func newRegion(data []byte, release func([]byte) error, mapped bool) *Region {
	return &Region{
		data:    data,
		base:    uintptr(unsafe.Pointer(unsafe.SliceData(data))),
		release: release,
		mapped:  mapped,
	}
}

// Bytes returns the region's memory, or nil once the region is closed.
func (r *Region) Bytes() []byte { return r.data }

// Len returns the region size in bytes (0 once closed).
func (r *Region) Len() int { return len(r.data) }

// Base returns the address of the first byte. It stays valid as an identity
// after Close, but must not be dereferenced.
func (r *Region) Base() uintptr { return r.base }

// Mapped reports whether the region is an OS mapping rather than heap memory.
func (r *Region) Mapped() bool { return r.mapped }

// Closed reports whether Close has already released the region.
func (r *Region) Closed() bool { return r.data == nil }

// Close releases the region. Closing twice is a no-op.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	if r.release == nil {
		return nil
	}
	return r.release(data)
}
