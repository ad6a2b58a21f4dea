// Package alloc provides a fixed-region memory allocator built from several
// independent pools, each divided into chunks of one uniform size.
//
// # Overview
//
// Every pool owns one address-stable region of ChunkCount × ChunkSize bytes
// and a per-chunk occupancy bitmap. A request for n elements needs
// n × ElemSize bytes; it is served by a contiguous run of chunks in a single
// pool. Nothing grows after construction.
//
// # Pool Selection
//
// Alloc scores every pool by its aggregate free capacity (free chunks × chunk
// size) and picks the smallest capacity that still covers the request. This
// keeps the roomiest pools intact for larger future requests. Ties go to the
// pool listed first.
//
//	pools: [10 × 10B] [5 × 10B]      free: 100B, 50B
//	Alloc(40)  → second pool (50B is the tighter fit)
//
// Inside the chosen pool the left-most contiguous free run that is long enough
// wins (first fit). If the chosen pool has the bytes but no run long enough,
// Alloc fails with ErrOutOfMemory; other pools are not tried.
//
// # Usage Example
//
//	a, err := alloc.New([]alloc.Spec{
//	    {Chunks: 256, ChunkSize: 16},
//	    {Chunks: 64, ChunkSize: 256},
//	}, alloc.WithElemSize(8))
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	addr, block, err := a.Alloc(10) // 80 bytes
//	if err != nil {
//	    return err
//	}
//	copy(block, payload)
//
//	err = a.Free(addr, 10)
//
// # Addresses and Refs
//
// Addr is the address of a block's first byte and serves only as an identity;
// it is never turned back into a pointer. Internally every block is a Ref
// (pool, first chunk, run length), and Lookup performs the translation.
//
// # Errors
//
//   - ErrOutOfMemory: no pool has enough free capacity, or the chosen pool is fragmented
//   - ErrInvalidPointer: Free got an address no pool owns, or a run that is not allocated
//
// Failed calls never change pool state.
//
// # Thread Safety
//
// Allocator and Pool are not thread-safe. Share an allocator between
// goroutines through Locked, which guards the whole allocator with one mutex.
package alloc
