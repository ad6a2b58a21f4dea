// Package bitmap implements the per-chunk occupancy record used by pools.
//
// Bit i set means chunk i is occupied. Run searches are strictly left to
// right, so the result of FirstFit is always the left-most clear run that is
// long enough.
package bitmap

import "math/bits"

const wordBits = 64

// Bitmap is a fixed-length bitset.
type Bitmap struct {
	words []uint64
	n     int
}

// New returns a bitmap of n clear bits.
func New(n int) *Bitmap {
	if n < 0 {
		n = 0
	}
	return &Bitmap{
		words: make([]uint64, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// Len returns the number of bits.
func (b *Bitmap) Len() int { return b.n }

// Test reports whether bit i is set. Bits outside the bitmap are never set.
func (b *Bitmap) Test(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.words[i/wordBits]&(1<<(uint(i)%wordBits)) != 0
}

// SetRange sets bits [start, start+n).
func (b *Bitmap) SetRange(start, n int) {
	for i := start; i < start+n; i++ {
		b.words[i/wordBits] |= 1 << (uint(i) % wordBits)
	}
}

// ClearRange clears bits [start, start+n).
func (b *Bitmap) ClearRange(start, n int) {
	for i := start; i < start+n; i++ {
		b.words[i/wordBits] &^= 1 << (uint(i) % wordBits)
	}
}

// AllSet reports whether every bit in [start, start+n) is set.
// Ranges that leave the bitmap are never all set.
func (b *Bitmap) AllSet(start, n int) bool {
	if start < 0 || n < 0 || start+n > b.n {
		return false
	}
	for i := start; i < start+n; i++ {
		if !b.Test(i) {
			return false
		}
	}
	return true
}

// AnySet reports whether any bit in [start, start+n) is set.
// Only the part of the range inside the bitmap is examined.
func (b *Bitmap) AnySet(start, n int) bool {
	for i := max(start, 0); i < start+n && i < b.n; i++ {
		if b.Test(i) {
			return true
		}
	}
	return false
}

// Count returns the number of set bits.
func (b *Bitmap) Count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// FirstFit returns the start of the left-most run of at least n clear bits.
func (b *Bitmap) FirstFit(n int) (int, bool) {
	if n <= 0 || n > b.n {
		return 0, false
	}
	runStart, runLen := 0, 0
	for i := 0; i < b.n; {
		// Skip fully occupied words in one step.
		if i%wordBits == 0 && b.words[i/wordBits] == ^uint64(0) && i+wordBits <= b.n {
			runLen = 0
			i += wordBits
			continue
		}
		if b.Test(i) {
			runLen = 0
		} else {
			if runLen == 0 {
				runStart = i
			}
			runLen++
			if runLen == n {
				return runStart, true
			}
		}
		i++
	}
	return 0, false
}

// LongestRun returns the length of the longest run of clear bits.
func (b *Bitmap) LongestRun() int {
	best, cur := 0, 0
	for i := range b.n {
		if b.Test(i) {
			cur = 0
			continue
		}
		cur++
		best = max(best, cur)
	}
	return best
}

// String renders the bitmap as '#' for set bits and '.' for clear ones.
func (b *Bitmap) String() string {
	out := make([]byte, b.n)
	for i := range b.n {
		if b.Test(i) {
			out[i] = '#'
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
