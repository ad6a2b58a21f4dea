package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fromPattern builds a bitmap from a '#'/'.' string.
func fromPattern(t *testing.T, pattern string) *Bitmap {
	t.Helper()
	b := New(len(pattern))
	for i, c := range pattern {
		switch c {
		case '#':
			b.SetRange(i, 1)
		case '.':
		default:
			t.Fatalf("bad pattern char %q", c)
		}
	}
	return b
}

func TestNew_AllClear(t *testing.T) {
	b := New(130)
	assert.Equal(t, 130, b.Len())
	assert.Equal(t, 0, b.Count())
	assert.Equal(t, 130, b.LongestRun())
}

func TestSetClearRange(t *testing.T) {
	b := New(70)
	b.SetRange(60, 8) // crosses the word boundary
	assert.Equal(t, 8, b.Count())
	assert.True(t, b.AllSet(60, 8))
	assert.False(t, b.Test(59))
	assert.False(t, b.Test(68))

	b.ClearRange(62, 2)
	assert.Equal(t, 6, b.Count())
	assert.False(t, b.AllSet(60, 8))
	assert.True(t, b.AllSet(64, 4))
}

func TestAllSet_OutOfRange(t *testing.T) {
	b := New(8)
	b.SetRange(0, 8)
	assert.False(t, b.AllSet(6, 4))
	assert.False(t, b.AllSet(-1, 2))
}

func TestTest_OutOfRange(t *testing.T) {
	b := New(4)
	b.SetRange(0, 4)
	assert.True(t, b.Test(3))
	assert.False(t, b.Test(-1))
	assert.False(t, b.Test(4))
	assert.False(t, b.Test(64), "past the last word")
}

func TestAnySet(t *testing.T) {
	b := fromPattern(t, "..#.....")
	assert.True(t, b.AnySet(0, 3))
	assert.True(t, b.AnySet(2, 1))
	assert.False(t, b.AnySet(0, 2))
	assert.False(t, b.AnySet(3, 5))
	assert.False(t, b.AnySet(3, 0), "empty range")
	assert.True(t, b.AnySet(-4, 7), "clipped to the bitmap")
	assert.False(t, b.AnySet(6, 10), "clipped to the bitmap")
}

func TestFirstFit_LeftMost(t *testing.T) {
	b := fromPattern(t, "..#...#....")

	start, ok := b.FirstFit(2)
	require.True(t, ok)
	assert.Equal(t, 0, start)

	start, ok = b.FirstFit(3)
	require.True(t, ok)
	assert.Equal(t, 3, start)

	start, ok = b.FirstFit(4)
	require.True(t, ok)
	assert.Equal(t, 7, start)

	_, ok = b.FirstFit(5)
	assert.False(t, ok)
}

func TestFirstFit_Fragmented(t *testing.T) {
	b := fromPattern(t, "..#..")
	_, ok := b.FirstFit(3)
	assert.False(t, ok, "4 free bits but no run of 3")
	assert.Equal(t, 2, b.LongestRun())
}

func TestFirstFit_SkipsFullWords(t *testing.T) {
	b := New(200)
	b.SetRange(0, 128)
	b.SetRange(130, 1)

	start, ok := b.FirstFit(2)
	require.True(t, ok)
	assert.Equal(t, 128, start)

	start, ok = b.FirstFit(3)
	require.True(t, ok)
	assert.Equal(t, 131, start)
}

func TestFirstFit_RunCrossingWords(t *testing.T) {
	b := New(128)
	b.SetRange(0, 60)
	b.SetRange(70, 58)

	start, ok := b.FirstFit(10)
	require.True(t, ok)
	assert.Equal(t, 60, start)

	_, ok = b.FirstFit(11)
	assert.False(t, ok)
}

func TestFirstFit_BadLength(t *testing.T) {
	b := New(4)
	_, ok := b.FirstFit(0)
	assert.False(t, ok)
	_, ok = b.FirstFit(5)
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	b := fromPattern(t, "##..#.")
	assert.Equal(t, "##..#.", b.String())
}
