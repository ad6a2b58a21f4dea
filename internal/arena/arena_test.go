package arena

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ZeroedAndWritable(t *testing.T) {
	r, err := New(4096)
	require.NoError(t, err)
	defer r.Close()

	data := r.Bytes()
	require.Len(t, data, 4096)
	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: 0x%x", i, b)
		}
	}

	data[0] = 0xAA
	data[4095] = 0x55
	assert.Equal(t, byte(0xAA), r.Bytes()[0])
	assert.Equal(t, byte(0x55), r.Bytes()[4095])
}

func TestNew_MappedOnUnix(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "netbsd", "openbsd":
	default:
		t.Skip("anonymous mappings not used on " + runtime.GOOS)
	}
	r, err := New(128)
	require.NoError(t, err)
	defer r.Close()
	assert.True(t, r.Mapped(), "region should be an OS mapping")
}

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, ErrSize)

	_, err = NewHeap(-8)
	require.ErrorIs(t, err, ErrSize)
}

func TestRegion_BaseMatchesFirstByte(t *testing.T) {
	r, err := NewHeap(64)
	require.NoError(t, err)
	defer r.Close()

	assert.NotZero(t, r.Base())
	assert.False(t, r.Mapped())
	assert.Equal(t, 64, r.Len())
}

func TestRegion_CloseTwice(t *testing.T) {
	r, err := New(256)
	require.NoError(t, err)
	base := r.Base()

	require.NoError(t, r.Close())
	assert.True(t, r.Closed())
	assert.Nil(t, r.Bytes())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, base, r.Base(), "base stays as an identity after close")

	require.NoError(t, r.Close(), "second close is a no-op")
}

func TestRegion_DistinctRegionsDoNotOverlap(t *testing.T) {
	a, err := New(1024)
	require.NoError(t, err)
	defer a.Close()
	b, err := New(1024)
	require.NoError(t, err)
	defer b.Close()

	aEnd := a.Base() + uintptr(a.Len())
	bEnd := b.Base() + uintptr(b.Len())
	overlap := a.Base() < bEnd && b.Base() < aEnd
	assert.False(t, overlap, "regions [%x,%x) and [%x,%x) overlap", a.Base(), aEnd, b.Base(), bEnd)
}
