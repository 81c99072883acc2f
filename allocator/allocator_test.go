package allocator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateFirstFitAscending(t *testing.T) {
	a := New(8)

	blocks, err := a.Allocate(3)
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1, 2}, blocks)
	require.Equal(t, int64(3), a.Used())
	require.Equal(t, int64(5), a.FreeCount())

	// Free the middle block; the next allocation reuses the lowest gap.
	a.Free([]uint32{1})
	blocks, err = a.Allocate(2)
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 3}, blocks)
}

func TestAllocateZero(t *testing.T) {
	a := New(4)
	blocks, err := a.Allocate(0)
	require.NoError(t, err)
	require.Empty(t, blocks)
	require.Equal(t, int64(0), a.Used())
}

func TestAllocateOutOfSpace(t *testing.T) {
	a := New(4)
	_, err := a.Allocate(3)
	require.NoError(t, err)

	// Requesting more than remains must fail without partial allocation.
	_, err = a.Allocate(2)
	require.ErrorIs(t, err, ErrOutOfSpace)
	require.Equal(t, int64(3), a.Used())
	require.Equal(t, int64(1), a.FreeCount())

	blocks, err := a.Allocate(1)
	require.NoError(t, err)
	require.Equal(t, []uint32{3}, blocks)
}

func TestFreeIsIdempotent(t *testing.T) {
	a := New(4)
	blocks, err := a.Allocate(2)
	require.NoError(t, err)

	a.Free(blocks)
	require.Equal(t, int64(0), a.Used())

	// Freeing already-clear indices is a no-op, not an error.
	a.Free(blocks)
	a.Free([]uint32{3})
	require.Equal(t, int64(0), a.Used())
}

func TestMark(t *testing.T) {
	a := New(8)
	a.Mark([]uint32{2, 5})
	require.True(t, a.Occupied(2))
	require.True(t, a.Occupied(5))
	require.False(t, a.Occupied(0))

	blocks, err := a.Allocate(3)
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1, 3}, blocks)
}

func TestFlagsRoundTrip(t *testing.T) {
	a := New(6)
	a.Mark([]uint32{0, 4})

	flags := a.MarshalFlags()
	require.Equal(t, []byte{1, 0, 0, 0, 1, 0}, flags)

	b := New(6)
	require.NoError(t, b.UnmarshalFlags(flags))
	require.Equal(t, int64(2), b.Used())
	require.True(t, b.Occupied(0))
	require.True(t, b.Occupied(4))
}

func TestUnmarshalFlagsLengthMismatch(t *testing.T) {
	a := New(6)
	require.Error(t, a.UnmarshalFlags(make([]byte, 3)))
}
