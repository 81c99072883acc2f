// Package allocator tracks data block occupancy for a container.
//
// Occupancy is held in a Roaring bitmap in memory; on disk it is a plain
// one-byte-per-block flag array persisted verbatim in the metadata region
// (the container format is not bit-packed).
package allocator

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrOutOfSpace is returned when an allocation cannot be satisfied.
// Failed allocations mutate nothing.
var ErrOutOfSpace = errors.New("out of space")

// Allocator is a first-fit block allocator over a fixed block count.
// It is not safe for concurrent use; the engine owning it is
// single-threaded by contract.
type Allocator struct {
	occupied   *roaring.Bitmap
	blockCount int64
}

// New returns an empty allocator for blockCount blocks.
func New(blockCount int64) *Allocator {
	return &Allocator{
		occupied:   roaring.New(),
		blockCount: blockCount,
	}
}

// Allocate finds the n lowest-indexed free blocks, marks them occupied and
// returns their indices in ascending order. If fewer than n blocks are
// free it returns ErrOutOfSpace and performs no mutation.
func (a *Allocator) Allocate(n int64) ([]uint32, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative block count %d", n)
	}
	if free := a.blockCount - int64(a.occupied.GetCardinality()); free < n {
		return nil, fmt.Errorf("%w: need %d blocks, %d free", ErrOutOfSpace, n, free)
	}
	blocks := make([]uint32, 0, n)
	for i := uint32(0); int64(len(blocks)) < n; i++ {
		if !a.occupied.Contains(i) {
			blocks = append(blocks, i)
		}
	}
	a.occupied.AddMany(blocks)
	return blocks, nil
}

// Free clears the occupancy bit for each given index. Freeing an
// already-free index is a no-op.
func (a *Allocator) Free(blocks []uint32) {
	for _, b := range blocks {
		a.occupied.Remove(b)
	}
}

// Mark sets the occupancy bit for each given index. Used when rebuilding
// state from disk and when rolling back a failed overwrite.
func (a *Allocator) Mark(blocks []uint32) {
	a.occupied.AddMany(blocks)
}

// Used returns the number of occupied blocks.
func (a *Allocator) Used() int64 {
	return int64(a.occupied.GetCardinality())
}

// FreeCount returns the number of unoccupied blocks.
func (a *Allocator) FreeCount() int64 {
	return a.blockCount - a.Used()
}

// BlockCount returns the total number of blocks managed.
func (a *Allocator) BlockCount() int64 {
	return a.blockCount
}

// Occupied reports whether block i is occupied.
func (a *Allocator) Occupied(i uint32) bool {
	return a.occupied.Contains(i)
}

// MarshalFlags materializes the on-disk occupancy bytes: one byte per
// block, 0 = free, 1 = occupied.
func (a *Allocator) MarshalFlags() []byte {
	flags := make([]byte, a.blockCount)
	it := a.occupied.Iterator()
	for it.HasNext() {
		flags[it.Next()] = 1
	}
	return flags
}

// UnmarshalFlags rebuilds occupancy from on-disk bytes. Any nonzero byte
// marks the block occupied. len(flags) must equal the block count.
func (a *Allocator) UnmarshalFlags(flags []byte) error {
	if int64(len(flags)) != a.blockCount {
		return fmt.Errorf("flag array has %d bytes, want %d", len(flags), a.blockCount)
	}
	occupied := roaring.New()
	for i, f := range flags {
		if f != 0 {
			occupied.Add(uint32(i))
		}
	}
	a.occupied = occupied
	return nil
}
