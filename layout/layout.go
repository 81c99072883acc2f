// Package layout defines the fixed byte geometry of a lightfs container.
//
// A container is a single file partitioned into two regions:
//
//	[0, MetaSize)            metadata region: uint32 length prefix,
//	                         codec-encoded entry map, one occupancy byte
//	                         per data block
//	[MetaSize, TotalSize)    data region: BlockCount blocks of BlockSize
//	                         bytes each, addressed by index
//
// Every offset used elsewhere in lightfs derives from a single Geometry
// value so the numbers cannot drift between components.
package layout

import (
	"errors"
	"fmt"
)

// DefaultFileName is the conventional container file name.
const DefaultFileName = "light.fs"

const (
	// MetaLenSize is the width of the little-endian length prefix that
	// precedes the encoded entry map.
	MetaLenSize = 4

	mib = 1 << 20
)

var (
	// ErrInvalidGeometry is returned when a Geometry does not describe a
	// usable container.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// Geometry bundles the four numbers that fully determine a container's
// byte layout. The zero value is not usable; start from Default().
type Geometry struct {
	// TotalSize is the size of the container file in bytes.
	TotalSize int64
	// MetaSize is the reserved capacity of the metadata region in bytes.
	MetaSize int64
	// BlockSize is the size of one data block in bytes.
	BlockSize int64
}

// Default returns the standard geometry: a 256 MiB container with a
// 56 MiB metadata region and 1 MiB blocks (200 data blocks).
func Default() Geometry {
	return Geometry{
		TotalSize: 256 * mib,
		MetaSize:  56 * mib,
		BlockSize: 1 * mib,
	}
}

// Validate reports whether the geometry describes a usable container.
func (g Geometry) Validate() error {
	if g.TotalSize <= 0 || g.MetaSize <= 0 || g.BlockSize <= 0 {
		return fmt.Errorf("%w: sizes must be positive", ErrInvalidGeometry)
	}
	if g.MetaSize >= g.TotalSize {
		return fmt.Errorf("%w: metadata region (%d) must be smaller than the container (%d)", ErrInvalidGeometry, g.MetaSize, g.TotalSize)
	}
	if (g.TotalSize-g.MetaSize)%g.BlockSize != 0 {
		return fmt.Errorf("%w: data region (%d) is not a multiple of the block size (%d)", ErrInvalidGeometry, g.TotalSize-g.MetaSize, g.BlockSize)
	}
	if g.BlockCount() < 1 {
		return fmt.Errorf("%w: geometry yields no data blocks", ErrInvalidGeometry)
	}
	// The metadata region must at least hold the length prefix, an empty
	// encoded map and the full bitmap.
	if g.MetaSize < MetaLenSize+2+g.BlockCount() {
		return fmt.Errorf("%w: metadata region (%d) cannot hold the bitmap for %d blocks", ErrInvalidGeometry, g.MetaSize, g.BlockCount())
	}
	return nil
}

// BlockCount returns the number of data blocks the geometry provides.
func (g Geometry) BlockCount() int64 {
	if g.BlockSize <= 0 {
		return 0
	}
	return (g.TotalSize - g.MetaSize) / g.BlockSize
}

// BlockOffset returns the byte offset of block i within the container.
func (g Geometry) BlockOffset(i uint32) int64 {
	return g.MetaSize + int64(i)*g.BlockSize
}

// BlocksNeeded returns the number of blocks required to hold n bytes.
func (g Geometry) BlocksNeeded(n int64) int64 {
	return (n + g.BlockSize - 1) / g.BlockSize
}
