package lightfs

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lightfs/allocator"
	"github.com/hupe1980/lightfs/container"
	"github.com/hupe1980/lightfs/metadata"
)

var (
	// ErrAlreadyExists is returned when a container or entry name collides
	// with an existing one.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when a container or entry is missing.
	ErrNotFound = errors.New("not found")

	// ErrIsFolder is returned when a content operation targets a
	// folder-flagged entry.
	ErrIsFolder = errors.New("entry is a folder")

	// ErrOutOfSpace is returned when an allocation cannot satisfy the
	// requested block count. Failed allocations leave all state untouched.
	ErrOutOfSpace = errors.New("out of space")

	// ErrNotLoaded is returned when an operation requires a ready engine
	// but neither Initialize nor Load has succeeded.
	ErrNotLoaded = errors.New("filesystem not loaded")

	// ErrMetadataFull is returned when the serialized entry map plus the
	// occupancy bytes would no longer fit in the fixed metadata region.
	ErrMetadataFull = errors.New("metadata region full")
)

// ErrCorruptMetadata is returned when a container's stored metadata cannot
// be decoded. The underlying *metadata.CorruptError carries the reason.
var ErrCorruptMetadata = metadata.ErrCorrupt

// translateError normalizes component errors into the package taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, container.ErrExists) {
		return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
	}
	if errors.Is(err, container.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, allocator.ErrOutOfSpace) {
		return fmt.Errorf("%w: %w", ErrOutOfSpace, err)
	}
	return err
}
