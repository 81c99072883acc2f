// Package container performs raw byte I/O against a lightfs backing file.
//
// A Container knows the file's geometry and nothing about entries or
// allocation; it reads and writes the metadata region and individual data
// blocks at fixed offsets. Every operation opens the backing file, performs
// scoped positioned I/O and closes it before returning; no handle is held
// across calls.
package container

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/lightfs/internal/fs"
	"github.com/hupe1980/lightfs/layout"
)

var (
	// ErrExists is returned by Create when the backing file is already present.
	ErrExists = errors.New("container already exists")
	// ErrNotExist is returned when the backing file is absent.
	ErrNotExist = errors.New("container not found")
)

// Container addresses a single backing file with a fixed geometry.
type Container struct {
	fsys fs.FileSystem
	path string
	geo  layout.Geometry
}

// New returns a Container for the file at path. The file need not exist
// yet; use Create or check Exists.
func New(fsys fs.FileSystem, path string, geo layout.Geometry) (*Container, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	return &Container{fsys: fsys, path: path, geo: geo}, nil
}

// Path returns the backing file path.
func (c *Container) Path() string { return c.path }

// Geometry returns the container geometry.
func (c *Container) Geometry() layout.Geometry { return c.geo }

// Exists reports whether the backing file is present.
func (c *Container) Exists() bool {
	_, err := c.fsys.Stat(c.path)
	return err == nil
}

// Create creates the zero-filled backing file of the full container size.
// It fails with ErrExists if the file is already present.
func (c *Container) Create() error {
	if c.Exists() {
		return fmt.Errorf("%w: %s", ErrExists, c.path)
	}
	f, err := c.fsys.OpenFile(c.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	if err := c.fsys.Truncate(c.path, c.geo.TotalSize); err != nil {
		return fmt.Errorf("size container: %w", err)
	}
	return nil
}

// WriteMeta overwrites the start of the metadata region with data. The
// caller guarantees len(data) fits within the region; the remainder of the
// region is left untouched, exactly like the whole-region rewrite of the
// original format (stale tail bytes past the declared length are ignored
// on read).
func (c *Container) WriteMeta(data []byte) error {
	if int64(len(data)) > c.geo.MetaSize {
		return fmt.Errorf("metadata (%d bytes) exceeds region capacity (%d)", len(data), c.geo.MetaSize)
	}
	f, err := c.open(os.O_WRONLY)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteAt(data, 0); err != nil {
		return fmt.Errorf("write metadata region: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync metadata region: %w", err)
	}
	return nil
}

// ReadMeta reads up to n bytes from the start of the metadata region.
func (c *Container) ReadMeta(n int64) ([]byte, error) {
	if n > c.geo.MetaSize {
		n = c.geo.MetaSize
	}
	f, err := c.open(os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, n)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, n), buf); err != nil {
		return nil, fmt.Errorf("read metadata region: %w", err)
	}
	return buf, nil
}

// WriteBlock writes data into block i. len(data) must not exceed the block
// size; a short write leaves the block's tail bytes as they were, which is
// fine because reads never go past an entry's recorded size.
func (c *Container) WriteBlock(i uint32, data []byte) error {
	if int64(i) >= c.geo.BlockCount() {
		return fmt.Errorf("block %d out of range (%d blocks)", i, c.geo.BlockCount())
	}
	if int64(len(data)) > c.geo.BlockSize {
		return fmt.Errorf("data (%d bytes) exceeds block size (%d)", len(data), c.geo.BlockSize)
	}
	f, err := c.open(os.O_WRONLY)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteAt(data, c.geo.BlockOffset(i)); err != nil {
		return fmt.Errorf("write block %d: %w", i, err)
	}
	return nil
}

// ReadBlock reads the full block i.
func (c *Container) ReadBlock(i uint32) ([]byte, error) {
	if int64(i) >= c.geo.BlockCount() {
		return nil, fmt.Errorf("block %d out of range (%d blocks)", i, c.geo.BlockCount())
	}
	f, err := c.open(os.O_RDONLY)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, c.geo.BlockSize)
	if _, err := f.ReadAt(buf, c.geo.BlockOffset(i)); err != nil {
		return nil, fmt.Errorf("read block %d: %w", i, err)
	}
	return buf, nil
}

func (c *Container) open(flag int) (fs.File, error) {
	f, err := c.fsys.OpenFile(c.path, flag, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, c.path)
		}
		return nil, err
	}
	return f, nil
}
