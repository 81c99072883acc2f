package lightfs

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/hupe1980/lightfs/allocator"
	"github.com/hupe1980/lightfs/codec"
	"github.com/hupe1980/lightfs/container"
	"github.com/hupe1980/lightfs/internal/fs"
	"github.com/hupe1980/lightfs/layout"
	"github.com/hupe1980/lightfs/metadata"
)

// EntryInfo is one row of a directory listing.
type EntryInfo struct {
	Name     string
	IsFolder bool
}

// StorageStats reports space accounting in mebibytes.
type StorageStats struct {
	UsedMB float64
	FreeMB float64
}

// FS is the storage engine facade over a single container file.
//
// An FS starts uninitialized; Initialize creates a fresh container and
// Load opens an existing one. Every other operation requires one of the
// two to have succeeded. FS is not safe for concurrent use.
type FS struct {
	cont    *container.Container
	codec   codec.Codec
	fsys    fs.FileSystem
	logger  *Logger
	metrics MetricsCollector
	geo     layout.Geometry

	entries map[string]*metadata.Entry
	alloc   *allocator.Allocator
	ready   bool
}

// New creates an engine for the container file at path. The file is not
// touched until Initialize or Load.
func New(path string, optFns ...Option) (*FS, error) {
	opts := options{
		geometry:         layout.Default(),
		codec:            codec.Default,
		fsys:             fs.Default,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cont, err := container.New(opts.fsys, path, opts.geometry)
	if err != nil {
		return nil, err
	}

	return &FS{
		cont:    cont,
		codec:   opts.codec,
		fsys:    opts.fsys,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
		geo:     opts.geometry,
	}, nil
}

// Path returns the container file path.
func (f *FS) Path() string { return f.cont.Path() }

// Geometry returns the container geometry.
func (f *FS) Geometry() layout.Geometry { return f.geo }

// Ready reports whether the engine has a loaded container.
func (f *FS) Ready() bool { return f.ready }

// Initialize creates a zero-filled container and an empty entry map, then
// persists. It fails with ErrAlreadyExists if the container file is
// already present.
func (f *FS) Initialize() error {
	if err := f.cont.Create(); err != nil {
		return translateError(err)
	}
	f.entries = make(map[string]*metadata.Entry)
	f.alloc = allocator.New(f.geo.BlockCount())
	if err := f.persist(); err != nil {
		return err
	}
	f.ready = true
	f.logger.Info("container initialized", "path", f.cont.Path(), "blocks", f.geo.BlockCount())
	return nil
}

// Load reads an existing container's entry map and occupancy into memory.
// It fails with ErrNotFound if the container file is absent and with
// ErrCorruptMetadata if the stored metadata does not decode.
func (f *FS) Load() error {
	if !f.cont.Exists() {
		return fmt.Errorf("%w: %s", ErrNotFound, f.cont.Path())
	}

	header, err := f.cont.ReadMeta(layout.MetaLenSize)
	if err != nil {
		return translateError(err)
	}
	mapLen, ok := declaredMapLen(f.geo, header)
	if !ok {
		return &metadata.CorruptError{Reason: fmt.Sprintf("declared map length %d does not fit the metadata region", mapLen)}
	}

	region, err := f.cont.ReadMeta(layout.MetaLenSize + mapLen + f.geo.BlockCount())
	if err != nil {
		return translateError(err)
	}
	entries, off, err := metadata.Decode(f.codec, region[:layout.MetaLenSize+mapLen])
	if err != nil {
		return err
	}
	for name, e := range entries {
		for _, b := range e.Blocks {
			if int64(b) >= f.geo.BlockCount() {
				return &metadata.CorruptError{Reason: fmt.Sprintf("entry %q references block %d beyond the container's %d blocks", name, b, f.geo.BlockCount())}
			}
		}
	}

	alloc := allocator.New(f.geo.BlockCount())
	if err := alloc.UnmarshalFlags(region[off : off+int(f.geo.BlockCount())]); err != nil {
		return &metadata.CorruptError{Reason: err.Error()}
	}

	f.entries = entries
	f.alloc = alloc
	f.ready = true
	f.logger.Info("container loaded", "path", f.cont.Path(), "entries", len(entries), "used_blocks", alloc.Used())
	return nil
}

// Create inserts a zero-size file entry and persists. It fails with
// ErrAlreadyExists if the name is taken.
func (f *FS) Create(name string) error {
	return f.createEntry(name, false)
}

// CreateFolder inserts a folder-flagged entry and persists. Folders hold
// no content and cannot be nested; the flag exists so listings can tell
// the two kinds apart.
func (f *FS) CreateFolder(name string) error {
	return f.createEntry(name, true)
}

func (f *FS) createEntry(name string, isFolder bool) error {
	start := time.Now()
	err := f.doCreate(name, isFolder)
	f.metrics.RecordMutation("create", time.Since(start), err)
	f.logger.LogOp("create", name, err)
	return err
}

func (f *FS) doCreate(name string, isFolder bool) error {
	if !f.ready {
		return ErrNotLoaded
	}
	if _, ok := f.entries[name]; ok {
		return fmt.Errorf("%w: entry %q", ErrAlreadyExists, name)
	}
	f.entries[name] = metadata.NewEntry(name, isFolder)
	if err := f.persist(); err != nil {
		delete(f.entries, name)
		return err
	}
	return nil
}

// Rename moves an entry to a new name and persists. It fails with
// ErrNotFound if oldName is absent and ErrAlreadyExists if newName is
// taken.
func (f *FS) Rename(oldName, newName string) error {
	start := time.Now()
	err := f.doRename(oldName, newName)
	f.metrics.RecordMutation("rename", time.Since(start), err)
	f.logger.LogOp("rename", oldName+" -> "+newName, err)
	return err
}

func (f *FS) doRename(oldName, newName string) error {
	if !f.ready {
		return ErrNotLoaded
	}
	e, ok := f.entries[oldName]
	if !ok {
		return fmt.Errorf("%w: entry %q", ErrNotFound, oldName)
	}
	if _, ok := f.entries[newName]; ok {
		return fmt.Errorf("%w: entry %q", ErrAlreadyExists, newName)
	}
	delete(f.entries, oldName)
	e.Name = newName
	f.entries[newName] = e
	if err := f.persist(); err != nil {
		delete(f.entries, newName)
		e.Name = oldName
		f.entries[oldName] = e
		return err
	}
	return nil
}

// Delete removes an entry, frees its blocks and persists. It fails with
// ErrNotFound if the name is absent.
func (f *FS) Delete(name string) error {
	start := time.Now()
	err := f.doDelete(name)
	f.metrics.RecordMutation("delete", time.Since(start), err)
	f.logger.LogOp("delete", name, err)
	return err
}

func (f *FS) doDelete(name string) error {
	if !f.ready {
		return ErrNotLoaded
	}
	e, ok := f.entries[name]
	if !ok {
		return fmt.Errorf("%w: entry %q", ErrNotFound, name)
	}
	delete(f.entries, name)
	f.alloc.Free(e.Blocks)
	if err := f.persist(); err != nil {
		f.alloc.Mark(e.Blocks)
		f.entries[name] = e
		return err
	}
	return nil
}

// List returns a snapshot of all entries sorted by name. It has no
// persistence side effect.
func (f *FS) List() ([]EntryInfo, error) {
	if !f.ready {
		return nil, ErrNotLoaded
	}
	infos := make([]EntryInfo, 0, len(f.entries))
	for name, e := range f.entries {
		infos = append(infos, EntryInfo{Name: name, IsFolder: e.IsFolder})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Write replaces an entry's content wholesale. The entry's previous blocks
// are freed before new ones are allocated, so repeated writes never leak
// space. It fails with ErrNotFound if the entry is absent, ErrIsFolder for
// folder entries, and ErrOutOfSpace if the container cannot hold the
// content; on failure the entry, bitmap and free space are unchanged.
func (f *FS) Write(name string, content []byte) error {
	start := time.Now()
	err := f.doWrite(name, content)
	f.metrics.RecordWrite(int64(len(content)), time.Since(start), err)
	f.logger.LogWrite(name, int64(len(content)), int(f.geo.BlocksNeeded(int64(len(content)))), err)
	return err
}

func (f *FS) doWrite(name string, content []byte) error {
	if !f.ready {
		return ErrNotLoaded
	}
	e, ok := f.entries[name]
	if !ok {
		return fmt.Errorf("%w: entry %q", ErrNotFound, name)
	}
	if e.IsFolder {
		return fmt.Errorf("%w: %q", ErrIsFolder, name)
	}

	needed := f.geo.BlocksNeeded(int64(len(content)))
	// Content is replaced wholesale: the entry's current blocks count
	// toward the free pool. Checking up front keeps a failed write from
	// touching any state.
	if f.alloc.FreeCount()+int64(len(e.Blocks)) < needed {
		return fmt.Errorf("%w: need %d blocks, %d free after releasing %d held",
			ErrOutOfSpace, needed, f.alloc.FreeCount(), len(e.Blocks))
	}

	oldBlocks, oldSize := e.Blocks, e.Size
	f.alloc.Free(oldBlocks)
	blocks, err := f.alloc.Allocate(needed)
	if err != nil {
		f.alloc.Mark(oldBlocks)
		return translateError(err)
	}

	e.Blocks = blocks
	e.Size = int64(len(content))
	if err := f.persist(); err != nil {
		f.alloc.Free(blocks)
		f.alloc.Mark(oldBlocks)
		e.Blocks, e.Size = oldBlocks, oldSize
		return err
	}

	for i, b := range blocks {
		lo := int64(i) * f.geo.BlockSize
		hi := lo + f.geo.BlockSize
		if hi > int64(len(content)) {
			hi = int64(len(content))
		}
		if err := f.cont.WriteBlock(b, content[lo:hi]); err != nil {
			return translateError(err)
		}
	}
	return nil
}

// Read returns an entry's exact content. The last block's padding past the
// recorded size is discarded. It fails with ErrNotFound if the entry is
// absent and ErrIsFolder for folder entries.
func (f *FS) Read(name string) ([]byte, error) {
	start := time.Now()
	data, err := f.doRead(name)
	f.metrics.RecordRead(int64(len(data)), time.Since(start), err)
	f.logger.LogRead(name, int64(len(data)), err)
	return data, err
}

func (f *FS) doRead(name string) ([]byte, error) {
	if !f.ready {
		return nil, ErrNotLoaded
	}
	e, ok := f.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: entry %q", ErrNotFound, name)
	}
	if e.IsFolder {
		return nil, fmt.Errorf("%w: %q", ErrIsFolder, name)
	}

	content := make([]byte, 0, e.Size)
	for _, b := range e.Blocks {
		block, err := f.cont.ReadBlock(b)
		if err != nil {
			return nil, translateError(err)
		}
		content = append(content, block...)
	}
	return content[:e.Size], nil
}

// Stats reports used and free space in mebibytes.
func (f *FS) Stats() (StorageStats, error) {
	if !f.ready {
		return StorageStats{}, ErrNotLoaded
	}
	const mib = float64(1 << 20)
	return StorageStats{
		UsedMB: float64(f.alloc.Used()*f.geo.BlockSize) / mib,
		FreeMB: float64(f.alloc.FreeCount()*f.geo.BlockSize) / mib,
	}, nil
}

// Import reads r to the end and stores its content under name, creating
// the entry if it does not exist yet.
func (f *FS) Import(name string, r io.Reader) error {
	if !f.ready {
		return ErrNotLoaded
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read import source: %w", err)
	}
	if _, ok := f.entries[name]; !ok {
		if err := f.Create(name); err != nil {
			return err
		}
	}
	return f.Write(name, content)
}

// Export streams an entry's content to w.
func (f *FS) Export(name string, w io.Writer) error {
	content, err := f.Read(name)
	if err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write export target: %w", err)
	}
	return nil
}

// persist rewrites the metadata region: the length-prefixed encoded entry
// map followed by one occupancy byte per block.
func (f *FS) persist() error {
	encoded, err := metadata.Encode(f.codec, f.entries)
	if err != nil {
		return err
	}
	if int64(len(encoded))+f.geo.BlockCount() > f.geo.MetaSize {
		return fmt.Errorf("%w: entry map needs %d bytes, region holds %d minus %d occupancy bytes",
			ErrMetadataFull, len(encoded), f.geo.MetaSize, f.geo.BlockCount())
	}
	region := append(encoded, f.alloc.MarshalFlags()...)
	if err := f.cont.WriteMeta(region); err != nil {
		return translateError(err)
	}
	return nil
}

// declaredMapLen extracts the declared map length from a metadata header
// and reports whether map plus occupancy bytes fit the region.
func declaredMapLen(geo layout.Geometry, header []byte) (int64, bool) {
	if len(header) < layout.MetaLenSize {
		return 0, false
	}
	mapLen := int64(binary.LittleEndian.Uint32(header))
	if layout.MetaLenSize+mapLen+geo.BlockCount() > geo.MetaSize {
		return mapLen, false
	}
	return mapLen, true
}
