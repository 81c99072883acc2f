package lightfs

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/lightfs/blobstore"
	"github.com/hupe1980/lightfs/internal/fs"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the backup compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the container verbatim.
	CompressionNone Compression = 0
	// CompressionLZ4 is fast with a moderate ratio.
	CompressionLZ4 Compression = 1
	// CompressionZstd trades speed for a better ratio.
	CompressionZstd Compression = 2
)

const (
	// backupMagic identifies lightfs backup blobs (ASCII "LFSB").
	backupMagic = 0x4C465342
	// backupVersion is the current backup format version.
	backupVersion = 1
	// backupHeaderSize is the fixed header length:
	// magic uint32, version uint8, compression uint8, 2 reserved bytes.
	backupHeaderSize = 8
)

var (
	// ErrInvalidBackup is returned when a blob is not a lightfs backup or
	// uses an unsupported version or compression.
	ErrInvalidBackup = errors.New("invalid backup")
)

// Backup streams the entire container into the blob store under key.
// The blob is self-describing: an 8-byte header records the format version
// and compression so Restore needs no out-of-band information.
//
// The engine must be ready; every completed operation has already been
// persisted, so the container file is a consistent snapshot.
func (f *FS) Backup(ctx context.Context, store blobstore.Store, key string, compression Compression) error {
	err := f.doBackup(ctx, store, key, compression)
	f.logger.LogBackup("backup", key, f.geo.TotalSize, err)
	return err
}

func (f *FS) doBackup(ctx context.Context, store blobstore.Store, key string, compression Compression) error {
	if !f.ready {
		return ErrNotLoaded
	}

	src, err := f.fsys.OpenFile(f.cont.Path(), os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("open container: %w", err)
	}
	defer src.Close()

	w, err := store.Create(ctx, key)
	if err != nil {
		return fmt.Errorf("create backup blob: %w", err)
	}

	if err := writeBackup(w, src, compression); err != nil {
		w.Close()
		return err
	}
	if err := w.Sync(); err != nil {
		w.Close()
		return fmt.Errorf("sync backup blob: %w", err)
	}
	return w.Close()
}

func writeBackup(w io.Writer, src io.Reader, compression Compression) error {
	var header [backupHeaderSize]byte
	binary.LittleEndian.PutUint32(header[:4], backupMagic)
	header[4] = backupVersion
	header[5] = byte(compression)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("write backup header: %w", err)
	}

	switch compression {
	case CompressionNone:
		if _, err := io.Copy(w, src); err != nil {
			return fmt.Errorf("copy container: %w", err)
		}
		return nil
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		if _, err := io.Copy(zw, src); err != nil {
			return fmt.Errorf("compress container: %w", err)
		}
		return zw.Close()
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if _, err := io.Copy(zw, src); err != nil {
			zw.Close()
			return fmt.Errorf("compress container: %w", err)
		}
		return zw.Close()
	default:
		return fmt.Errorf("%w: unknown compression %d", ErrInvalidBackup, compression)
	}
}

// Restore materializes a container file at path from a backup blob so it
// can be loaded with FS.Load. It fails with ErrAlreadyExists if a file is
// already present at path; a half-restored file is never visible because
// the content lands in a temp file that is renamed into place.
func Restore(ctx context.Context, store blobstore.Store, key, path string, optFns ...Option) error {
	opts := options{fsys: fs.Default}
	for _, fn := range optFns {
		fn(&opts)
	}
	fsys := opts.fsys

	if _, err := fsys.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}

	blob, err := store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return fmt.Errorf("%w: backup %q", ErrNotFound, key)
		}
		return err
	}
	defer blob.Close()

	r, err := blob.Reader(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	src, err := backupReader(r)
	if err != nil {
		return err
	}

	tmp := path + ".restore"
	dst, err := fsys.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create restore target: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		fsys.Remove(tmp)
		return fmt.Errorf("restore container: %w", err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		fsys.Remove(tmp)
		return fmt.Errorf("sync restore target: %w", err)
	}
	if err := dst.Close(); err != nil {
		fsys.Remove(tmp)
		return err
	}
	if err := fsys.Rename(tmp, path); err != nil {
		fsys.Remove(tmp)
		return err
	}
	return nil
}

// backupReader validates the backup header and returns a reader over the
// decompressed container bytes.
func backupReader(r io.Reader) (io.Reader, error) {
	var header [backupHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: short header: %w", ErrInvalidBackup, err)
	}
	if binary.LittleEndian.Uint32(header[:4]) != backupMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidBackup)
	}
	if header[4] != backupVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidBackup, header[4])
	}

	switch Compression(header[5]) {
	case CompressionNone:
		return r, nil
	case CompressionLZ4:
		return lz4.NewReader(r), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidBackup, header[5])
	}
}
