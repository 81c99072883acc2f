package lightfs

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/hupe1980/lightfs/blobstore"
	"github.com/hupe1980/lightfs/layout"
	"github.com/stretchr/testify/require"
)

func TestBackupRestoreRoundTrip(t *testing.T) {
	compressions := map[string]Compression{
		"none": CompressionNone,
		"lz4":  CompressionLZ4,
		"zstd": CompressionZstd,
	}

	for name, compression := range compressions {
		t.Run(name, func(t *testing.T) {
			f := newTestFS(t)
			content := bytes.Repeat([]byte("precious data "), 100)
			require.NoError(t, f.Create("a"))
			require.NoError(t, f.Write("a", content))
			require.NoError(t, f.CreateFolder("docs"))

			store := blobstore.NewMemoryStore()
			ctx := context.Background()
			require.NoError(t, f.Backup(ctx, store, "snap-1", compression))

			// Restore into a fresh location and load it.
			restored := filepath.Join(t.TempDir(), "restored.fs")
			require.NoError(t, Restore(ctx, store, "snap-1", restored))

			g, err := New(restored, WithGeometry(testGeometry()))
			require.NoError(t, err)
			require.NoError(t, g.Load())

			got, err := g.Read("a")
			require.NoError(t, err)
			require.Equal(t, content, got)

			infos, err := g.List()
			require.NoError(t, err)
			require.Len(t, infos, 2)
		})
	}
}

func TestBackupRequiresReady(t *testing.T) {
	f, err := New(filepath.Join(t.TempDir(), layout.DefaultFileName), WithGeometry(testGeometry()))
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	require.ErrorIs(t, f.Backup(context.Background(), store, "snap", CompressionNone), ErrNotLoaded)
}

func TestRestoreRefusesToOverwrite(t *testing.T) {
	f := newTestFS(t)
	store := blobstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, f.Backup(ctx, store, "snap", CompressionNone))

	// The original container file is already present.
	require.ErrorIs(t, Restore(ctx, store, "snap", f.Path()), ErrAlreadyExists)
}

func TestRestoreMissingBackup(t *testing.T) {
	store := blobstore.NewMemoryStore()
	err := Restore(context.Background(), store, "absent", filepath.Join(t.TempDir(), "out.fs"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreRejectsForeignBlob(t *testing.T) {
	store := blobstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "junk", []byte("not a lightfs backup blob")))

	err := Restore(ctx, store, "junk", filepath.Join(t.TempDir(), "out.fs"))
	require.ErrorIs(t, err, ErrInvalidBackup)
}

func TestBackupToReplicatedStore(t *testing.T) {
	f := newTestFS(t)
	require.NoError(t, f.Create("a"))
	require.NoError(t, f.Write("a", []byte("replicate me")))

	primary, secondary := blobstore.NewMemoryStore(), blobstore.NewMemoryStore()
	replicated, err := blobstore.NewReplicatedStore(primary, secondary)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, f.Backup(ctx, replicated, "snap", CompressionLZ4))

	// Both destinations hold the backup; either one restores.
	for _, store := range []blobstore.Store{primary, secondary} {
		restored := filepath.Join(t.TempDir(), "restored.fs")
		require.NoError(t, Restore(ctx, store, "snap", restored))

		g, err := New(restored, WithGeometry(testGeometry()))
		require.NoError(t, err)
		require.NoError(t, g.Load())

		got, err := g.Read("a")
		require.NoError(t, err)
		require.Equal(t, []byte("replicate me"), got)
	}
}
