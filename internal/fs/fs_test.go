package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFSBasics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.bin")

	f, err := LocalFS{}.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("hello"), 2)
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	info, err := LocalFS{}.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 7, info.Size())

	require.NoError(t, LocalFS{}.Truncate(path, 3))
	info, err = LocalFS{}.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 3, info.Size())

	moved := filepath.Join(dir, "b.bin")
	require.NoError(t, LocalFS{}.Rename(path, moved))
	require.NoError(t, LocalFS{}.Remove(moved))
	_, err = LocalFS{}.Stat(moved)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFSWriteBudget(t *testing.T) {
	faulty := NewFaultyFS(nil)
	boom := errors.New("boom")
	faulty.AddRule("target", Fault{FailAfterBytes: 4, Err: boom})

	path := filepath.Join(t.TempDir(), "target.bin")
	f, err := faulty.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	require.NoError(t, err)
	defer f.Close()

	// Within budget.
	n, err := f.Write([]byte("abcd"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// One more byte crosses the limit.
	_, err = f.Write([]byte("e"))
	require.ErrorIs(t, err, boom)

	_, err = f.WriteAt([]byte("e"), 0)
	require.ErrorIs(t, err, boom)
}

func TestFaultyFSSyncAndClose(t *testing.T) {
	faulty := NewFaultyFS(nil)
	faulty.AddRule("flaky", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnClose: true})

	path := filepath.Join(t.TempDir(), "flaky.bin")
	f, err := faulty.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("ok"))
	require.NoError(t, err)
	assert.Error(t, f.Sync())
	assert.Error(t, f.Close())
}

func TestFaultyFSLeavesOtherFilesAlone(t *testing.T) {
	faulty := NewFaultyFS(nil)
	faulty.AddRule("target", Fault{FailAfterBytes: 0})

	path := filepath.Join(t.TempDir(), "other.bin")
	f, err := faulty.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write([]byte("unaffected"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
}
