package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	assert.NoError(t, lfs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.NoError(t, f.Sync())

	info, err := f.Stat()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	buf := make([]byte, 3)
	_, err = f.ReadAt(buf, 2)
	assert.NoError(t, err)
	assert.Equal(t, "llo", string(buf))
	assert.NoError(t, f.Close())

	entries, err := lfs.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	newPath := filepath.Join(dir, "renamed.txt")
	assert.NoError(t, lfs.Rename(fpath, newPath))

	assert.NoError(t, lfs.Remove(newPath))
	_, err = lfs.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_WriteLimit(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("faulty.txt", Fault{FailAfterBytes: 5})

	f, err := ffs.OpenFile(filepath.Join(tmp, "faulty.txt"), os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	n, err := f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(5), ffs.Written())
	assert.NoError(t, f.Close())

	// Other files are unaffected.
	g, err := ffs.OpenFile(filepath.Join(tmp, "other.txt"), os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	_, err = g.Write([]byte("plenty of bytes"))
	assert.NoError(t, err)
	assert.NoError(t, g.Close())
}

func TestFaultyFS_ReadAndOpen(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "blocks", "a")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	boom := errors.New("disk on fire")
	ffs := NewFaultyFS(nil)
	ffs.AddRule("blocks", Fault{FailOnRead: true, FailAfterBytes: -1, Err: boom})

	f, err := ffs.OpenFile(path, os.O_RDONLY, 0)
	require.NoError(t, err)
	_, err = io.ReadAll(f)
	assert.ErrorIs(t, err, boom)
	_, err = f.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, boom)
	require.NoError(t, f.Close())

	// The latest matching rule wins.
	ffs.AddRule("blocks", Fault{FailOnOpen: true, FailAfterBytes: -1})
	_, err = ffs.OpenFile(path, os.O_RDONLY, 0)
	assert.ErrorIs(t, err, ErrInjected)

	ffs.Reset()
	f, err = ffs.OpenFile(path, os.O_RDONLY, 0)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
	require.NoError(t, f.Close())
}

func TestFaultyFS_SyncCloseRename(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("bad", Fault{FailOnSync: true, FailOnClose: true, FailOnRename: true, FailAfterBytes: -1})

	f, err := ffs.OpenFile(filepath.Join(tmp, "bad.tmp"), os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), ErrInjected)
	assert.ErrorIs(t, f.Close(), ErrInjected)

	assert.ErrorIs(t, ffs.Rename(filepath.Join(tmp, "bad.tmp"), filepath.Join(tmp, "bad")), ErrInjected)
	assert.NoError(t, ffs.Rename(filepath.Join(tmp, "bad.tmp"), filepath.Join(tmp, "good")))

	assert.NoError(t, ffs.MkdirAll(filepath.Join(tmp, "d"), 0755))
	_, err = ffs.ReadDir(tmp)
	assert.NoError(t, err)
	_, err = ffs.Stat(filepath.Join(tmp, "good"))
	assert.NoError(t, err)
	assert.NoError(t, ffs.Remove(filepath.Join(tmp, "good")))
}
