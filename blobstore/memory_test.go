package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("immutable")
	require.NoError(t, store.Put(ctx, "blocks/x", data))
	data[0] = 'X' // caller mutation must not leak into the store

	got, err := ReadAll(ctx, store, "blocks/x")
	require.NoError(t, err)
	assert.Equal(t, "immutable", string(got))

	w, err := store.Create(ctx, "blocks/y")
	require.NoError(t, err)
	_, err = w.Write([]byte("stream"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())
	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	names, err := store.List(ctx, "blocks/")
	require.NoError(t, err)
	assert.Equal(t, []string{"blocks/x", "blocks/y"}, names)
	assert.Equal(t, 2, store.Len())

	blob, err := store.Open(ctx, "blocks/y")
	require.NoError(t, err)
	r, err := blob.ReadRange(ctx, 2, 100)
	require.NoError(t, err)
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "ream", string(rest))
	_, err = blob.ReadRange(ctx, 6, 1)
	assert.ErrorIs(t, err, io.EOF)
	require.NoError(t, blob.Close())

	require.NoError(t, store.Delete(ctx, "blocks/x"))
	_, err = store.Open(ctx, "blocks/x")
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, store.Put(cancelled, "z", nil), context.Canceled)
}
