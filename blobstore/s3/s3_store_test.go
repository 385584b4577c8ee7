package s3

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/bigfield"
	"github.com/hupe1980/bigfield/blobstore"
	"github.com/hupe1980/bigfield/blockstore"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadDefaultConfig(ctx)
	require.NoError(t, err)

	prefix := fmt.Sprintf("test-bigfield-%d/", time.Now().UnixNano())
	store := NewStore(s3.NewFromConfig(cfg), bucket, prefix)
	t.Cleanup(func() {
		names, err := store.List(context.Background(), "")
		if err != nil {
			return
		}
		for _, name := range names {
			_ = store.Delete(context.Background(), name)
		}
	})

	t.Run("BlockBlobs", func(t *testing.T) {
		bs := blockstore.NewBlobBlockstore(store, blockstore.WithCompression(blockstore.CompressionZSTD))

		blocks := make(map[cid.Cid][]byte)
		for i := 0; i < 4; i++ {
			data := make([]byte, 4096<<i)
			_, _ = rand.Read(data)
			c, err := bs.Put(ctx, data)
			require.NoError(t, err)
			blocks[c] = data
		}

		names, err := store.List(ctx, blockstore.BlockPrefix)
		require.NoError(t, err)
		assert.Len(t, names, len(blocks))
		for c := range blocks {
			assert.Contains(t, names, blockstore.BlockPrefix+c.String())
		}

		keys, err := bs.Keys(ctx)
		require.NoError(t, err)
		assert.Len(t, keys, len(blocks))

		for c, want := range blocks {
			got, err := bs.Get(ctx, c)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			ok, err := bs.Has(ctx, c)
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("BlockRangeRead", func(t *testing.T) {
		bs := blockstore.NewBlobBlockstore(store, blockstore.WithCompression(blockstore.CompressionNone))
		data := make([]byte, 1<<20)
		_, _ = rand.Read(data)
		c, err := bs.Put(ctx, data)
		require.NoError(t, err)

		// The raw blob is a frame around the block, so it is never shorter.
		r, err := store.Open(ctx, blockstore.BlockPrefix+c.String())
		require.NoError(t, err)
		defer r.Close()
		assert.GreaterOrEqual(t, r.Size(), int64(len(data)))

		buf := make([]byte, 100)
		n, err := r.ReadAt(ctx, buf, r.Size()-100)
		require.NoError(t, err)
		assert.Equal(t, 100, n)
	})

	t.Run("MissingBlock", func(t *testing.T) {
		bs := blockstore.NewBlobBlockstore(store)
		c, err := blockstore.Sum([]byte("never stored"))
		require.NoError(t, err)

		_, err = bs.Get(ctx, c)
		assert.True(t, errors.Is(err, blockstore.ErrNotFound), "got %v", err)

		_, err = store.Open(ctx, blockstore.BlockPrefix+c.String())
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("CommitAndOpen", func(t *testing.T) {
		bs := blockstore.NewBlobBlockstore(store)
		heads := bigfield.NewHeadStore(store)

		f, err := bigfield.New(bs)
		require.NoError(t, err)
		positions := []uint64{1, 3, 5, 7, 9, 1 << 40, 1 << 62}
		for _, pos := range positions {
			require.NoError(t, f.Set(ctx, pos))
		}
		root, err := f.CommitAndPublish(ctx, heads)
		require.NoError(t, err)

		head, err := heads.ResolveHead(ctx)
		require.NoError(t, err)
		assert.Equal(t, root, head)

		reopened, err := bigfield.Open(ctx, heads, blockstore.NewBlobBlockstore(store), bigfield.WithVerifyOnLoad(true))
		require.NoError(t, err)
		assert.Equal(t, f.Meta(), reopened.Meta())
		for _, pos := range positions {
			ok, err := reopened.Get(ctx, pos)
			require.NoError(t, err)
			assert.True(t, ok, "position %d", pos)
		}
	})
}
