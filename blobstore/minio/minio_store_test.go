package minio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/hupe1980/bigfield/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativeName(t *testing.T) {
	assert.Equal(t, "blocks/a", relativeName("root/blocks/a", "root"))
	assert.Equal(t, "blocks/a", relativeName("root/blocks/a", "root/"))
	assert.Equal(t, "CURRENT", relativeName("CURRENT", ""))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
}

func TestStore_OpenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	store, err := New(Config{
		Endpoint:  u.Host,
		AccessKey: "key",
		SecretKey: "secret",
		Region:    "us-east-1",
		Bucket:    "test-bucket",
		Prefix:    "root",
	})
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "missing")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestBlob_ReadAtBounds(t *testing.T) {
	b := &minioBlob{size: 4}
	n, err := b.ReadAt(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = b.ReadAt(context.Background(), make([]byte, 1), 4)
	assert.ErrorIs(t, err, io.EOF)

	_, err = b.ReadRange(context.Background(), -1, 1)
	assert.ErrorIs(t, err, io.EOF)
}

// TestMinioStore_Integration requires a running MinIO instance at
// MINIO_ENDPOINT.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping MinIO integration test: MINIO_ENDPOINT not set")
	}
	bucket := "test-bigfield"

	store, err := New(Config{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Bucket:    bucket,
		Prefix:    "test-prefix/",
	})
	require.NoError(t, err)

	ctx := context.Background()

	exists, err := store.client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	got, err := blobstore.ReadAll(ctx, store, "test.txt")
	require.NoError(t, err)
	require.Equal(t, data, got)

	blob, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)
	rc, err := blob.ReadRange(ctx, 6, 5)
	require.NoError(t, err)
	partBuf := make([]byte, 5)
	_, err = rc.Read(partBuf)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(partBuf))
	require.NoError(t, rc.Close())
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.txt")

	require.NoError(t, store.Delete(ctx, "test.txt"))
	_, err = store.Open(ctx, "test.txt")
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	wb, err := store.Create(ctx, "stream.txt")
	require.NoError(t, err)
	_, err = wb.Write([]byte("streamed data"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	blob3, err := store.Open(ctx, "stream.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(13), blob3.Size())
	require.NoError(t, blob3.Close())

	_ = store.Delete(ctx, "stream.txt")
}
