package blockstore

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/bigfield/blobstore"
	"github.com/hupe1980/bigfield/internal/compress"
	"github.com/hupe1980/bigfield/internal/resource"
	"github.com/ipfs/go-cid"
)

// BlockPrefix is the blob name prefix under which blocks are stored.
const BlockPrefix = "blocks/"

// Compression selects the frame compression of a BlobBlockstore.
type Compression = compress.Type

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

// BlobBlockstore stores each block as one blob named blocks/<cid>. Blobs
// hold a compress frame, so a torn or bit-flipped blob fails its checksum
// before the content hash is even computed.
type BlobBlockstore struct {
	store       blobstore.BlobStore
	compression Compression
	rc          *resource.Controller
	checkExists bool
}

// BlobOption configures a BlobBlockstore.
type BlobOption func(*BlobBlockstore)

// WithCompression sets the frame compression. Default: CompressionLZ4.
func WithCompression(t Compression) BlobOption {
	return func(b *BlobBlockstore) {
		b.compression = t
	}
}

// WithResourceController throttles block writes through rc's IO limiter.
func WithResourceController(rc *resource.Controller) BlobOption {
	return func(b *BlobBlockstore) {
		b.rc = rc
	}
}

// WithWriteRateLimit caps block writes at bytesPerSec. Zero means unlimited.
func WithWriteRateLimit(bytesPerSec int64) BlobOption {
	return func(b *BlobBlockstore) {
		b.rc = resource.NewController(resource.Config{IOLimitBytesPerSec: bytesPerSec})
	}
}

// WithSkipExisting makes Put probe for the block before writing it. This
// saves uploads on remote stores where a HEAD is cheaper than a PUT.
func WithSkipExisting(enabled bool) BlobOption {
	return func(b *BlobBlockstore) {
		b.checkExists = enabled
	}
}

// NewBlobBlockstore returns a Blockstore persisting into store.
func NewBlobBlockstore(store blobstore.BlobStore, opts ...BlobOption) *BlobBlockstore {
	b := &BlobBlockstore{
		store:       store,
		compression: CompressionLZ4,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func blobName(c cid.Cid) string {
	return BlockPrefix + c.String()
}

func (b *BlobBlockstore) Get(ctx context.Context, c cid.Cid) ([]byte, error) {
	frame, err := blobstore.ReadAll(ctx, b.store, blobName(c))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "%s", c)
		}
		return nil, errors.Wrapf(err, "blockstore: read %s", c)
	}

	data, err := compress.Decode(frame)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "block %s: %v", c, err)
	}
	if err := Verify(c, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (b *BlobBlockstore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	c, err := Sum(data)
	if err != nil {
		return cid.Undef, err
	}
	if b.checkExists {
		ok, err := b.Has(ctx, c)
		if err != nil {
			return cid.Undef, err
		}
		if ok {
			return c, nil
		}
	}

	frame, err := compress.Encode(data, b.compression)
	if err != nil {
		return cid.Undef, errors.Wrapf(err, "blockstore: encode %s", c)
	}
	if err := b.rc.AcquireIO(ctx, len(frame)); err != nil {
		return cid.Undef, err
	}
	if err := b.store.Put(ctx, blobName(c), frame); err != nil {
		return cid.Undef, errors.Wrapf(err, "blockstore: write %s", c)
	}
	return c, nil
}

func (b *BlobBlockstore) Has(ctx context.Context, c cid.Cid) (bool, error) {
	blob, err := b.store.Open(ctx, blobName(c))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrapf(err, "blockstore: stat %s", c)
	}
	_ = blob.Close()
	return true, nil
}

// Keys returns the CIDs of all stored blocks. Blob names that do not parse
// as CIDs are skipped.
func (b *BlobBlockstore) Keys(ctx context.Context) ([]cid.Cid, error) {
	names, err := b.store.List(ctx, BlockPrefix)
	if err != nil {
		return nil, errors.Wrap(err, "blockstore: list blocks")
	}
	keys := make([]cid.Cid, 0, len(names))
	for _, name := range names {
		rest, ok := strings.CutPrefix(name, BlockPrefix)
		if !ok {
			continue
		}
		c, err := cid.Decode(rest)
		if err != nil {
			continue
		}
		keys = append(keys, c)
	}
	return keys, nil
}

var _ Blockstore = (*BlobBlockstore)(nil)
