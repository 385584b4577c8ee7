package bigfield

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/hupe1980/bigfield/amt"
	"github.com/hupe1980/bigfield/blobstore"
	"github.com/hupe1980/bigfield/blockstore"
	"github.com/hupe1980/bigfield/rle"
	"github.com/ipfs/go-cid"
)

const rootVersion = 1

// rootRecord is the committed form of a BigField.
type rootRecord struct {
	_           struct{} `cbor:",toarray"`
	Version     uint64
	SplitFactor uint64
	BitWidth    uint64
	Meta        [][3]uint64
	Leaves      []byte
}

var (
	rootEncMode cbor.EncMode
	rootDecMode cbor.DecMode
)

func init() {
	var err error
	if rootEncMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if rootDecMode, err = (cbor.DecOptions{
		IndefLength:      cbor.IndefLengthForbidden,
		MaxArrayElements: 1 << 24,
	}).DecMode(); err != nil {
		panic(err)
	}
}

// Commit writes every changed leaf and a root record, and returns the CID
// of the root. Load with that CID reproduces f.
func (f *BigField) Commit(ctx context.Context) (root cid.Cid, err error) {
	start := time.Now()
	defer func() {
		f.opts.metricsObserver.OnCommit(time.Since(start), err)
		f.opts.logger.LogCommit(ctx, root, len(f.meta), err)
	}()

	leaves, err := f.leaves.arr.Flush(ctx)
	if err != nil {
		return cid.Undef, storeFault("commit", 0, err)
	}
	data, err := rootEncMode.Marshal(rootRecord{
		Version:     rootVersion,
		SplitFactor: uint64(f.opts.splitFactor),
		BitWidth:    uint64(f.leaves.arr.BitWidth()),
		Meta:        f.meta.encode(),
		Leaves:      leaves.Bytes(),
	})
	if err != nil {
		return cid.Undef, errors.Wrap(err, "bigfield: encode root")
	}
	root, err = f.store.Put(ctx, data)
	if err != nil {
		return cid.Undef, storeFault("commit", 0, err)
	}
	return root, nil
}

// Load opens the BigField committed under root.
func Load(ctx context.Context, store blockstore.Blockstore, root cid.Cid, opts ...Option) (f *BigField, err error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	defer func() {
		leaves := 0
		if f != nil {
			leaves = len(f.meta)
		}
		o.logger.LogLoad(ctx, root, leaves, err)
	}()

	data, err := store.Get(ctx, root)
	if err != nil {
		return nil, storeFault("load", 0, err)
	}

	var rec rootRecord
	if err := rootDecMode.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "root %s: %v", root, err)
	}
	if rec.Version != rootVersion {
		return nil, errors.Wrapf(ErrCorrupt, "root %s has version %d", root, rec.Version)
	}
	if rec.SplitFactor < MinSplitFactor || rec.SplitFactor > MaxSplitFactor {
		return nil, errors.Wrapf(ErrCorrupt, "root %s has split factor %d", root, rec.SplitFactor)
	}
	meta, err := decodeMetaIndex(rec.Meta)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "root %s: %v", root, err)
	}
	leavesCID, err := cid.Cast(rec.Leaves)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "root %s: leaves: %v", root, err)
	}

	arr, err := amt.Load(ctx, store, leavesCID)
	if err != nil {
		if errors.Is(err, amt.ErrMalformedNode) || errors.Is(err, amt.ErrInvalidBitWidth) {
			return nil, errors.Wrapf(ErrCorrupt, "root %s: %v", root, err)
		}
		return nil, storeFault("load", 0, err)
	}
	if uint64(arr.BitWidth()) != rec.BitWidth {
		return nil, errors.Wrapf(ErrCorrupt, "root %s records bit width %d, array has %d", root, rec.BitWidth, arr.BitWidth())
	}
	if arr.Len() > uint64(len(meta)) {
		return nil, errors.Wrapf(ErrCorrupt, "root %s has %d leaves for %d descriptors", root, arr.Len(), len(meta))
	}

	o.splitFactor = int(rec.SplitFactor)
	o.bitWidth = arr.BitWidth()
	bf := &BigField{
		store:  store,
		leaves: leafStore{arr: arr},
		meta:   meta,
		opts:   o,
	}
	if o.verifyOnLoad {
		if err := bf.verifyLeaves(ctx); err != nil {
			return nil, err
		}
	}
	return bf, nil
}

// verifyLeaves checks that every stored leaf sits at a descriptor key,
// fits its interval and matches the cached run count.
func (f *BigField) verifyLeaves(ctx context.Context) error {
	i := 0
	err := f.leaves.arr.ForEach(ctx, func(key uint64, value []byte) error {
		for i < len(f.meta) && f.meta[i].FirstValue < key {
			if f.meta[i].RunCount != 0 {
				return errors.Wrapf(ErrCorrupt, "descriptor %s has no leaf", f.meta[i])
			}
			i++
		}
		if i == len(f.meta) || f.meta[i].FirstValue != key {
			return errors.Wrapf(ErrCorrupt, "leaf %d has no descriptor", key)
		}
		leaf, err := rle.Unmarshal(value)
		if err != nil {
			return errors.Wrapf(ErrCorrupt, "leaf %d: %v", key, err)
		}
		m := f.meta[i]
		if last, ok := leaf.Last(); ok && last >= m.LastValue-m.FirstValue {
			return errors.Wrapf(ErrCorrupt, "leaf %d extends past %s", key, m)
		}
		if leaf.RunCount() != m.RunCount {
			return errors.Wrapf(ErrCorrupt, "leaf %d has %d runs, descriptor says %d", key, leaf.RunCount(), m.RunCount)
		}
		i++
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return err
		}
		if errors.Is(err, amt.ErrMalformedNode) {
			return errors.Wrapf(ErrCorrupt, "%v", err)
		}
		return storeFault("load", 0, err)
	}
	for ; i < len(f.meta); i++ {
		if f.meta[i].RunCount != 0 {
			return errors.Wrapf(ErrCorrupt, "descriptor %s has no leaf", f.meta[i])
		}
	}
	return nil
}

// HeadName is the blob under which HeadStore keeps the latest root.
const HeadName = "CURRENT"

// HeadStore records the latest committed root CID in a blob store.
//
// Backed by the S3 + DynamoDB store, every publish is a conditional write
// and a publish that lost a race fails instead of overwriting.
type HeadStore struct {
	store blobstore.BlobStore
}

// NewHeadStore returns a HeadStore over store.
func NewHeadStore(store blobstore.BlobStore) *HeadStore {
	return &HeadStore{store: store}
}

// PublishHead makes root the latest head.
func (h *HeadStore) PublishHead(ctx context.Context, root cid.Cid) error {
	if !root.Defined() {
		return errors.New("bigfield: publish undefined root")
	}
	return h.store.Put(ctx, HeadName, []byte(root.String()))
}

// ResolveHead returns the latest head, or ErrNoHead.
func (h *HeadStore) ResolveHead(ctx context.Context) (cid.Cid, error) {
	data, err := blobstore.ReadAll(ctx, h.store, HeadName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return cid.Undef, ErrNoHead
		}
		return cid.Undef, errors.Wrap(err, "bigfield: read head")
	}
	c, err := cid.Decode(strings.TrimSpace(string(data)))
	if err != nil {
		return cid.Undef, errors.Wrapf(ErrCorrupt, "head: %v", err)
	}
	return c, nil
}

// Open loads the BigField at the latest head, or returns an empty one if
// nothing was published yet.
func Open(ctx context.Context, heads *HeadStore, store blockstore.Blockstore, opts ...Option) (*BigField, error) {
	root, err := heads.ResolveHead(ctx)
	if errors.Is(err, ErrNoHead) {
		return New(store, opts...)
	}
	if err != nil {
		return nil, err
	}
	return Load(ctx, store, root, opts...)
}

// CommitAndPublish commits f and publishes the new root as head.
func (f *BigField) CommitAndPublish(ctx context.Context, heads *HeadStore) (cid.Cid, error) {
	root, err := f.Commit(ctx)
	if err != nil {
		return cid.Undef, err
	}
	if err := heads.PublishHead(ctx, root); err != nil {
		return cid.Undef, err
	}
	return root, nil
}
