// Package bigfield provides a sparse bitfield over the uint64 domain that
// persists to a content-addressed block store.
//
// Positions are grouped into leaves. Each leaf is an RLE+ bitfield covering
// one interval of a range index, and the leaves are stored in an AMT
// (array mapped trie) keyed by the first position of their interval. When
// a leaf collects enough runs it is split in two at a run boundary, so a
// write touches one small leaf and a path of trie nodes regardless of how
// many positions are set.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blockstore.NewMemoryBlockstore()
//
//	bf, _ := bigfield.New(store)
//	_ = bf.Set(ctx, 42)
//	ok, _ := bf.Get(ctx, 42) // true
//
//	root, _ := bf.Commit(ctx)
//	again, _ := bigfield.Load(ctx, store, root)
//
// # Storage
//
// Any blockstore.Blockstore works. blockstore.NewBlobBlockstore keeps
// compressed blocks in a blobstore.BlobStore (local disk, S3, MinIO) and
// blockstore.NewCachedBlockstore puts a memory or disk cache in front of
// it. HeadStore records the latest root so a process can Open where the
// previous one left off.
//
// # Domain
//
// The domain is the half-open interval [0, math.MaxUint64). Set and Get
// return ErrOutOfRange for math.MaxUint64.
//
// # Errors
//
// Failures of the underlying store are reported as *StoreError and match
// ErrStoreFault. A Set that fails leaves the BigField as it was.
package bigfield
