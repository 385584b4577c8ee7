// Package blockstore stores immutable, content-addressed blocks.
//
// Every block is addressed by a CIDv1 (DAG-CBOR codec, SHA2-256 multihash)
// computed from its bytes. The package provides:
//
//   - MemoryBlockstore: a map, for tests and short-lived bitfields.
//   - BlobBlockstore: one blob per block on any blobstore.BlobStore, with
//     compression, checksums and hash verification on read.
//   - TrackingBlockstore: operation counters around another Blockstore.
//   - CachedBlockstore: an LRU or disk cache in front of another Blockstore.
//
// A typical remote stack:
//
//	store, _ := s3.New(ctx, "bucket", s3.WithPrefix("bitfields/"))
//	blocks := blockstore.NewLRUCachedBlockstore(
//	    blockstore.NewBlobBlockstore(store, blockstore.WithCompression(blockstore.CompressionZSTD)),
//	    64<<20)
package blockstore
