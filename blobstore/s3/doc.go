// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("bitfields/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	blocks := blockstore.NewBlobBlockstore(store)
//	bf, err := bigfield.New(blocks)
//
// For several writers sharing one prefix, wrap the store in a
// DDBCommitStore; publishing CURRENT then fails with
// ErrConcurrentModification instead of silently losing a commit.
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart streaming uploads with CRC32C checksums
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
