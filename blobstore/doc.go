// Package blobstore provides named-blob persistence for content-addressed
// blocks and the CURRENT root pointer.
//
// BlobStore is the interface for reading and writing write-once blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests
//   - LocalStore: local filesystem with atomic rename on write and mmap reads
//   - CachingStore: block-level read cache in front of any BlobStore
//   - s3.Store / s3.DDBCommitStore: Amazon S3, optionally with DynamoDB commits
//   - minio.Store: MinIO and other S3-compatible services
//
// # Interface
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Missing blobs satisfy errors.Is(err, ErrNotFound).
package blobstore
