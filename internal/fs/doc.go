// Package fs provides filesystem abstractions for testability and fault injection.
//
//   - [LocalFS]: Production implementation using the os package
//   - [FaultyFS]: Test wrapper that fails opens, reads, writes, syncs, closes, or renames
//
// Production code uses fs.Default. Tests inject [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("blocks/", fs.Fault{FailOnRead: true, FailAfterBytes: -1})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
//
// Operations take no context.Context; local syscalls cannot be interrupted.
package fs
