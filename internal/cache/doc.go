// Package cache provides LRU caching for immutable blocks.
//
// # Block Cache (RAM)
//
// LRUBlockCache is a single-mutex, byte-budgeted LRU. ShardedLRUBlockCache
// spreads keys over 64 of them for concurrent readers.
//
// Both integrate with resource.Controller: an insert that would exceed the
// global memory budget is dropped rather than blocking the caller.
//
// # Disk Cache (L2)
//
// For remote blob stores, DiskBlockCache keeps blocks on the local
// filesystem:
//   - Async writes to avoid blocking the read path
//   - LRU eviction with configurable size limits
//   - Rebuilds index from disk on startup
package cache
