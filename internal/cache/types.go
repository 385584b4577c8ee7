package cache

import "context"

// CacheKind separates key spaces that share one cache.
type CacheKind uint8

const (
	CacheKindUnknown CacheKind = iota
	CacheKindBlock             // content-addressed blocks, keyed by CID
	CacheKindBlob              // byte ranges of named blobs
)

func (k CacheKind) String() string {
	switch k {
	case CacheKindBlock:
		return "block"
	case CacheKindBlob:
		return "blob"
	default:
		return "unknown"
	}
}

// CacheKey identifies a cached block.
//
// For CacheKindBlock, Path is the CID string and Offset is zero. For
// CacheKindBlob, Path is the blob name and Offset the block index inside it.
type CacheKey struct {
	Kind   CacheKind
	Path   string
	Offset uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. Implementations may copy or retain; caller must treat b as immutable.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Close releases any resources (e.g. background workers).
	Close() error
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}
