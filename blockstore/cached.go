package blockstore

import (
	"context"
	"slices"

	"github.com/hupe1980/bigfield/internal/cache"
	"github.com/hupe1980/bigfield/internal/resource"
	"github.com/ipfs/go-cid"
)

// CachedBlockstore serves repeated reads from a BlockCache. Blocks are
// immutable, so entries are never invalidated.
type CachedBlockstore struct {
	inner Blockstore
	cache cache.BlockCache
}

// NewCachedBlockstore wraps inner with c.
func NewCachedBlockstore(inner Blockstore, c cache.BlockCache) *CachedBlockstore {
	return &CachedBlockstore{inner: inner, cache: c}
}

// NewLRUCachedBlockstore wraps inner with a sharded in-memory LRU of
// capacity bytes.
func NewLRUCachedBlockstore(inner Blockstore, capacity int64) *CachedBlockstore {
	return NewCachedBlockstore(inner, cache.NewShardedLRUBlockCache(capacity, nil))
}

// NewBudgetedLRUCachedBlockstore is NewLRUCachedBlockstore with the cache
// reserving its memory from rc.
func NewBudgetedLRUCachedBlockstore(inner Blockstore, capacity int64, rc *resource.Controller) *CachedBlockstore {
	return NewCachedBlockstore(inner, cache.NewShardedLRUBlockCache(capacity, rc))
}

// NewDiskCachedBlockstore wraps inner with a disk cache under dir holding
// at most maxBytes.
func NewDiskCachedBlockstore(inner Blockstore, dir string, maxBytes int64) (*CachedBlockstore, error) {
	c, err := cache.NewDiskBlockCache(cache.DiskCacheConfig{
		RootDir:      dir,
		MaxSizeBytes: maxBytes,
	})
	if err != nil {
		return nil, err
	}
	return NewCachedBlockstore(inner, c), nil
}

func cacheKey(c cid.Cid) cache.CacheKey {
	return cache.CacheKey{Kind: cache.CacheKindBlock, Path: c.String()}
}

func (s *CachedBlockstore) Get(ctx context.Context, c cid.Cid) ([]byte, error) {
	key := cacheKey(c)
	if data, ok := s.cache.Get(ctx, key); ok {
		return slices.Clone(data), nil
	}

	data, err := s.inner.Get(ctx, c)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, slices.Clone(data))
	return data, nil
}

func (s *CachedBlockstore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	c, err := s.inner.Put(ctx, data)
	if err != nil {
		return cid.Undef, err
	}
	s.cache.Set(ctx, cacheKey(c), slices.Clone(data))
	return c, nil
}

func (s *CachedBlockstore) Has(ctx context.Context, c cid.Cid) (bool, error) {
	if _, ok := s.cache.Get(ctx, cacheKey(c)); ok {
		return true, nil
	}
	return s.inner.Has(ctx, c)
}

// CacheStats returns the hit and miss counts of the underlying cache.
func (s *CachedBlockstore) CacheStats() (hits, misses int64) {
	return s.cache.Stats()
}

// Close releases the cache.
func (s *CachedBlockstore) Close() error {
	return s.cache.Close()
}

var _ Blockstore = (*CachedBlockstore)(nil)
