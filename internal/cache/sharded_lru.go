package cache

import (
	"context"
	"hash/maphash"

	"github.com/hupe1980/bigfield/internal/resource"
)

const (
	maxShards = 64
	// minShardCapacity keeps small caches from being split into shards too
	// small to hold a single trie node.
	minShardCapacity = 64 << 10
)

// ShardedLRUBlockCache spreads entries over several LRUBlockCaches so that
// concurrent readers of different blocks rarely contend on one lock.
type ShardedLRUBlockCache struct {
	shards []*LRUBlockCache
	seed   maphash.Seed
}

// NewShardedLRUBlockCache creates a sharded LRU cache holding up to
// capacity bytes. Small capacities get fewer shards.
func NewShardedLRUBlockCache(capacity int64, rc *resource.Controller) *ShardedLRUBlockCache {
	n := 1
	for n < maxShards && capacity/int64(n*2) >= minShardCapacity {
		n *= 2
	}

	s := &ShardedLRUBlockCache{
		shards: make([]*LRUBlockCache, n),
		seed:   maphash.MakeSeed(),
	}
	for i := range s.shards {
		s.shards[i] = NewLRUBlockCache(max(capacity/int64(n), 1), rc)
	}
	return s
}

func (s *ShardedLRUBlockCache) shard(key CacheKey) *LRUBlockCache {
	if len(s.shards) == 1 {
		return s.shards[0]
	}
	h := maphash.String(s.seed, key.Path)
	h ^= uint64(key.Kind)<<56 ^ key.Offset*0x9e3779b97f4a7c15
	return s.shards[h&uint64(len(s.shards)-1)]
}

func (s *ShardedLRUBlockCache) Get(ctx context.Context, key CacheKey) ([]byte, bool) {
	return s.shard(key).Get(ctx, key)
}

func (s *ShardedLRUBlockCache) Set(ctx context.Context, key CacheKey, b []byte) {
	s.shard(key).Set(ctx, key, b)
}

// Invalidate removes matching entries from every shard. Blocks are
// immutable, so this only runs when a named blob is overwritten.
func (s *ShardedLRUBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	for _, sh := range s.shards {
		sh.Invalidate(predicate)
	}
}

func (s *ShardedLRUBlockCache) Close() error {
	for _, sh := range s.shards {
		if err := sh.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns hits and misses summed over all shards.
func (s *ShardedLRUBlockCache) Stats() (hits, misses int64) {
	for _, sh := range s.shards {
		h, m := sh.Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the cached bytes summed over all shards.
func (s *ShardedLRUBlockCache) Size() int64 {
	var total int64
	for _, sh := range s.shards {
		total += sh.Size()
	}
	return total
}

// Shards returns the number of shards.
func (s *ShardedLRUBlockCache) Shards() int {
	return len(s.shards)
}

func (s *ShardedLRUBlockCache) nonEmptyShards() int {
	n := 0
	for _, sh := range s.shards {
		if sh.Len() > 0 {
			n++
		}
	}
	return n
}
