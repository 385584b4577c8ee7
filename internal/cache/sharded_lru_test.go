package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardedLRUBlockCache_BasicOperations(t *testing.T) {
	cache := NewShardedLRUBlockCache(1024*1024, nil)

	ctx := context.Background()
	key := CacheKey{Kind: CacheKindBlock, Path: "bafy1"}
	data := []byte("test data")

	cache.Set(ctx, key, data)
	got, ok := cache.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, data, got)

	_, ok = cache.Get(ctx, CacheKey{Kind: CacheKindBlock, Path: "bafy999"})
	assert.False(t, ok)

	// Same path, different kind is a different key.
	_, ok = cache.Get(ctx, CacheKey{Kind: CacheKindBlob, Path: "bafy1"})
	assert.False(t, ok)
}

func TestShardedLRUBlockCache_ShardDistribution(t *testing.T) {
	cache := NewShardedLRUBlockCache(64*1024*1024, nil)

	ctx := context.Background()
	data := make([]byte, 1024)

	for i := range 1000 {
		cache.Set(ctx, CacheKey{Kind: CacheKindBlock, Path: fmt.Sprintf("bafy%d", i)}, data)
	}

	require.Equal(t, 64, cache.Shards())
	assert.GreaterOrEqual(t, cache.nonEmptyShards(), 30)
	assert.Equal(t, int64(1000*1024), cache.Size())
}

func TestShardedLRUBlockCache_SmallCapacityUsesFewShards(t *testing.T) {
	assert.Equal(t, 1, NewShardedLRUBlockCache(100<<10, nil).Shards())
	assert.Equal(t, 4, NewShardedLRUBlockCache(256<<10, nil).Shards())
	assert.Equal(t, 64, NewShardedLRUBlockCache(1<<30, nil).Shards())
}

func TestShardedLRUBlockCache_Concurrent(t *testing.T) {
	cache := NewShardedLRUBlockCache(64*1024*1024, nil)

	ctx := context.Background()
	data := make([]byte, 1024)

	const numGoroutines = 32
	const numOpsPerGoroutine = 500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for g := range numGoroutines {
		go func(goroutineID int) {
			defer wg.Done()
			for i := range numOpsPerGoroutine {
				key := CacheKey{
					Kind:   CacheKindBlob,
					Path:   fmt.Sprintf("blob-%d", goroutineID),
					Offset: uint64(i),
				}
				cache.Set(ctx, key, data)
				cache.Get(ctx, key)
			}
		}(g)
	}

	wg.Wait()

	hits, misses := cache.Stats()
	assert.Equal(t, int64(numGoroutines*numOpsPerGoroutine), hits+misses)
}

func TestShardedLRUBlockCache_Invalidate(t *testing.T) {
	cache := NewShardedLRUBlockCache(64*1024*1024, nil)

	ctx := context.Background()
	data := []byte("test")

	for i := range 100 {
		cache.Set(ctx, CacheKey{Kind: CacheKindBlob, Path: "one", Offset: uint64(i)}, data)
		cache.Set(ctx, CacheKey{Kind: CacheKindBlob, Path: "two", Offset: uint64(i)}, data)
	}

	cache.Invalidate(func(key CacheKey) bool {
		return key.Path == "one"
	})

	_, ok := cache.Get(ctx, CacheKey{Kind: CacheKindBlob, Path: "one"})
	assert.False(t, ok)
	_, ok = cache.Get(ctx, CacheKey{Kind: CacheKindBlob, Path: "two"})
	assert.True(t, ok)
	assert.NoError(t, cache.Close())
}

func BenchmarkShardedLRUBlockCache_Get(b *testing.B) {
	cache := NewShardedLRUBlockCache(64*1024*1024, nil)
	ctx := context.Background()
	key := CacheKey{Kind: CacheKindBlock, Path: "bafy"}
	cache.Set(ctx, key, make([]byte, 4096))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			cache.Get(ctx, key)
		}
	})
}
