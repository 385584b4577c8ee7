package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DiskCacheConfig holds configuration for the disk cache.
type DiskCacheConfig struct {
	// RootDir is the directory where cache files are stored.
	RootDir string
	// MaxSizeBytes is the maximum size of the cache in bytes.
	MaxSizeBytes int64
	// MaxConcurrentWrites limits background disk writes.
	// Defaults to 16 if <= 0.
	MaxConcurrentWrites int64
}

// DiskBlockCache implements BlockCache backed by the local filesystem.
// It maintains an in-memory LRU index of the files on disk.
type DiskBlockCache struct {
	mu          sync.Mutex
	rootDir     string
	maxSize     int64
	currentSize int64

	writeSem *semaphore.Weighted
	wg       sync.WaitGroup

	items   map[CacheKey]*lruEntry
	lruHead *lruEntry
	lruTail *lruEntry

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	key        CacheKey
	size       int64
	filePath   string
	next, prev *lruEntry
}

// NewDiskBlockCache creates a new disk-backed block cache and indexes the
// files already present under RootDir.
func NewDiskBlockCache(config DiskCacheConfig) (*DiskBlockCache, error) {
	if err := os.MkdirAll(config.RootDir, 0755); err != nil {
		return nil, err
	}

	maxWrites := config.MaxConcurrentWrites
	if maxWrites <= 0 {
		maxWrites = 16
	}

	c := &DiskBlockCache{
		rootDir:  config.RootDir,
		maxSize:  config.MaxSizeBytes,
		items:    make(map[CacheKey]*lruEntry),
		writeSem: semaphore.NewWeighted(maxWrites),
	}
	c.scanExistingFiles()

	return c, nil
}

func (c *DiskBlockCache) scanExistingFiles() {
	_ = filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // keep scanning past unreadable entries
		}
		if info.IsDir() {
			return nil
		}

		key, ok := c.parsePathToKey(path)
		if !ok {
			return nil
		}

		c.addToLRU(key, path, info.Size())
		return nil
	})
}

// encodeKeyToRelPath maps a key to <Path>/<Kind>-<Offset>.blk.
// ok is false for paths that would escape the cache root.
func (c *DiskBlockCache) encodeKeyToRelPath(key CacheKey) (string, bool) {
	fileName := fmt.Sprintf("%d-%d.blk", key.Kind, key.Offset)
	if key.Path == "" {
		return filepath.Join("_misc", fileName), true
	}
	if !filepath.IsLocal(key.Path) {
		return "", false
	}
	return filepath.Join(key.Path, fileName), true
}

func (c *DiskBlockCache) parsePathToKey(absPath string) (CacheKey, bool) {
	relPath, err := filepath.Rel(c.rootDir, absPath)
	if err != nil {
		return CacheKey{}, false
	}

	dir, file := filepath.Split(relPath)

	var (
		kind int
		off  uint64
	)
	n, err := fmt.Sscanf(file, "%d-%d.blk", &kind, &off)
	if err != nil || n != 2 {
		return CacheKey{}, false
	}

	k := CacheKey{Kind: CacheKind(kind), Offset: off}
	dir = strings.TrimSuffix(dir, string(filepath.Separator))
	if dir != "_misc" {
		k.Path = filepath.ToSlash(dir)
	}
	return k, true
}

// Get returns a cached block, reading it from disk.
func (c *DiskBlockCache) Get(_ context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	ent, ok := c.items[key]
	if ok {
		c.moveToFront(ent)
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	data, err := os.ReadFile(ent.filePath)
	if err != nil {
		c.mu.Lock()
		if cur, ok := c.items[key]; ok && cur == ent {
			c.removeEntry(ent)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return data, true
}

// Set writes the block to disk in the background. If every write slot is
// busy the block is not cached.
func (c *DiskBlockCache) Set(_ context.Context, key CacheKey, b []byte) {
	relPath, ok := c.encodeKeyToRelPath(key)
	if !ok {
		return
	}
	size := int64(len(b))
	if size > c.maxSize {
		return
	}
	absPath := filepath.Join(c.rootDir, relPath)

	c.mu.Lock()
	if ent, ok := c.items[key]; ok {
		// Blocks are immutable; an existing entry is never rewritten.
		c.moveToFront(ent)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if !c.writeSem.TryAcquire(1) {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.writeSem.Release(1)

		if err := writeFileAtomic(absPath, b); err != nil {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if _, ok := c.items[key]; ok {
			return
		}
		for c.currentSize+size > c.maxSize && c.lruTail != nil {
			c.evictOne()
		}
		c.addToLRU(key, absPath, size)
	}()
}

func writeFileAtomic(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), "tmp-blk-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	if _, err := tmpFile.Write(b); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Invalidate removes entries matching the predicate and deletes their files.
func (c *DiskBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*lruEntry
	for k, ent := range c.items {
		if predicate(k) {
			toRemove = append(toRemove, ent)
		}
	}

	for _, ent := range toRemove {
		_ = os.Remove(ent.filePath)
		c.removeEntry(ent)
	}
}

// Close waits for all background writes to complete.
func (c *DiskBlockCache) Close() error {
	c.wg.Wait()
	return nil
}

// Stats returns hit and miss counts.
func (c *DiskBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the bytes currently indexed.
func (c *DiskBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

// Internal LRU helpers (must hold lock)

func (c *DiskBlockCache) addToLRU(key CacheKey, path string, size int64) {
	ent := &lruEntry{
		key:      key,
		filePath: path,
		size:     size,
	}
	c.items[key] = ent
	c.currentSize += size

	if c.lruHead == nil {
		c.lruHead = ent
		c.lruTail = ent
		return
	}
	ent.next = c.lruHead
	c.lruHead.prev = ent
	c.lruHead = ent
}

func (c *DiskBlockCache) moveToFront(ent *lruEntry) {
	if c.lruHead == ent {
		return
	}

	if ent.prev != nil {
		ent.prev.next = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	}
	if c.lruTail == ent {
		c.lruTail = ent.prev
	}

	ent.next = c.lruHead
	ent.prev = nil
	if c.lruHead != nil {
		c.lruHead.prev = ent
	}
	c.lruHead = ent
	if c.lruTail == nil {
		c.lruTail = ent
	}
}

func (c *DiskBlockCache) removeEntry(ent *lruEntry) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.lruHead = ent.next
	}

	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.lruTail = ent.prev
	}

	ent.prev, ent.next = nil, nil
	delete(c.items, ent.key)
	c.currentSize -= ent.size
}

func (c *DiskBlockCache) evictOne() {
	if c.lruTail == nil {
		return
	}
	_ = os.Remove(c.lruTail.filePath)
	c.removeEntry(c.lruTail)
}
