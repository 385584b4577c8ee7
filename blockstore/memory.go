package blockstore

import (
	"context"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ipfs/go-cid"
)

// MemoryBlockstore keeps blocks in a map.
type MemoryBlockstore struct {
	mu     sync.RWMutex
	blocks map[string][]byte
}

// NewMemoryBlockstore returns an empty MemoryBlockstore.
func NewMemoryBlockstore() *MemoryBlockstore {
	return &MemoryBlockstore{blocks: make(map[string][]byte)}
}

func (m *MemoryBlockstore) Get(ctx context.Context, c cid.Cid) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blocks[c.KeyString()]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s", c)
	}
	return slices.Clone(data), nil
}

func (m *MemoryBlockstore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	if err := ctx.Err(); err != nil {
		return cid.Undef, err
	}
	c, err := Sum(data)
	if err != nil {
		return cid.Undef, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[c.KeyString()]; !ok {
		m.blocks[c.KeyString()] = slices.Clone(data)
	}
	return c, nil
}

func (m *MemoryBlockstore) Has(ctx context.Context, c cid.Cid) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blocks[c.KeyString()]
	return ok, nil
}

// Len returns the number of stored blocks.
func (m *MemoryBlockstore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blocks)
}

// Delete removes a block. It exists so tests can simulate lost blocks.
func (m *MemoryBlockstore) Delete(c cid.Cid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blocks, c.KeyString())
}

var _ Blockstore = (*MemoryBlockstore)(nil)
