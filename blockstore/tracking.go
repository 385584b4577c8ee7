package blockstore

import (
	"context"
	"sync/atomic"

	"github.com/ipfs/go-cid"
)

// Stats counts block operations.
type Stats struct {
	Reads        int64
	Writes       int64
	Has          int64
	BytesRead    int64
	BytesWritten int64
}

// TrackingBlockstore counts the operations passed to an inner Blockstore.
// Failed operations are not counted.
type TrackingBlockstore struct {
	inner Blockstore

	reads        atomic.Int64
	writes       atomic.Int64
	has          atomic.Int64
	bytesRead    atomic.Int64
	bytesWritten atomic.Int64
}

// NewTrackingBlockstore wraps inner.
func NewTrackingBlockstore(inner Blockstore) *TrackingBlockstore {
	return &TrackingBlockstore{inner: inner}
}

func (t *TrackingBlockstore) Get(ctx context.Context, c cid.Cid) ([]byte, error) {
	data, err := t.inner.Get(ctx, c)
	if err != nil {
		return nil, err
	}
	t.reads.Add(1)
	t.bytesRead.Add(int64(len(data)))
	return data, nil
}

func (t *TrackingBlockstore) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	c, err := t.inner.Put(ctx, data)
	if err != nil {
		return cid.Undef, err
	}
	t.writes.Add(1)
	t.bytesWritten.Add(int64(len(data)))
	return c, nil
}

func (t *TrackingBlockstore) Has(ctx context.Context, c cid.Cid) (bool, error) {
	ok, err := t.inner.Has(ctx, c)
	if err != nil {
		return false, err
	}
	t.has.Add(1)
	return ok, nil
}

// Stats returns the counters accumulated so far.
func (t *TrackingBlockstore) Stats() Stats {
	return Stats{
		Reads:        t.reads.Load(),
		Writes:       t.writes.Load(),
		Has:          t.has.Load(),
		BytesRead:    t.bytesRead.Load(),
		BytesWritten: t.bytesWritten.Load(),
	}
}

// TakeStats returns the counters and resets them.
func (t *TrackingBlockstore) TakeStats() Stats {
	return Stats{
		Reads:        t.reads.Swap(0),
		Writes:       t.writes.Swap(0),
		Has:          t.has.Swap(0),
		BytesRead:    t.bytesRead.Swap(0),
		BytesWritten: t.bytesWritten.Swap(0),
	}
}

var _ Blockstore = (*TrackingBlockstore)(nil)
