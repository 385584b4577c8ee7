package bigfield

import (
	"context"
	"iter"
	"math"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/bigfield/amt"
	"github.com/hupe1980/bigfield/blockstore"
	"github.com/hupe1980/bigfield/rle"
)

// BigField is a set of uint64 positions in [0, math.MaxUint64) stored as
// run-length encoded leaves in a content-addressed array.
//
// Each leaf covers one interval of the range index. A leaf whose run count
// reaches the split factor is split in two on the next write that adds a
// bit to it, so every stored leaf stays small no matter how the positions
// are distributed.
//
// A BigField is not safe for concurrent use.
type BigField struct {
	store  blockstore.Blockstore
	leaves leafStore
	meta   metaIndex
	opts   options

	sets   uint64
	gets   uint64
	splits uint64
}

// Stats reports counters for a BigField.
type Stats struct {
	Leaves int    // descriptors in the range index
	Runs   int    // set runs across all leaves
	Sets   uint64 // Set calls that changed a bit
	Gets   uint64
	Splits uint64
}

// New returns an empty BigField over store.
func New(store blockstore.Blockstore, opts ...Option) (*BigField, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.splitFactor < MinSplitFactor {
		return nil, errors.Wrapf(ErrInvalidOption, "split factor %d is below %d", o.splitFactor, MinSplitFactor)
	}
	if o.splitFactor > MaxSplitFactor {
		return nil, errors.Wrapf(ErrInvalidOption, "split factor %d is above %d", o.splitFactor, MaxSplitFactor)
	}

	arr, err := amt.New(store, amt.WithBitWidth(o.bitWidth))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidOption, "%v", err)
	}
	return &BigField{
		store:  store,
		leaves: leafStore{arr: arr},
		meta:   newMetaIndex(),
		opts:   o,
	}, nil
}

// Set marks pos as present. Setting a bit that is already set writes
// nothing. On error the BigField is unchanged.
func (f *BigField) Set(ctx context.Context, pos uint64) (err error) {
	start := time.Now()
	changed := false
	defer func() {
		f.opts.metricsObserver.OnSet(time.Since(start), changed, err)
		if changed || err != nil {
			f.opts.logger.LogSet(ctx, pos, err)
		}
	}()

	if pos == math.MaxUint64 {
		return errors.Wrapf(ErrOutOfRange, "set %d", pos)
	}

	i := f.meta.locate(pos)
	m := f.meta[i]
	leaf, err := f.leaves.getOrEmpty(ctx, m.FirstValue)
	if err != nil {
		return storeFault("get", m.FirstValue, err)
	}
	rel := pos - m.FirstValue
	if leaf.Get(rel) {
		return nil
	}

	if m.RunCount >= f.opts.splitFactor {
		res, ok, err := f.splitAndSet(ctx, i, leaf, pos)
		if err != nil {
			return err
		}
		if ok {
			changed = true
			f.sets++
			f.splits++
			f.opts.logger.LogSplit(ctx, res.old, res.bottom, res.top, len(f.meta))
			f.opts.metricsObserver.OnSplit(len(f.meta))
			return nil
		}
		f.opts.logger.LogSplitDegenerate(ctx, m, pos)
	}

	if err := leaf.TrySet(rel); err != nil {
		return errors.Wrapf(err, "set %d", pos)
	}
	if err := f.leaves.put(ctx, m.FirstValue, leaf); err != nil {
		if errors.Is(err, rle.ErrTooLarge) {
			return errors.Wrapf(err, "set %d", pos)
		}
		return storeFault("set", m.FirstValue, err)
	}
	f.meta[i].RunCount = leaf.RunCount()
	changed = true
	f.sets++
	return nil
}

// Get reports whether pos is present. Positions in intervals that have no
// stored leaf read as absent.
func (f *BigField) Get(ctx context.Context, pos uint64) (ok bool, err error) {
	start := time.Now()
	defer func() {
		f.opts.metricsObserver.OnGet(time.Since(start), err)
		f.opts.logger.LogGet(ctx, pos, err)
	}()

	if pos == math.MaxUint64 {
		return false, errors.Wrapf(ErrOutOfRange, "get %d", pos)
	}
	f.gets++

	m := f.meta[f.meta.locate(pos)]
	leaf, found, err := f.leaves.get(ctx, m.FirstValue)
	if err != nil {
		return false, storeFault("get", m.FirstValue, err)
	}
	if !found {
		return false, nil
	}
	return leaf.Get(pos - m.FirstValue), nil
}

// Meta returns a copy of the range index.
func (f *BigField) Meta() []Meta {
	return slices.Clone(f.meta)
}

// Stats returns counters for f.
func (f *BigField) Stats() Stats {
	s := Stats{
		Leaves: len(f.meta),
		Sets:   f.sets,
		Gets:   f.gets,
		Splits: f.splits,
	}
	for _, m := range f.meta {
		s.Runs += m.RunCount
	}
	return s
}

// ForEachLeaf calls fn for every stored leaf in ascending order with its
// descriptor. Leaf offsets are relative to the descriptor's FirstValue.
func (f *BigField) ForEachLeaf(ctx context.Context, fn func(Meta, *rle.Bitfield) error) error {
	for _, m := range f.meta {
		leaf, ok, err := f.leaves.get(ctx, m.FirstValue)
		if err != nil {
			return storeFault("get", m.FirstValue, err)
		}
		if !ok {
			continue
		}
		if err := fn(m, leaf); err != nil {
			return err
		}
	}
	return nil
}

// Ranges returns the set positions as absolute ranges in ascending order.
// Runs that touch across a leaf boundary are merged. A store failure is
// yielded once with a zero range and ends the sequence.
func (f *BigField) Ranges(ctx context.Context) iter.Seq2[rle.Range, error] {
	return func(yield func(rle.Range, error) bool) {
		var (
			pending rle.Range
			have    bool
			stopped bool
		)
		err := f.ForEachLeaf(ctx, func(m Meta, leaf *rle.Bitfield) error {
			for r := range leaf.Ranges() {
				abs := rle.Range{Start: r.Start + m.FirstValue, End: r.End + m.FirstValue}
				if have && pending.End == abs.Start {
					pending.End = abs.End
					continue
				}
				if have && !yield(pending, nil) {
					stopped = true
					return errStopIteration
				}
				pending, have = abs, true
			}
			return nil
		})
		if stopped {
			return
		}
		if err != nil {
			yield(rle.Range{}, err)
			return
		}
		if have {
			yield(pending, nil)
		}
	}
}

var errStopIteration = errors.New("stop iteration")

// Count returns the number of set positions.
func (f *BigField) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := f.ForEachLeaf(ctx, func(_ Meta, leaf *rle.Bitfield) error {
		n += leaf.Count()
		return nil
	})
	return n, err
}

// Bitmap exports the set positions into a Roaring64 bitmap.
func (f *BigField) Bitmap(ctx context.Context) (*roaring64.Bitmap, error) {
	bm := roaring64.New()
	for r, err := range f.Ranges(ctx) {
		if err != nil {
			return nil, err
		}
		bm.AddRange(r.Start, r.End)
	}
	return bm, nil
}
