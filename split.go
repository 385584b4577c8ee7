package bigfield

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/bigfield/rle"
)

// splitResult describes a performed split.
type splitResult struct {
	old, bottom, top Meta
}

// splitAndSet splits the descriptor at i, whose current leaf is leaf, into
// two and sets pos in whichever half owns it. It reports false without
// changing anything when the split would leave the top half empty.
func (f *BigField) splitAndSet(ctx context.Context, i int, leaf *rle.Bitfield, pos uint64) (splitResult, bool, error) {
	old := f.meta[i]
	half := f.opts.splitFactor / 2

	var bottomRuns, topRuns []rle.Range
	for r := range leaf.Ranges() {
		if len(bottomRuns) < half {
			bottomRuns = append(bottomRuns, r)
		} else {
			topRuns = append(topRuns, r)
		}
	}
	if len(topRuns) == 0 || topRuns[0].Start == 0 {
		return splitResult{}, false, nil
	}

	// Offsets are relative to old.FirstValue. The mask covers the bottom
	// half; cutting it from top clears nothing set but shifts every top
	// offset down so the top leaf is relative to the boundary.
	rel := topRuns[0].Start
	boundary := old.FirstValue + rel
	bottom := rle.FromRanges(slices.Values(bottomRuns))
	top := rle.FromRanges(slices.Values(topRuns)).Cut(rle.FromRanges(slices.Values([]rle.Range{{Start: 0, End: rel}})))

	var err error
	if pos >= boundary {
		err = top.TrySet(pos - boundary)
	} else {
		err = bottom.TrySet(pos - old.FirstValue)
	}
	if err != nil {
		return splitResult{}, false, errors.Wrapf(err, "set %d", pos)
	}

	res := splitResult{
		old:    old,
		bottom: Meta{FirstValue: old.FirstValue, LastValue: boundary, RunCount: bottom.RunCount()},
		top:    Meta{FirstValue: boundary, LastValue: old.LastValue, RunCount: top.RunCount()},
	}

	// The top key is new, so writing it first leaves the old leaf intact
	// if either write fails.
	if err := f.leaves.put(ctx, res.top.FirstValue, top); err != nil {
		return splitResult{}, false, storeFault("split", res.top.FirstValue, err)
	}
	if err := f.leaves.put(ctx, res.bottom.FirstValue, bottom); err != nil {
		if rmErr := f.leaves.remove(ctx, res.top.FirstValue); rmErr != nil {
			err = errors.CombineErrors(err, rmErr)
		}
		return splitResult{}, false, storeFault("split", res.bottom.FirstValue, err)
	}

	f.meta.replaceOneWithTwo(i, res.bottom, res.top)
	return res, true, nil
}
