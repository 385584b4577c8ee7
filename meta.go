package bigfield

import (
	"fmt"
	"math"
	"sort"

	"github.com/cockroachdb/errors"
)

// Meta describes one leaf: the half-open interval [FirstValue, LastValue)
// it covers and the number of set runs it holds. FirstValue is also the
// key of the leaf in the array.
type Meta struct {
	FirstValue uint64
	LastValue  uint64
	RunCount   int
}

// Contains reports whether pos lies inside the interval.
func (m Meta) Contains(pos uint64) bool {
	return m.FirstValue <= pos && pos < m.LastValue
}

func (m Meta) String() string {
	return fmt.Sprintf("[%d, %d) runs=%d", m.FirstValue, m.LastValue, m.RunCount)
}

// metaIndex is the range index: descriptors sorted by FirstValue that tile
// [0, math.MaxUint64) without gaps.
type metaIndex []Meta

func newMetaIndex() metaIndex {
	return metaIndex{{FirstValue: 0, LastValue: math.MaxUint64}}
}

// locate returns the index of the descriptor containing pos. pos must be
// below math.MaxUint64.
func (ix metaIndex) locate(pos uint64) int {
	i := sort.Search(len(ix), func(i int) bool { return ix[i].LastValue > pos })
	if i == len(ix) || ix[i].FirstValue > pos {
		panic(errors.AssertionFailedf("bigfield: no descriptor contains position %d", pos))
	}
	return i
}

// replaceOneWithTwo splices bottom and top in place of descriptor i.
func (ix *metaIndex) replaceOneWithTwo(i int, bottom, top Meta) {
	old := (*ix)[i]
	if bottom.FirstValue != old.FirstValue || bottom.LastValue != top.FirstValue || top.LastValue != old.LastValue {
		panic(errors.AssertionFailedf("bigfield: split %s into %s and %s does not tile", old, bottom, top))
	}
	if bottom.FirstValue >= bottom.LastValue || top.FirstValue >= top.LastValue {
		panic(errors.AssertionFailedf("bigfield: split %s produced an empty interval", old))
	}

	out := make(metaIndex, 0, len(*ix)+1)
	out = append(out, (*ix)[:i]...)
	out = append(out, bottom, top)
	out = append(out, (*ix)[i+1:]...)
	*ix = out
}

// check verifies that the descriptors tile the domain.
func (ix metaIndex) check() error {
	if len(ix) == 0 {
		return errors.New("range index is empty")
	}
	if ix[0].FirstValue != 0 {
		return errors.Newf("first descriptor starts at %d", ix[0].FirstValue)
	}
	if last := ix[len(ix)-1].LastValue; last != math.MaxUint64 {
		return errors.Newf("last descriptor ends at %d", last)
	}
	for i, m := range ix {
		if m.FirstValue >= m.LastValue {
			return errors.Newf("descriptor %d is empty: %s", i, m)
		}
		if m.RunCount < 0 {
			return errors.Newf("descriptor %d has negative run count", i)
		}
		if i > 0 && ix[i-1].LastValue != m.FirstValue {
			return errors.Newf("gap or overlap between %s and %s", ix[i-1], m)
		}
	}
	return nil
}

func (ix metaIndex) encode() [][3]uint64 {
	out := make([][3]uint64, len(ix))
	for i, m := range ix {
		out[i] = [3]uint64{m.FirstValue, m.LastValue, uint64(m.RunCount)}
	}
	return out
}

func decodeMetaIndex(triples [][3]uint64) (metaIndex, error) {
	ix := make(metaIndex, len(triples))
	for i, t := range triples {
		if t[2] > math.MaxInt32 {
			return nil, errors.Newf("descriptor %d has run count %d", i, t[2])
		}
		ix[i] = Meta{FirstValue: t[0], LastValue: t[1], RunCount: int(t[2])}
	}
	if err := ix.check(); err != nil {
		return nil, err
	}
	return ix, nil
}
