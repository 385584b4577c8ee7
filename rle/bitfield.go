package rle

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"sort"
	"strings"
)

// Range is a half-open interval [Start, End) of set bits.
type Range struct {
	Start uint64
	End   uint64
}

// Len returns the number of bits in the range.
func (r Range) Len() uint64 { return r.End - r.Start }

// Contains reports whether i lies inside the range.
func (r Range) Contains(i uint64) bool { return r.Start <= i && i < r.End }

func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Start, r.End) }

// Bitfield is a run-length encoded set of uint64 positions.
//
// The zero value is an empty bitfield ready to use. A Bitfield is not safe
// for concurrent mutation.
type Bitfield struct {
	ranges []Range
}

// New returns an empty bitfield.
func New() *Bitfield {
	return &Bitfield{}
}

// NewFromSet returns a bitfield containing every position in bits.
// Duplicates are ignored. Positions equal to math.MaxUint64 are dropped.
func NewFromSet(bits []uint64) *Bitfield {
	sorted := slices.Clone(bits)
	slices.Sort(sorted)

	b := &Bitfield{}
	for _, i := range slices.Compact(sorted) {
		if i == math.MaxUint64 {
			continue
		}
		b.appendRange(Range{Start: i, End: i + 1})
	}
	return b
}

// FromRanges builds a bitfield from a sequence of ranges.
//
// The ranges may arrive in any order and may overlap or touch; the result is
// normalized. Empty ranges are skipped.
func FromRanges(seq iter.Seq[Range]) *Bitfield {
	var collected []Range
	sorted := true
	for r := range seq {
		if r.End <= r.Start {
			continue
		}
		if n := len(collected); n > 0 && r.Start < collected[n-1].Start {
			sorted = false
		}
		collected = append(collected, r)
	}
	if !sorted {
		slices.SortFunc(collected, func(a, b Range) int {
			switch {
			case a.Start < b.Start:
				return -1
			case a.Start > b.Start:
				return 1
			default:
				return 0
			}
		})
	}

	b := &Bitfield{ranges: make([]Range, 0, len(collected))}
	for _, r := range collected {
		b.appendRange(r)
	}
	return b
}

// appendRange appends r, merging with the last range when they overlap or touch.
// r.Start must be >= the start of the last range.
func (b *Bitfield) appendRange(r Range) {
	if n := len(b.ranges); n > 0 && r.Start <= b.ranges[n-1].End {
		if r.End > b.ranges[n-1].End {
			b.ranges[n-1].End = r.End
		}
		return
	}
	b.ranges = append(b.ranges, r)
}

// search returns the index of the first range whose End is greater than i.
func (b *Bitfield) search(i uint64) int {
	return sort.Search(len(b.ranges), func(k int) bool { return b.ranges[k].End > i })
}

// Get reports whether bit i is set.
func (b *Bitfield) Get(i uint64) bool {
	k := b.search(i)
	return k < len(b.ranges) && b.ranges[k].Start <= i
}

// Set sets bit i. It panics for math.MaxUint64; use TrySet for untrusted input.
func (b *Bitfield) Set(i uint64) {
	if err := b.TrySet(i); err != nil {
		panic(err)
	}
}

// TrySet sets bit i, returning ErrOutOfRange for math.MaxUint64.
func (b *Bitfield) TrySet(i uint64) error {
	if i == math.MaxUint64 {
		return ErrOutOfRange
	}

	// First range ending at or after i: the only one that can contain i,
	// end exactly at i, or start right after it.
	k := sort.Search(len(b.ranges), func(k int) bool { return b.ranges[k].End >= i })
	if k < len(b.ranges) {
		r := &b.ranges[k]
		switch {
		case r.Start <= i && i < r.End:
			return nil
		case r.End == i:
			r.End++
			if k+1 < len(b.ranges) && b.ranges[k+1].Start == r.End {
				r.End = b.ranges[k+1].End
				b.ranges = slices.Delete(b.ranges, k+1, k+2)
			}
			return nil
		case r.Start == i+1:
			r.Start = i
			return nil
		}
	}
	b.ranges = slices.Insert(b.ranges, k, Range{Start: i, End: i + 1})
	return nil
}

// Unset clears bit i.
func (b *Bitfield) Unset(i uint64) {
	k := b.search(i)
	if k == len(b.ranges) || b.ranges[k].Start > i {
		return
	}

	r := b.ranges[k]
	switch {
	case r.Start == i && r.End == i+1:
		b.ranges = slices.Delete(b.ranges, k, k+1)
	case r.Start == i:
		b.ranges[k].Start++
	case r.End == i+1:
		b.ranges[k].End--
	default:
		b.ranges[k].End = i
		b.ranges = slices.Insert(b.ranges, k+1, Range{Start: i + 1, End: r.End})
	}
}

// Ranges returns the set runs in ascending order. The sequence may be
// iterated more than once; it must not be used across mutations.
func (b *Bitfield) Ranges() iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for _, r := range b.ranges {
			if !yield(r) {
				return
			}
		}
	}
}

// RunCount returns the number of set runs.
func (b *Bitfield) RunCount() int {
	return len(b.ranges)
}

// Count returns the number of set bits.
func (b *Bitfield) Count() uint64 {
	var n uint64
	for _, r := range b.ranges {
		n += r.Len()
	}
	return n
}

// First returns the lowest set bit. ok is false for an empty bitfield.
func (b *Bitfield) First() (i uint64, ok bool) {
	if len(b.ranges) == 0 {
		return 0, false
	}
	return b.ranges[0].Start, true
}

// Last returns the highest set bit. ok is false for an empty bitfield.
func (b *Bitfield) Last() (i uint64, ok bool) {
	if len(b.ranges) == 0 {
		return 0, false
	}
	return b.ranges[len(b.ranges)-1].End - 1, true
}

// IsEmpty reports whether no bit is set.
func (b *Bitfield) IsEmpty() bool {
	return len(b.ranges) == 0
}

// Clone returns a deep copy.
func (b *Bitfield) Clone() *Bitfield {
	return &Bitfield{ranges: slices.Clone(b.ranges)}
}

// Equal reports whether both bitfields contain the same bits.
func (b *Bitfield) Equal(other *Bitfield) bool {
	return slices.Equal(b.ranges, other.ranges)
}

func (b *Bitfield) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for k, r := range b.ranges {
		if k > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.String())
	}
	sb.WriteByte('}')
	return sb.String()
}
