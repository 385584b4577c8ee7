package rle

// Cut removes every position in mask and shifts each remaining bit down by
// the number of mask positions below it. Mask positions count as removed
// whether or not they are set in b.
//
//	b    = {[0, 10)}
//	mask = {[3, 5)}
//	cut  = {[0, 8)}
func (b *Bitfield) Cut(mask *Bitfield) *Bitfield {
	out := &Bitfield{}
	m := mask.ranges

	var (
		j       int
		removed uint64 // size of mask ranges entirely below the cursor
	)
	for _, r := range b.ranges {
		cur := r.Start
		for cur < r.End {
			for j < len(m) && m[j].End <= cur {
				removed += m[j].Len()
				j++
			}
			if j < len(m) && m[j].Start <= cur {
				cur = m[j].End
				continue
			}
			end := r.End
			if j < len(m) && m[j].Start < end {
				end = m[j].Start
			}
			out.appendRange(Range{Start: cur - removed, End: end - removed})
			cur = end
		}
	}
	return out
}

// Subtract returns the bits of b that are not in mask. Positions are not
// shifted.
func (b *Bitfield) Subtract(mask *Bitfield) *Bitfield {
	out := &Bitfield{}
	m := mask.ranges

	j := 0
	for _, r := range b.ranges {
		cur := r.Start
		for cur < r.End {
			for j < len(m) && m[j].End <= cur {
				j++
			}
			if j < len(m) && m[j].Start <= cur {
				cur = m[j].End
				continue
			}
			end := r.End
			if j < len(m) && m[j].Start < end {
				end = m[j].Start
			}
			out.appendRange(Range{Start: cur, End: end})
			cur = end
		}
	}
	return out
}

// Union returns the bits set in either bitfield.
func (b *Bitfield) Union(other *Bitfield) *Bitfield {
	out := &Bitfield{ranges: make([]Range, 0, len(b.ranges)+len(other.ranges))}
	x, y := b.ranges, other.ranges
	for len(x) > 0 || len(y) > 0 {
		if len(y) == 0 || (len(x) > 0 && x[0].Start <= y[0].Start) {
			out.appendRange(x[0])
			x = x[1:]
		} else {
			out.appendRange(y[0])
			y = y[1:]
		}
	}
	return out
}
