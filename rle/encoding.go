package rle

import (
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
)

// MaxEncodedSize caps both the output of MarshalBinary and the input
// accepted by UnmarshalBinary.
const MaxEncodedSize = 32 << 10

const (
	version              = 0
	shortRunLimit        = 16
	binaryMaxVarintLen64 = 10
)

// bitWriter packs values into a byte slice, least significant bit first.
type bitWriter struct {
	buf   []byte
	acc   uint64
	nbits uint
}

// put writes the low n bits of v; n must be at most 8.
func (w *bitWriter) put(v uint64, n uint) {
	w.acc |= (v & (1<<n - 1)) << w.nbits
	w.nbits += n
	for w.nbits >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) putRun(n uint64) {
	switch {
	case n == 1:
		w.put(1, 1)
	case n < shortRunLimit:
		w.put(0b10, 2)
		w.put(n, 4)
	default:
		w.put(0b00, 2)
		for n >= 0x80 {
			w.put(n&0x7f|0x80, 8)
			n >>= 7
		}
		w.put(n, 8)
	}
}

// finish flushes the partial byte and trims trailing zero bytes.
func (w *bitWriter) finish() []byte {
	if w.nbits > 0 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc, w.nbits = 0, 0
	}
	end := len(w.buf)
	for end > 0 && w.buf[end-1] == 0 {
		end--
	}
	return w.buf[:end]
}

// bitReader reads values packed by bitWriter. Bits past the end of the
// input read as zero.
type bitReader struct {
	data []byte
	pos  uint64
}

func (r *bitReader) get(n uint) uint64 {
	var v uint64
	for k := uint(0); k < n; k++ {
		idx := r.pos / 8
		if idx < uint64(len(r.data)) {
			bit := (r.data[idx] >> (r.pos % 8)) & 1
			v |= uint64(bit) << k
		}
		r.pos++
	}
	return v
}

// getRun returns the next run length; ok is false at the end of the stream.
func (r *bitReader) getRun() (n uint64, ok bool, err error) {
	start := r.pos
	if r.get(1) == 1 {
		return 1, true, nil
	}
	if r.get(1) == 1 {
		n = r.get(4)
		if n < 2 {
			return 0, false, errors.Wrapf(ErrNotMinimal, "short run of length %d at bit %d", n, start)
		}
		return n, true, nil
	}

	var shift uint
	for k := 0; ; k++ {
		if k == binaryMaxVarintLen64 {
			return 0, false, errors.Wrapf(ErrOverflow, "varint at bit %d", start)
		}
		b := r.get(8)
		if k == binaryMaxVarintLen64-1 && b > 1 {
			return 0, false, errors.Wrapf(ErrOverflow, "varint at bit %d", start)
		}
		n |= (b & 0x7f) << shift
		if b&0x80 == 0 {
			if b == 0 && k > 0 {
				return 0, false, errors.Wrapf(ErrNotMinimal, "varint at bit %d", start)
			}
			break
		}
		shift += 7
	}
	if n == 0 {
		r.pos = start
		return 0, false, nil
	}
	if n < shortRunLimit {
		return 0, false, errors.Wrapf(ErrNotMinimal, "long run of length %d at bit %d", n, start)
	}
	return n, true, nil
}

// MarshalBinary encodes the bitfield as RLE+. An empty bitfield encodes to
// zero bytes. It returns ErrTooLarge rather than produce an encoding that
// UnmarshalBinary would reject.
func (b *Bitfield) MarshalBinary() ([]byte, error) {
	if len(b.ranges) == 0 {
		return []byte{}, nil
	}

	w := &bitWriter{buf: make([]byte, 0, 1+len(b.ranges)*2)}
	w.put(version, 2)
	if b.ranges[0].Start == 0 {
		w.put(1, 1)
	} else {
		w.put(0, 1)
		w.putRun(b.ranges[0].Start)
	}

	for k, r := range b.ranges {
		if k > 0 {
			w.putRun(r.Start - b.ranges[k-1].End)
		}
		w.putRun(r.Len())
	}
	out := w.finish()
	if len(out) > MaxEncodedSize {
		return nil, errors.Wrapf(ErrTooLarge, "%d bytes", len(out))
	}
	return out, nil
}

// UnmarshalBinary decodes RLE+ data, replacing the contents of b.
func (b *Bitfield) UnmarshalBinary(data []byte) error {
	decoded, err := decode(data)
	if err != nil {
		return err
	}
	b.ranges = decoded
	return nil
}

// Unmarshal decodes RLE+ data into a new bitfield.
func Unmarshal(data []byte) (*Bitfield, error) {
	b := &Bitfield{}
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return b, nil
}

func decode(data []byte) ([]Range, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) > MaxEncodedSize {
		return nil, errors.Wrapf(ErrTooLarge, "%d bytes", len(data))
	}
	if data[len(data)-1] == 0 {
		return nil, errors.Wrap(ErrNotMinimal, "trailing zero byte")
	}

	r := &bitReader{data: data}
	if v := r.get(2); v != version {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", v)
	}
	set := r.get(1) == 1

	var (
		ranges []Range
		pos    uint64
		last   bool // value of the last decoded run
	)
	for {
		n, ok, err := r.getRun()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if n > math.MaxUint64-pos {
			return nil, errors.Wrapf(ErrOverflow, "run of length %d at position %d", n, pos)
		}
		if set {
			ranges = append(ranges, Range{Start: pos, End: pos + n})
		}
		pos += n
		last = set
		set = !set
	}

	if !last {
		// Either no runs at all or a trailing unset run; both re-encode
		// differently.
		return nil, errors.Wrap(ErrNotMinimal, "stream does not end with a set run")
	}

	// Every set bit of the input must belong to the run stream.
	highest := uint64(len(data)-1)*8 + uint64(bits.Len8(data[len(data)-1])) - 1
	if highest >= r.pos {
		return nil, errors.Wrapf(ErrNotMinimal, "trailing bits after position %d", r.pos)
	}
	return ranges, nil
}
