package rle

import "github.com/cockroachdb/errors"

var (
	// ErrInvalidEncoding is the parent of every decoding failure.
	ErrInvalidEncoding = errors.New("rle: invalid encoding")

	// ErrUnsupportedVersion is returned for a header version other than 0.
	ErrUnsupportedVersion = errors.Wrap(ErrInvalidEncoding, "unsupported version")

	// ErrNotMinimal is returned when a run or the trailing bytes are not
	// minimally encoded.
	ErrNotMinimal = errors.Wrap(ErrInvalidEncoding, "not minimally encoded")

	// ErrOverflow is returned when decoded runs extend past the uint64 domain.
	ErrOverflow = errors.Wrap(ErrInvalidEncoding, "runs overflow the uint64 domain")

	// ErrTooLarge is returned when an encoding exceeds MaxEncodedSize.
	ErrTooLarge = errors.Wrap(ErrInvalidEncoding, "encoded bitfield too large")

	// ErrOutOfRange is returned by TrySet for math.MaxUint64, which no
	// half-open range can contain.
	ErrOutOfRange = errors.New("rle: bit out of range")
)
