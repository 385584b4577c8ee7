package amt

import "github.com/cockroachdb/errors"

var (
	// ErrMalformedNode is returned when a stored node or root does not
	// decode to a valid array.
	ErrMalformedNode = errors.New("amt: malformed node")
	// ErrInvalidBitWidth is returned for a bit width outside
	// [MinBitWidth, MaxBitWidth].
	ErrInvalidBitWidth = errors.New("amt: invalid bit width")
)
