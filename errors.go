package bigfield

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrOutOfRange is returned for position math.MaxUint64, which lies
	// outside the half-open domain [0, math.MaxUint64).
	ErrOutOfRange = errors.New("bigfield: position out of range")

	// ErrStoreFault matches every *StoreError.
	ErrStoreFault = errors.New("bigfield: store fault")

	// ErrCorrupt is returned by Load when a committed root is invalid.
	ErrCorrupt = errors.New("bigfield: corrupt root")

	// ErrSplitDegenerate marks a split whose top partition came out empty.
	// It is logged, never returned.
	ErrSplitDegenerate = errors.New("bigfield: degenerate split boundary")

	// ErrInvalidOption is returned by New for out-of-range options.
	ErrInvalidOption = errors.New("bigfield: invalid option")

	// ErrNoHead is returned by HeadStore.ResolveHead before the first publish.
	ErrNoHead = errors.New("bigfield: no head published")
)

// StoreError reports a failure of the leaf array or block store.
//
// The range index is unchanged when a Set returns a StoreError. The
// underlying error can be accessed via errors.Unwrap.
type StoreError struct {
	Op  string // "get", "set", "split", "commit", "load"
	Key uint64 // leaf key (FirstValue) involved, 0 for commit and load
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("bigfield: %s leaf %d: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStoreFault) match.
func (e *StoreError) Is(target error) bool { return target == ErrStoreFault }

func storeFault(op string, key uint64, err error) error {
	return &StoreError{Op: op, Key: key, Err: err}
}
