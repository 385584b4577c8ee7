package blockstore

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

var (
	// ErrNotFound is returned when no block exists for a CID.
	ErrNotFound = errors.New("blockstore: block not found")
	// ErrCorrupt is returned when stored bytes do not match their CID.
	ErrCorrupt = errors.New("blockstore: block corrupt")
)

// Prefix is the CID prefix of every block written by this package:
// CIDv1, DAG-CBOR, SHA2-256.
var Prefix = cid.Prefix{
	Version:  1,
	Codec:    cid.DagCBOR,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// Blockstore stores immutable blocks addressed by the hash of their content.
//
// Implementations must be safe for concurrent use. Slices returned by Get
// are owned by the caller; slices passed to Put may be reused after Put
// returns.
type Blockstore interface {
	// Get returns the block for c, or ErrNotFound.
	Get(ctx context.Context, c cid.Cid) ([]byte, error)
	// Put stores data and returns its CID. Storing an existing block is a no-op.
	Put(ctx context.Context, data []byte) (cid.Cid, error)
	// Has reports whether a block for c exists.
	Has(ctx context.Context, c cid.Cid) (bool, error)
}

// Sum returns the CID of data.
func Sum(data []byte) (cid.Cid, error) {
	c, err := Prefix.Sum(data)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "blockstore: hash block")
	}
	return c, nil
}

// Verify checks that data hashes to c using c's own prefix.
func Verify(c cid.Cid, data []byte) error {
	got, err := c.Prefix().Sum(data)
	if err != nil {
		return errors.Wrapf(err, "blockstore: hash block %s", c)
	}
	if !got.Equals(c) {
		return errors.Wrapf(ErrCorrupt, "block %s hashes to %s", c, got)
	}
	return nil
}
