package bigfield

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/bigfield/amt"
	"github.com/hupe1980/bigfield/rle"
)

// leafStore keeps RLE+ encoded leaves in an amt.Array keyed by FirstValue.
type leafStore struct {
	arr *amt.Array
}

func (s leafStore) get(ctx context.Context, key uint64) (*rle.Bitfield, bool, error) {
	data, ok, err := s.arr.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	b, err := rle.Unmarshal(data)
	if err != nil {
		return nil, false, errors.Wrapf(err, "decode leaf %d", key)
	}
	return b, true, nil
}

// getOrEmpty treats an absent leaf as all-unset.
func (s leafStore) getOrEmpty(ctx context.Context, key uint64) (*rle.Bitfield, error) {
	b, ok, err := s.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return rle.New(), nil
	}
	return b, nil
}

func (s leafStore) put(ctx context.Context, key uint64, b *rle.Bitfield) error {
	data, err := b.MarshalBinary()
	if err != nil {
		return errors.Wrapf(err, "encode leaf %d", key)
	}
	return s.arr.Set(ctx, key, data)
}

func (s leafStore) remove(ctx context.Context, key uint64) error {
	_, err := s.arr.Delete(ctx, key)
	return err
}
