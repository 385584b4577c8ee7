package amt

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/bigfield/blockstore"
	"github.com/ipfs/go-cid"
)

const (
	// DefaultBitWidth gives nodes of 256 slots.
	DefaultBitWidth = 8
	MinBitWidth     = 1
	MaxBitWidth     = 16
)

// Array is a sparse array of byte values keyed by uint64, stored as a
// copy-on-write trie of content-addressed blocks.
//
// Mutations are held in memory until Flush, which writes only the nodes
// that changed. Blocks of earlier flushes are never modified, so a root CID
// keeps addressing the same contents. An Array is not safe for concurrent
// use.
type Array struct {
	store    blockstore.Blockstore
	bitWidth uint
	height   uint
	count    uint64
	root     *node
}

// Option configures New.
type Option func(*Array)

// WithBitWidth sets log2 of the node width.
func WithBitWidth(w uint) Option {
	return func(a *Array) {
		a.bitWidth = w
	}
}

// New returns an empty Array over store.
func New(store blockstore.Blockstore, opts ...Option) (*Array, error) {
	a := &Array{store: store, bitWidth: DefaultBitWidth}
	for _, opt := range opts {
		opt(a)
	}
	if a.bitWidth < MinBitWidth || a.bitWidth > MaxBitWidth {
		return nil, errors.Wrapf(ErrInvalidBitWidth, "%d", a.bitWidth)
	}
	a.root = newNode(a.width(), true)
	return a, nil
}

// Load opens the array whose root block is c.
func Load(ctx context.Context, store blockstore.Blockstore, c cid.Cid) (*Array, error) {
	data, err := store.Get(ctx, c)
	if err != nil {
		return nil, errors.Wrapf(err, "amt: load root %s", c)
	}

	var w rootWire
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrapf(ErrMalformedNode, "root %s: %v", c, err)
	}
	if w.BitWidth < MinBitWidth || w.BitWidth > MaxBitWidth {
		return nil, errors.Wrapf(ErrInvalidBitWidth, "root %s has bit width %d", c, w.BitWidth)
	}

	a := &Array{store: store, bitWidth: uint(w.BitWidth), count: w.Count}
	if w.Height > uint64(a.maxHeight()) {
		return nil, errors.Wrapf(ErrMalformedNode, "root %s has height %d, max %d", c, w.Height, a.maxHeight())
	}
	a.height = uint(w.Height)

	root, err := fromWire(w.Node, a.width(), a.height == 0)
	if err != nil {
		return nil, errors.Wrapf(err, "root %s", c)
	}
	if a.height > 0 && root.empty() {
		return nil, errors.Wrapf(ErrMalformedNode, "root %s is an empty interior node", c)
	}
	a.root = root
	return a, nil
}

func (a *Array) width() int {
	return 1 << a.bitWidth
}

// maxHeight is the lowest height whose capacity covers every uint64 key.
func (a *Array) maxHeight() uint {
	return (64+a.bitWidth-1)/a.bitWidth - 1
}

// covers reports whether key fits into a trie of the given height.
func (a *Array) covers(key uint64, height uint) bool {
	shift := a.bitWidth * (height + 1)
	if shift >= 64 {
		return true
	}
	return key < 1<<shift
}

func (a *Array) slot(key uint64, height uint) int {
	return int(key>>(a.bitWidth*height)) & (a.width() - 1)
}

// BitWidth returns log2 of the node width.
func (a *Array) BitWidth() uint {
	return a.bitWidth
}

// Height returns the number of interior levels above the leaves.
func (a *Array) Height() uint {
	return a.height
}

// Len returns the number of stored values.
func (a *Array) Len() uint64 {
	return a.count
}

func (a *Array) child(ctx context.Context, l *link, height uint) (*node, error) {
	if l.node != nil {
		return l.node, nil
	}
	data, err := a.store.Get(ctx, l.cid)
	if err != nil {
		return nil, errors.Wrapf(err, "amt: load node %s", l.cid)
	}
	var w nodeWire
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrapf(ErrMalformedNode, "node %s: %v", l.cid, err)
	}
	n, err := fromWire(w, a.width(), height == 0)
	if err != nil {
		return nil, errors.Wrapf(err, "node %s", l.cid)
	}
	l.node = n
	return n, nil
}

// Get returns a copy of the value stored at key.
func (a *Array) Get(ctx context.Context, key uint64) ([]byte, bool, error) {
	if !a.covers(key, a.height) {
		return nil, false, nil
	}
	n := a.root
	for h := a.height; h > 0; h-- {
		l := n.links[a.slot(key, h)]
		if l == nil {
			return nil, false, nil
		}
		var err error
		if n, err = a.child(ctx, l, h-1); err != nil {
			return nil, false, err
		}
	}
	v := n.values[a.slot(key, 0)]
	if v == nil {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Set stores a copy of value at key.
func (a *Array) Set(ctx context.Context, key uint64, value []byte) error {
	for !a.covers(key, a.height) {
		grown := newNode(a.width(), false)
		if !a.root.empty() {
			grown.links[0] = &link{node: a.root, dirty: true}
		}
		a.root = grown
		a.height++
	}

	n := a.root
	for h := a.height; h > 0; h-- {
		i := a.slot(key, h)
		l := n.links[i]
		if l == nil {
			l = &link{node: newNode(a.width(), h == 1)}
			n.links[i] = l
		}
		child, err := a.child(ctx, l, h-1)
		if err != nil {
			return err
		}
		l.dirty = true
		n = child
	}

	i := a.slot(key, 0)
	if n.values[i] == nil {
		a.count++
	}
	v := slices.Clone(value)
	if v == nil {
		v = []byte{}
	}
	n.values[i] = v
	return nil
}

// Delete removes key and reports whether it was present.
func (a *Array) Delete(ctx context.Context, key uint64) (bool, error) {
	if !a.covers(key, a.height) {
		return false, nil
	}
	found, err := a.delete(ctx, a.root, a.height, key)
	if err != nil || !found {
		return found, err
	}

	a.count--
	if a.count == 0 {
		a.root = newNode(a.width(), true)
		a.height = 0
		return true, nil
	}
	for a.height > 0 && a.root.onlyFirst() {
		next, err := a.child(ctx, a.root.links[0], a.height-1)
		if err != nil {
			return true, err
		}
		a.root = next
		a.height--
	}
	return true, nil
}

func (a *Array) delete(ctx context.Context, n *node, height uint, key uint64) (bool, error) {
	i := a.slot(key, height)
	if height == 0 {
		if n.values[i] == nil {
			return false, nil
		}
		n.values[i] = nil
		return true, nil
	}

	l := n.links[i]
	if l == nil {
		return false, nil
	}
	child, err := a.child(ctx, l, height-1)
	if err != nil {
		return false, err
	}
	found, err := a.delete(ctx, child, height-1, key)
	if err != nil || !found {
		return found, err
	}
	if child.empty() {
		n.links[i] = nil
	} else {
		l.dirty = true
	}
	return true, nil
}

// ForEach calls fn for every stored value in ascending key order. The
// value slice is only valid during the call. A non-nil error from fn stops
// the walk and is returned.
func (a *Array) ForEach(ctx context.Context, fn func(key uint64, value []byte) error) error {
	return a.forEach(ctx, a.root, a.height, 0, fn)
}

func (a *Array) forEach(ctx context.Context, n *node, height uint, offset uint64, fn func(uint64, []byte) error) error {
	if height == 0 {
		for i, v := range n.values {
			if v == nil {
				continue
			}
			if err := fn(offset+uint64(i), v); err != nil {
				return err
			}
		}
		return nil
	}

	stride := uint64(1) << (a.bitWidth * height)
	for i, l := range n.links {
		if l == nil {
			continue
		}
		child, err := a.child(ctx, l, height-1)
		if err != nil {
			return err
		}
		if err := a.forEach(ctx, child, height-1, offset+uint64(i)*stride, fn); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes every changed node and the root, returning the root CID.
func (a *Array) Flush(ctx context.Context) (cid.Cid, error) {
	if err := a.flush(ctx, a.root); err != nil {
		return cid.Undef, err
	}
	nw, err := a.root.toWire()
	if err != nil {
		return cid.Undef, err
	}
	data, err := encMode.Marshal(rootWire{
		BitWidth: uint64(a.bitWidth),
		Height:   uint64(a.height),
		Count:    a.count,
		Node:     nw,
	})
	if err != nil {
		return cid.Undef, errors.Wrap(err, "amt: encode root")
	}
	c, err := a.store.Put(ctx, data)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "amt: write root")
	}
	return c, nil
}

func (a *Array) flush(ctx context.Context, n *node) error {
	for _, l := range n.links {
		if l == nil || !l.dirty {
			continue
		}
		if err := a.flush(ctx, l.node); err != nil {
			return err
		}
		w, err := l.node.toWire()
		if err != nil {
			return err
		}
		data, err := encMode.Marshal(w)
		if err != nil {
			return errors.Wrap(err, "amt: encode node")
		}
		c, err := a.store.Put(ctx, data)
		if err != nil {
			return errors.Wrap(err, "amt: write node")
		}
		l.cid = c
		l.dirty = false
	}
	return nil
}
