package amt

import (
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
)

// nodeWire is the stored form of a node: a bitmap of occupied slots
// followed by the links (interior nodes) or values (leaves) of those slots
// in slot order.
type nodeWire struct {
	_      struct{} `cbor:",toarray"`
	Bmap   []byte
	Links  [][]byte
	Values [][]byte
}

// rootWire is the stored form of an array root.
type rootWire struct {
	_        struct{} `cbor:",toarray"`
	BitWidth uint64
	Height   uint64
	Count    uint64
	Node     nodeWire
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		MaxArrayElements: 1 << 16,
	}).DecMode(); err != nil {
		panic(err)
	}
}

// link is a child slot of an interior node. A link is either clean (cid
// set, node possibly cached) or dirty (node set, cid stale).
type link struct {
	cid   cid.Cid
	node  *node
	dirty bool
}

// node holds either links or values depending on its height; the other
// slice is nil.
type node struct {
	links  []*link
	values [][]byte
}

func newNode(width int, leaf bool) *node {
	if leaf {
		return &node{values: make([][]byte, width)}
	}
	return &node{links: make([]*link, width)}
}

func (n *node) isLeaf() bool {
	return n.values != nil
}

func (n *node) empty() bool {
	for _, v := range n.values {
		if v != nil {
			return false
		}
	}
	for _, l := range n.links {
		if l != nil {
			return false
		}
	}
	return true
}

// onlyFirst reports whether slot 0 is the only occupied slot.
func (n *node) onlyFirst() bool {
	if n.isLeaf() || n.links[0] == nil {
		return false
	}
	for _, l := range n.links[1:] {
		if l != nil {
			return false
		}
	}
	return true
}

func (n *node) toWire() (nodeWire, error) {
	width := len(n.links) + len(n.values)
	w := nodeWire{
		Bmap:   make([]byte, bmapLen(width)),
		Links:  [][]byte{},
		Values: [][]byte{},
	}
	if n.isLeaf() {
		for i, v := range n.values {
			if v != nil {
				w.Bmap[i/8] |= 1 << (i % 8)
				w.Values = append(w.Values, v)
			}
		}
		return w, nil
	}

	for i, l := range n.links {
		if l == nil {
			continue
		}
		if l.dirty {
			return nodeWire{}, errors.AssertionFailedf("amt: encoding node with unflushed child %d", i)
		}
		w.Bmap[i/8] |= 1 << (i % 8)
		w.Links = append(w.Links, l.cid.Bytes())
	}
	return w, nil
}

func fromWire(w nodeWire, width int, leaf bool) (*node, error) {
	if len(w.Bmap) != bmapLen(width) {
		return nil, errors.Wrapf(ErrMalformedNode, "bitmap is %d bytes, want %d", len(w.Bmap), bmapLen(width))
	}
	set := 0
	for i, b := range w.Bmap {
		if i == len(w.Bmap)-1 && width%8 != 0 && b>>(width%8) != 0 {
			return nil, errors.Wrap(ErrMalformedNode, "bitmap has bits past the node width")
		}
		set += bits.OnesCount8(b)
	}

	n := newNode(width, leaf)
	if leaf {
		if len(w.Links) != 0 || len(w.Values) != set {
			return nil, errors.Wrapf(ErrMalformedNode, "leaf has %d links and %d values for %d slots", len(w.Links), len(w.Values), set)
		}
		k := 0
		for i := 0; i < width; i++ {
			if w.Bmap[i/8]&(1<<(i%8)) != 0 {
				v := w.Values[k]
				if v == nil {
					v = []byte{}
				}
				n.values[i] = v
				k++
			}
		}
		return n, nil
	}

	if len(w.Values) != 0 || len(w.Links) != set || set == 0 {
		return nil, errors.Wrapf(ErrMalformedNode, "interior node has %d links and %d values for %d slots", len(w.Links), len(w.Values), set)
	}
	k := 0
	for i := 0; i < width; i++ {
		if w.Bmap[i/8]&(1<<(i%8)) != 0 {
			c, err := cid.Cast(w.Links[k])
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedNode, "link %d: %v", i, err)
			}
			n.links[i] = &link{cid: c}
			k++
		}
	}
	return n, nil
}

func bmapLen(width int) int {
	return (width + 7) / 8
}
