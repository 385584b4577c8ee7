// Package amt implements an array mapped trie over uint64 keys whose nodes
// are stored as CBOR blocks in a blockstore.Blockstore.
//
// A node has 2^bitWidth slots. Leaves hold values, interior nodes hold
// links to child blocks, and each node records its occupied slots in a
// bitmap:
//
//	node = [bitmap, [link...], [value...]]
//	root = [bitWidth, height, count, node]
//
// The trie grows in height as larger keys are set and shrinks again when
// deletions leave only the first subtree. With the default bit width of 8 a
// height of 7 covers the full uint64 key space.
package amt
