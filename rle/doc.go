// Package rle implements a run-length encoded bitfield over a uint64 domain.
//
// A Bitfield is an ordered list of half-open set ranges. Mutations keep the
// list normalized (sorted, non-overlapping, non-adjacent), so the number of
// ranges is exactly the number of set runs.
//
// # Wire Format
//
// Bitfields serialize to RLE+, the format used by Filecoin actors:
//
//	bit stream, least significant bit of each byte first
//	[version: 2 bits = 00][first run value: 1 bit][run lengths...]
//
//	run of length 1        1
//	run of length 2..15    01 + 4-bit length
//	run of length >= 16    00 + unsigned LEB128 length
//
// Runs alternate between unset and set, starting with the value given in the
// header. The trailing unset run is never written and trailing zero bytes are
// trimmed, which makes the encoding canonical: decoders reject every input
// that a re-encode would not reproduce byte for byte.
package rle
