// Package compress frames blocks for storage in a blob store.
//
// A frame is a 13-byte header followed by the payload:
//
//	[type u8][uncompressed size u32][payload size u32][crc32c u32][payload]
//
// The checksum covers the uncompressed bytes, so a frame that decodes
// without error is byte-for-byte the block that was encoded. Payloads that
// do not compress well are stored uncompressed regardless of the requested
// type.
package compress
