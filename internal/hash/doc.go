// Package hash provides the CRC32-Castagnoli checksum used for block frames
// and S3 upload integrity headers.
//
// Go's hash/crc32 uses SSE4.2 or the ARM CRC extension when available.
//
//	sum := hash.CRC32C(frame)
//
//	h := hash.NewCRC32C()
//	h.Write(header)
//	h.Write(payload)
//	sum := h.Sum32()
package hash
