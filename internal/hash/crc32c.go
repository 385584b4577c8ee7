package hash

import (
	"encoding/binary"
	"hash"
	"hash/crc32"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// CRC32CBigEndian returns the checksum as 4 big-endian bytes, the form S3
// expects in its checksum headers.
func CRC32CBigEndian(data []byte) []byte {
	return binary.BigEndian.AppendUint32(nil, CRC32C(data))
}
