package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/bigfield/internal/hash"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm of a frame.
type Type uint8

const (
	// None stores the payload as is.
	None Type = 0
	// LZ4 uses LZ4 block compression (fast, good for hot data).
	LZ4 Type = 1
	// ZSTD uses ZSTD (better ratio, good for cold data).
	ZSTD Type = 2
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

// HeaderSize is the size of the frame header:
// [type u8][uncompressed size u32][payload size u32][crc32c of uncompressed u32].
const HeaderSize = 13

// MaxFrameSize bounds the uncompressed size a frame may claim.
const MaxFrameSize = 64 << 20

var (
	// ErrCorrupt is returned for frames that cannot be decoded.
	ErrCorrupt = errors.New("compress: corrupt frame")
	// ErrChecksum is returned when the decoded payload fails its checksum.
	ErrChecksum = errors.New("compress: checksum mismatch")
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(MaxFrameSize))
}

// Encode frames data with the given compression. If compression does not
// shrink the payload below 90% of its size the frame is stored as None.
func Encode(data []byte, t Type) ([]byte, error) {
	if len(data) > MaxFrameSize {
		return nil, fmt.Errorf("compress: %d bytes exceeds frame limit", len(data))
	}

	payload, used, err := compressPayload(data, t)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, HeaderSize, HeaderSize+len(payload))
	frame[0] = byte(used)
	binary.LittleEndian.PutUint32(frame[1:], uint32(len(data)))
	binary.LittleEndian.PutUint32(frame[5:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(frame[9:], hash.CRC32C(data))
	return append(frame, payload...), nil
}

func compressPayload(data []byte, t Type) ([]byte, Type, error) {
	var compressed []byte
	switch t {
	case None:
		return data, None, nil
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, 0, err
		}
		// n == 0 means incompressible.
		compressed = buf[:n]
	case ZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, 0, err
		}
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, 0, fmt.Errorf("compress: unknown type %d", uint8(t))
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		return data, None, nil
	}
	return compressed, t, nil
}

// Decode validates a frame and returns its uncompressed payload.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorrupt, len(frame))
	}

	t := Type(frame[0])
	size := binary.LittleEndian.Uint32(frame[1:])
	payloadSize := binary.LittleEndian.Uint32(frame[5:])
	sum := binary.LittleEndian.Uint32(frame[9:])

	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: claims %d bytes", ErrCorrupt, size)
	}
	if uint64(len(frame)-HeaderSize) != uint64(payloadSize) {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrCorrupt, len(frame)-HeaderSize, payloadSize)
	}
	payload := frame[HeaderSize:]

	var out []byte
	switch t {
	case None:
		if payloadSize != size {
			return nil, fmt.Errorf("%w: stored size mismatch", ErrCorrupt)
		}
		out = payload
	case LZ4:
		out = make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		out, err = dec.DecodeAll(payload, make([]byte, 0, size))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint32(len(out)) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
	default:
		return nil, fmt.Errorf("%w: unknown type %d", ErrCorrupt, uint8(t))
	}

	if hash.CRC32C(out) != sum {
		return nil, ErrChecksum
	}
	return out, nil
}
