// Copyright 2026 The Fotoline Authors
// SPDX-License-Identifier: Apache-2.0

package mediacache

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies how a cached entry's bytes are stored on
// disk. Tags are recorded in the cache index — changing the values
// breaks existing caches.
type CompressionTag uint8

const (
	// CompressionNone stores bytes as fetched. The common case: JPEG,
	// PNG, and WebP payloads are already entropy-coded and recompression
	// only burns CPU.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 stores LZ4 block-compressed bytes. Used for
	// payloads the probe finds mildly compressible, typically BMP or
	// uncompressed TIFF served by misconfigured hosts.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd stores zstd-compressed bytes (default level).
	// Used for highly compressible payloads such as SVG text.
	CompressionZstd CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// zstd encoder and decoder are shared; both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("mediacache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("mediacache: zstd decoder initialization failed: " + err.Error())
	}
}

// imageMagics are prefixes of formats that are already entropy-coded.
// Probing them is pointless, so storage skips straight to
// CompressionNone.
var imageMagics = [][]byte{
	{0xFF, 0xD8, 0xFF},    // JPEG
	{0x89, 'P', 'N', 'G'}, // PNG
	{'G', 'I', 'F', '8'},  // GIF
	{'R', 'I', 'F', 'F'},  // WebP (RIFF container)
}

func alreadyCompressed(data []byte) bool {
	for _, magic := range imageMagics {
		if bytes.HasPrefix(data, magic) {
			return true
		}
	}
	// ISO BMFF (AVIF, HEIC): "ftyp" at offset 4.
	return len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp"))
}

// compress picks a storage encoding for data: known image formats are
// stored raw, everything else is probed with zstd and stored with the
// cheapest tag that actually shrinks it.
func compress(data []byte) ([]byte, CompressionTag) {
	if len(data) == 0 || alreadyCompressed(data) {
		return data, CompressionNone
	}

	compressed := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(compressed))
	switch {
	case ratio >= 1.5:
		return compressed, CompressionZstd
	case ratio >= 1.1:
		if lz4Data, err := compressLZ4(data); err == nil {
			return lz4Data, CompressionLZ4
		}
		return compressed, CompressionZstd
	default:
		return data, CompressionNone
	}
}

// decompress restores entry bytes. uncompressedSize must match the
// original length exactly; a mismatch means index corruption.
func decompress(stored []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(stored) != uncompressedSize {
			return nil, fmt.Errorf("mediacache: raw entry is %d bytes, index says %d", len(stored), uncompressedSize)
		}
		return stored, nil

	case CompressionLZ4:
		destination := make([]byte, uncompressedSize)
		read, err := lz4.UncompressBlock(stored, destination)
		if err != nil {
			return nil, fmt.Errorf("mediacache: lz4 decompress: %w", err)
		}
		if read != uncompressedSize {
			return nil, fmt.Errorf("mediacache: lz4 entry is %d bytes, index says %d", read, uncompressedSize)
		}
		return destination, nil

	case CompressionZstd:
		result, err := zstdDecoder.DecodeAll(stored, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("mediacache: zstd decompress: %w", err)
		}
		if len(result) != uncompressedSize {
			return nil, fmt.Errorf("mediacache: zstd entry is %d bytes, index says %d", len(result), uncompressedSize)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("mediacache: unknown compression tag %d", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("mediacache: lz4 compress: %w", err)
	}
	if written == 0 || written >= len(data) {
		return nil, fmt.Errorf("mediacache: data is incompressible")
	}
	return destination[:written], nil
}
