package binary

import (
	"bytes"
	"compress/gzip"
	"hash/crc32"
	"io"

	"github.com/DataDog/zstd"

	"github.com/cyber-boost/helix-sub000/internal/herr"
)

// checksum computes the format's 32-bit integrity check: CRC-32 with the
// fixed IEEE polynomial and zero seed, same as the stdlib default table.
func checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// compressPayload encodes raw with the requested compression kind.
// CompressionNone returns raw unchanged.
func compressPayload(raw []byte, kind CompressionKind) ([]byte, error) {
	switch kind {
	case CompressionNone:
		return raw, nil
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, herr.IoErr(err, "gzip compression failed")
		}
		if err := w.Close(); err != nil {
			return nil, herr.IoErr(err, "gzip compression failed")
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		out, err := zstd.Compress(nil, raw)
		if err != nil {
			return nil, herr.IoErr(err, "zstd compression failed")
		}
		return out, nil
	default:
		return nil, herr.New(herr.InvalidInput, "unknown compression kind")
	}
}

// decompressPayload is the inverse of compressPayload. size is the
// known uncompressed length, used to presize the Zstd output buffer.
func decompressPayload(data []byte, kind CompressionKind, size uint32) ([]byte, error) {
	switch kind {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, herr.CorruptErr(0, "malformed gzip section payload")
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, herr.CorruptErr(0, "truncated gzip section payload")
		}
		return out, nil
	case CompressionZstd:
		out, err := zstd.Decompress(make([]byte, 0, size), data)
		if err != nil {
			return nil, herr.CorruptErr(0, "malformed zstd section payload")
		}
		return out, nil
	default:
		return nil, herr.CorruptErr(0, "unknown compression kind tag")
	}
}
