package gelf

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression selects the algorithm applied to a serialized message before
// it is handed to the chunker.
type Compression uint8

const (
	CompressNone Compression = iota
	CompressGzip
	CompressZlib
)

// DefaultCompression is the algorithm used when none is configured.
const DefaultCompression = CompressGzip

// ParseCompression maps an algorithm name to a Compression.
// Unknown names map to CompressNone.
func ParseCompression(algorithm string) Compression {
	switch algorithm {
	case "gzip":
		return CompressGzip
	case "zlib":
		return CompressZlib
	default:
		return CompressNone
	}
}

// Compress serializes the wire message and applies the selected algorithm
// with default settings. Failures are per-record and never abort the
// process.
func (c Compression) Compress(message *WireMessage) ([]byte, error) {
	doc, err := message.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode gelf document: %w", err)
	}
	return c.CompressBytes(doc)
}

// CompressBytes applies the selected algorithm to an already serialized
// payload.
func (c Compression) CompressBytes(payload []byte) ([]byte, error) {
	switch c {
	case CompressNone:
		return payload, nil

	case CompressGzip:
		var buf bytes.Buffer
		enc := gzip.NewWriter(&buf)
		if _, err := enc.Write(payload); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		return buf.Bytes(), nil

	case CompressZlib:
		var buf bytes.Buffer
		enc := zlib.NewWriter(&buf)
		if _, err := enc.Write(payload); err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("zlib compress: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unknown compression algorithm %d", c)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressGzip:
		return "gzip"
	case CompressZlib:
		return "zlib"
	default:
		return "none"
	}
}
