package gelf

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompression(t *testing.T) {
	assert.Equal(t, CompressGzip, ParseCompression("gzip"))
	assert.Equal(t, CompressZlib, ParseCompression("zlib"))
	assert.Equal(t, CompressNone, ParseCompression("none"))
	// unknown names fall back to no compression
	assert.Equal(t, CompressNone, ParseCompression("zstd"))
}

func TestDefaultCompressionIsGzip(t *testing.T) {
	assert.Equal(t, CompressGzip, DefaultCompression)
}

func decompress(t *testing.T, c Compression, payload []byte) []byte {
	t.Helper()

	var r io.Reader
	var err error
	switch c {
	case CompressGzip:
		r, err = gzip.NewReader(bytes.NewReader(payload))
	case CompressZlib:
		r, err = zlib.NewReader(bytes.NewReader(payload))
	default:
		r = bytes.NewReader(payload)
	}
	require.NoError(t, err)

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestCompressionRoundTrip(t *testing.T) {
	original := []byte(`{"version":"1.1","host":"h1","short_message":"hello"}`)

	for _, c := range []Compression{CompressNone, CompressGzip, CompressZlib} {
		t.Run(c.String(), func(t *testing.T) {
			compressed, err := c.CompressBytes(original)
			require.NoError(t, err)
			assert.Equal(t, original, decompress(t, c, compressed))
		})
	}
}

func TestCompressWireMessage(t *testing.T) {
	msg := NewMessage("h1", "hello")
	wire := NewWireMessage(msg, "", "")

	compressed, err := CompressGzip.Compress(wire)
	require.NoError(t, err)

	// gzip magic header
	require.GreaterOrEqual(t, len(compressed), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, compressed[:2])

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(decompress(t, CompressGzip, compressed), &doc))
	assert.Equal(t, "h1", doc["host"])
	assert.Equal(t, "hello", doc["short_message"])
}
