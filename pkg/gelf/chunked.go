package gelf

import (
	"crypto/rand"
	"fmt"
)

// ChunkSize is the maximum chunk body carried by one UDP datagram.
type ChunkSize int

const (
	// ChunkSizeLAN suits larger-MTU local paths.
	ChunkSizeLAN ChunkSize = 8154
	// ChunkSizeWAN stays under typical WAN path MTUs.
	ChunkSizeWAN ChunkSize = 1420
)

// MaxChunks is the hard ceiling of the GELF chunking protocol: the total
// count travels in a single byte and collectors reject anything above 128.
const MaxChunks = 128

// chunk header: 2-byte magic, 8-byte message id, 1-byte seq, 1-byte total
var chunkMagic = [2]byte{0x1e, 0x0f}

const (
	messageIDLen   = 8
	chunkHeaderLen = 2 + messageIDLen + 1 + 1
)

// ChunkedMessage is a compressed GELF payload split into size-bounded UDP
// datagrams sharing one random message id. A payload that fits in a single
// chunk body travels as the raw payload without a chunk header, which is
// what collectors expect for unchunked messages.
type ChunkedMessage struct {
	id        [messageIDLen]byte
	datagrams [][]byte
}

// NewChunkedMessage splits payload into datagrams bounded by size. It fails
// if the payload would need more than MaxChunks chunks; no truncated or
// partial message is ever produced.
func NewChunkedMessage(size ChunkSize, payload []byte) (*ChunkedMessage, error) {
	body := int(size)
	if body <= 0 {
		return nil, fmt.Errorf("invalid chunk size %d", size)
	}

	if len(payload) <= body {
		return &ChunkedMessage{datagrams: [][]byte{payload}}, nil
	}

	total := (len(payload) + body - 1) / body
	if total > MaxChunks {
		return nil, fmt.Errorf("message of %d bytes needs %d chunks, protocol maximum is %d",
			len(payload), total, MaxChunks)
	}

	cm := &ChunkedMessage{datagrams: make([][]byte, 0, total)}
	if _, err := rand.Read(cm.id[:]); err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	for seq := 0; seq < total; seq++ {
		start := seq * body
		end := start + body
		if end > len(payload) {
			end = len(payload)
		}

		datagram := make([]byte, 0, chunkHeaderLen+end-start)
		datagram = append(datagram, chunkMagic[0], chunkMagic[1])
		datagram = append(datagram, cm.id[:]...)
		datagram = append(datagram, byte(seq), byte(total))
		datagram = append(datagram, payload[start:end]...)
		cm.datagrams = append(cm.datagrams, datagram)
	}

	return cm, nil
}

// ID returns the shared message identifier. It is all zeroes for
// single-chunk messages, which carry no header.
func (cm *ChunkedMessage) ID() [messageIDLen]byte {
	return cm.id
}

// Len returns the total chunk count.
func (cm *ChunkedMessage) Len() int {
	return len(cm.datagrams)
}

// Datagrams returns the ready-to-send datagrams in sequence order. Chunks
// are precomputed, so the slice can be walked more than once.
func (cm *ChunkedMessage) Datagrams() [][]byte {
	return cm.datagrams
}
