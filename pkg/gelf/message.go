package gelf

import "encoding/json"

// Message is one in-flight log event on its way to a GELF collector.
//
// A Message is mutated only through its setters and belongs to a single
// record's processing; it is never shared between goroutines.
type Message struct {
	host         string
	shortMessage string
	fullMessage  string
	hasFull      bool
	timestamp    float64
	hasTimestamp bool
	level        SystemLevel
	metadata     map[string]json.RawMessage
}

// NewMessage constructs a message with the given host and short text.
// The level defaults to Alert as the GELF spec requires; the timestamp is
// left unset and filled in at encode time if nobody sets it.
func NewMessage(host, shortMessage string) *Message {
	return &Message{
		host:         host,
		shortMessage: shortMessage,
		level:        LevelAlert,
		metadata:     make(map[string]json.RawMessage),
	}
}

func (m *Message) Host() string { return m.host }

func (m *Message) ShortMessage() string { return m.shortMessage }

func (m *Message) SetShortMessage(msg string) *Message {
	m.shortMessage = msg
	return m
}

// FullMessage returns the full message text and whether it has been set.
func (m *Message) FullMessage() (string, bool) {
	return m.fullMessage, m.hasFull
}

func (m *Message) SetFullMessage(msg string) *Message {
	m.fullMessage = msg
	m.hasFull = true
	return m
}

func (m *Message) ClearFullMessage() *Message {
	m.fullMessage = ""
	m.hasFull = false
	return m
}

// Timestamp returns the timestamp in fractional seconds since epoch and
// whether it has been set.
func (m *Message) Timestamp() (float64, bool) {
	return m.timestamp, m.hasTimestamp
}

func (m *Message) SetTimestamp(ts float64) *Message {
	m.timestamp = ts
	m.hasTimestamp = true
	return m
}

func (m *Message) ClearTimestamp() *Message {
	m.timestamp = 0
	m.hasTimestamp = false
	return m
}

func (m *Message) Level() SystemLevel { return m.level }

func (m *Message) SetLevel(level SystemLevel) *Message {
	m.level = level
	return m
}

// Metadata returns the metadata value stored under key.
func (m *Message) Metadata(key string) (json.RawMessage, bool) {
	v, ok := m.metadata[key]
	return v, ok
}

// AllMetadata returns the full metadata map.
func (m *Message) AllMetadata() map[string]json.RawMessage {
	return m.metadata
}

// SetMetadata stores an arbitrary JSON value under key. The key "id" is
// reserved by the GELF protocol; setting it is a no-op and returns false.
func (m *Message) SetMetadata(key string, value json.RawMessage) bool {
	if key == "id" {
		return false
	}
	m.metadata[key] = value
	return true
}
