package gelf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeDoc(t *testing.T, w *WireMessage) map[string]json.RawMessage {
	t.Helper()
	raw, err := w.Encode()
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func str(t *testing.T, doc map[string]json.RawMessage, key string) string {
	t.Helper()
	raw, ok := doc[key]
	require.True(t, ok, "field %q missing", key)
	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	return s
}

func TestWireMessageRoundTrip(t *testing.T) {
	msg := NewMessage("h1", "disk full")
	msg.SetLevel(LevelError)
	msg.SetTimestamp(1692882143.123456)
	msg.SetMetadata("unit", json.RawMessage(`"nginx.service"`))
	msg.SetMetadata("pid", json.RawMessage(`4242`))

	doc := decodeDoc(t, NewWireMessage(msg, "", ""))

	assert.Equal(t, "1.1", str(t, doc, "version"))
	assert.Equal(t, "h1", str(t, doc, "host"))
	assert.Equal(t, "disk full", str(t, doc, "short_message"))
	assert.JSONEq(t, "3", string(doc["level"]))
	assert.JSONEq(t, "1692882143.123456", string(doc["timestamp"]))
	assert.JSONEq(t, `"nginx.service"`, string(doc["_unit"]))
	assert.JSONEq(t, "4242", string(doc["_pid"]))

	_, hasFull := doc["full_message"]
	assert.False(t, hasFull)
	_, hasTeam := doc["team"]
	assert.False(t, hasTeam)
	_, hasService := doc["service"]
	assert.False(t, hasService)
}

func TestWireMessageTrimsWrappingQuotes(t *testing.T) {
	msg := NewMessage(`"h1"`, ` "quoted text" `)
	doc := decodeDoc(t, NewWireMessage(msg, "", ""))

	assert.Equal(t, "h1", str(t, doc, "host"))
	assert.Equal(t, "quoted text", str(t, doc, "short_message"))
}

func TestWireMessageFillsTimestampAtEncodeTime(t *testing.T) {
	msg := NewMessage("h1", "no timestamp set")

	before := float64(time.Now().UnixNano()) / float64(time.Second)
	doc := decodeDoc(t, NewWireMessage(msg, "", ""))
	after := float64(time.Now().UnixNano()) / float64(time.Second)

	var ts float64
	require.NoError(t, json.Unmarshal(doc["timestamp"], &ts))
	assert.GreaterOrEqual(t, ts, before)
	assert.LessOrEqual(t, ts, after)
}

func TestWireMessageOptionalContext(t *testing.T) {
	msg := NewMessage("h1", "short")
	msg.SetFullMessage("long")

	doc := decodeDoc(t, NewWireMessage(msg, "platform", "api"))

	assert.Equal(t, "platform", str(t, doc, "team"))
	assert.Equal(t, "api", str(t, doc, "service"))
	assert.Equal(t, "long", str(t, doc, "full_message"))
}

func TestWireMessageNeverCarriesID(t *testing.T) {
	msg := NewMessage("h1", "short")
	msg.SetMetadata("id", json.RawMessage(`"nope"`))

	doc := decodeDoc(t, NewWireMessage(msg, "", ""))

	_, hasID := doc["_id"]
	assert.False(t, hasID)
	_, hasBareID := doc["id"]
	assert.False(t, hasBareID)
}
