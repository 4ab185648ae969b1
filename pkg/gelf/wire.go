package gelf

import (
	"encoding/json"
	"strings"
	"time"
)

// Version is the GELF spec version stamped on every document.
const Version = "1.1"

// wrapping quote/space characters stripped from host and short_message
const trimmedSymbols = `" `

// WireMessage is a fully assembled GELF message: one Message plus the
// contextual team/service fields supplied by configuration at encode time.
// It is the only type that knows the on-wire field layout. Construct,
// encode, discard.
type WireMessage struct {
	message *Message
	team    string
	service string
}

// NewWireMessage wraps msg with the optional team and service context.
// Empty strings mean the field is absent from the encoded document.
func NewWireMessage(msg *Message, team, service string) *WireMessage {
	return &WireMessage{
		message: msg,
		team:    team,
		service: service,
	}
}

// MarshalJSON encodes the message as a GELF/JSON document. If the message
// carries no timestamp, the current wall clock is taken here, at encode
// time, with sub-second precision.
func (w *WireMessage) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, 6+len(w.message.metadata))

	doc["version"] = Version
	doc["host"] = strings.Trim(w.message.host, trimmedSymbols)
	doc["short_message"] = strings.Trim(w.message.shortMessage, trimmedSymbols)
	doc["level"] = w.message.level.Num()

	if full, ok := w.message.FullMessage(); ok {
		doc["full_message"] = full
	}

	if ts, ok := w.message.Timestamp(); ok {
		doc["timestamp"] = ts
	} else {
		doc["timestamp"] = nowUnix()
	}

	if w.team != "" {
		doc["team"] = w.team
	}
	if w.service != "" {
		doc["service"] = w.service
	}

	for key, value := range w.message.metadata {
		doc["_"+key] = value
	}

	return json.Marshal(doc)
}

// Encode returns the GELF/JSON document bytes.
func (w *WireMessage) Encode() ([]byte, error) {
	return json.Marshal(w)
}

func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
