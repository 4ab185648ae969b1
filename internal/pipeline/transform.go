package pipeline

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/oicur0t/gelfwd/internal/config"
	"github.com/oicur0t/gelfwd/pkg/gelf"
)

// journald fields consumed directly or dropped as noise; everything else
// becomes GELF metadata.
var ignoredFields = map[string]struct{}{
	"MESSAGE":              {},
	"_HOSTNAME":            {},
	"__REALTIME_TIMESTAMP": {},
	"PRIORITY":             {},
	"__CURSOR":             {},
	"_BOOT_ID":             {},
	"_MACHINE_ID":          {},
	"_SYSTEMD_CGROUP":      {},
	"_SYSTEMD_SLICE":       {},
}

// pattern in free-text messages: 'level=some_log_level', first match wins
var levelPattern = regexp.MustCompile(`(?i)level=([a-zA-Z]+)`)

var parsers fastjson.ParserPool

// Transform decodes one raw record, applies level filtering, maps it to a
// GELF message and returns the serialized, compressed document. It performs
// no I/O; all sending happens at the loop.
func Transform(raw string, cfg *config.Watched) ([]byte, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.Parse(raw)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	record, err := v.Object()
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	// absolutely mandatory field
	msgField := record.Get("MESSAGE")
	if msgField == nil {
		return nil, ErrNoMessage
	}
	shortMsg := fieldText(msgField)

	host := "undefined"
	if h := record.Get("_HOSTNAME"); h != nil {
		host = fieldText(h)
	}

	// filter by message level
	if cfg.LogLevelMessage != nil {
		if msgLevel, ok := messageLevelOf(shortMsg); ok {
			if cfg.LogLevelMessage.MoreSevere(msgLevel) {
				return nil, ErrInsufficientLogLevel
			}
		}
	}

	msg := gelf.NewMessage(host, shortMsg)

	// filter by system log level
	if prio := record.Get("PRIORITY"); prio != nil {
		if num, ok := priorityCode(prio); ok {
			level := gelf.SystemLevelFromNum(num)
			if cfg.LogLevelSystem.MoreSevere(level) {
				return nil, ErrInsufficientLogLevel
			}
			msg.SetLevel(level)
		}
	}

	// systemd reports microseconds as an integer; graylog wants
	// fractional seconds
	if ts := record.Get("__REALTIME_TIMESTAMP"); ts != nil {
		if micros, ok := timestampMicros(ts); ok {
			msg.SetTimestamp(micros / 1e6)
		}
	}

	// remaining fields ride along as metadata, values untouched
	record.Visit(func(key []byte, value *fastjson.Value) {
		k := string(key)
		if _, ignored := ignoredFields[k]; ignored {
			return
		}
		msg.SetMetadata(k, json.RawMessage(value.MarshalTo(nil)))
	})

	wire := gelf.NewWireMessage(msg, cfg.Team, cfg.Service)
	return cfg.Compression.Compress(wire)
}

// fieldText returns the text of a string field, or the raw JSON text for
// anything else.
func fieldText(v *fastjson.Value) string {
	if v.Type() == fastjson.TypeString {
		sb, _ := v.StringBytes()
		return string(sb)
	}
	return v.String()
}

// messageLevelOf extracts an application level from free-text message
// content. Unknown level words map to the least severe Debug; receivers
// depend on this lax matching.
func messageLevelOf(msg string) (gelf.MessageLevel, bool) {
	m := levelPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	return gelf.ParseMessageLevel(strings.ToLower(m[1])), true
}

// priorityCode reads the syslog priority, which journald emits as a quoted
// string. Values that don't parse as an unsigned byte are skipped.
func priorityCode(v *fastjson.Value) (uint8, bool) {
	switch v.Type() {
	case fastjson.TypeString:
		sb, _ := v.StringBytes()
		num, err := strconv.ParseUint(string(sb), 10, 8)
		if err != nil {
			return 0, false
		}
		return uint8(num), true

	case fastjson.TypeNumber:
		num, err := v.Uint64()
		if err != nil || num > 255 {
			return 0, false
		}
		return uint8(num), true

	default:
		return 0, false
	}
}

// timestampMicros reads __REALTIME_TIMESTAMP as microseconds since epoch,
// tolerating both numeric and quoted-string encodings.
func timestampMicros(v *fastjson.Value) (float64, bool) {
	switch v.Type() {
	case fastjson.TypeNumber:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true

	case fastjson.TypeString:
		sb, _ := v.StringBytes()
		f, err := strconv.ParseFloat(string(sb), 64)
		if err != nil {
			return 0, false
		}
		return f, true

	default:
		return 0, false
	}
}
