package gelf

import "fmt"

// SystemLevel is the GELF representation of an error level. GELF levels are
// equivalent to syslog severity codes (RFC 5424): lower value, more severe.
type SystemLevel uint8

const (
	LevelEmergency SystemLevel = iota
	LevelAlert
	LevelCritical
	LevelError
	LevelWarning
	LevelNotice
	LevelInformational
	LevelDebug
)

// SystemLevelFromNum maps a syslog numeric code to a SystemLevel.
// Codes above 7 clamp to Debug.
func SystemLevelFromNum(level uint8) SystemLevel {
	if level > uint8(LevelDebug) {
		return LevelDebug
	}
	return SystemLevel(level)
}

// ParseSystemLevel maps a syslog-style level name to a SystemLevel.
func ParseSystemLevel(name string) (SystemLevel, error) {
	switch name {
	case "emergency":
		return LevelEmergency, nil
	case "alert":
		return LevelAlert, nil
	case "critical":
		return LevelCritical, nil
	case "error":
		return LevelError, nil
	case "warning":
		return LevelWarning, nil
	case "notice":
		return LevelNotice, nil
	case "informational":
		return LevelInformational, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelDebug, fmt.Errorf("unknown system log level %q", name)
	}
}

// Num returns the syslog numeric code of the level.
func (l SystemLevel) Num() uint8 {
	return uint8(l)
}

// MoreSevere reports whether l is strictly more severe than other.
func (l SystemLevel) MoreSevere(other SystemLevel) bool {
	return l < other
}

func (l SystemLevel) String() string {
	switch l {
	case LevelEmergency:
		return "emergency"
	case LevelAlert:
		return "alert"
	case LevelCritical:
		return "critical"
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNotice:
		return "notice"
	case LevelInformational:
		return "info"
	default:
		return "debug"
	}
}

// MessageLevel is an application severity parsed out of free-text log
// content. It only drives log-line filtering and never reaches the wire.
type MessageLevel uint8

const (
	MsgFatal MessageLevel = iota
	MsgPanic
	MsgError
	MsgWarning
	MsgInfo
	MsgDebug
)

// ParseMessageLevel maps a level word to a MessageLevel. Unknown words map
// to the least severe Debug; receivers rely on this lax matching.
func ParseMessageLevel(name string) MessageLevel {
	switch name {
	case "fatal":
		return MsgFatal
	case "panic":
		return MsgPanic
	case "error":
		return MsgError
	case "warning":
		return MsgWarning
	case "info":
		return MsgInfo
	default:
		return MsgDebug
	}
}

// MoreSevere reports whether l is strictly more severe than other.
func (l MessageLevel) MoreSevere(other MessageLevel) bool {
	return l < other
}

func (l MessageLevel) String() string {
	switch l {
	case MsgFatal:
		return "fatal"
	case MsgPanic:
		return "panic"
	case MsgError:
		return "error"
	case MsgWarning:
		return "warning"
	case MsgInfo:
		return "info"
	default:
		return "debug"
	}
}
