package pipeline

import "errors"

// Per-record outcomes the loop treats as non-fatal.
var (
	// ErrInsufficientLogLevel marks records filtered out by a level
	// threshold. An expected, frequent outcome, never logged as noise.
	ErrInsufficientLogLevel = errors.New("insufficient log level")

	// ErrNoMessage marks records lacking the mandatory MESSAGE field.
	ErrNoMessage = errors.New("no message field found")
)

// ParseError wraps a JSON decoding failure of one raw record.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "record parsing: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
