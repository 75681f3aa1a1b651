package showfile

import (
	"errors"
	"fmt"
)

// Sentinel errors for showfile decoding. These enable callers to
// programmatically distinguish failure modes using errors.Is.
var (
	ErrMalformedInteger     = errors.New("showfile: malformed universe number or duration")
	ErrMalformedChannelList = errors.New("showfile: channel undefined or has wrong format")
	ErrChannelOverflow      = errors.New("showfile: channel value overflow")
	ErrTooManyChannels      = errors.New("showfile: too many channels for one universe")
	ErrNoDataBeforeDuration = errors.New("showfile: duration before any universe data")
)

// LineError indicates a failure to decode a showfile line. It wraps the
// underlying error and records the line number and raw content of the
// line being decoded when the error occurred.
type LineError struct {
	Line int    // 1-based line number in the input stream
	Text string // line content after whitespace trimming
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
