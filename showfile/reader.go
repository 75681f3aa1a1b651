// Package showfile decodes V1 OLA showfile recordings: a text log of
// timestamped per-universe DMX channel snapshots.
//
// The central type is [Reader], which reads lines from an [io.Reader]
// and assembles them into [Frame] updates. Channel lists are decoded by
// [DecodeChannels], which implements the format's fixed-width numeric
// tokenization (values are at most three digits, separators optional).
package showfile

import (
	"bufio"
	"io"
	"strings"
)

// UnknownDuration marks the final frame of a stream whose hold time was
// never recorded. Callers substitute their own duration before use.
const UnknownDuration int64 = -1

// Frame is one fully assembled showfile record: a universe's new
// channel values and the time the resulting state is held before the
// next change.
type Frame struct {
	Universe uint32
	Channels ChannelRow

	// Duration is the hold time in milliseconds, or UnknownDuration
	// when the stream ended before a duration line was seen.
	Duration int64
}

// Reader assembles frames from a showfile record stream. It reads one
// line at a time and is strictly single-pass; the underlying reader is
// borrowed for the lifetime of the Reader.
//
// The reader is deliberately lenient about the header marker: the
// "OLA Show" line is skipped wherever it appears, not only at the top
// of the file.
type Reader struct {
	sc   *bufio.Scanner
	line int
	last string // trimmed content of the most recent line, for errors
}

// Showfile lines top out around 2KB (512 three-digit values plus
// separators), but give malformed input generous headroom.
const maxLineBytes = 1024 * 1024

// NewReader creates a Reader decoding frames from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	return &Reader{sc: sc}
}

// Next returns the next fully assembled frame. It returns io.EOF when
// the stream ends cleanly with no pending universe data; when the
// stream ends after a universe-data line with no following duration
// line, the pending frame is returned with Duration set to
// UnknownDuration.
//
// When several universe-data lines occur before a single duration
// line, only the last one is returned and the earlier ones are
// discarded. The format intends one duration line per universe-data
// line; the omission is not diagnosed.
func (r *Reader) Next() (Frame, error) {
	var (
		f       Frame
		hasData bool
		rec     record
	)

	for {
		kind, err := r.nextRecord(&rec)
		if err != nil {
			return Frame{}, err
		}

		switch kind {
		case recordBlank, recordHeader:
			// Skipped unconditionally.

		case recordUniverseData:
			f.Universe = rec.universe
			f.Channels = rec.channels
			hasData = true

		case recordDuration:
			if !hasData {
				return Frame{}, r.lineError(ErrNoDataBeforeDuration)
			}
			f.Duration = rec.duration
			return f, nil

		case recordEOF:
			if hasData {
				f.Duration = UnknownDuration
				return f, nil
			}
			return Frame{}, io.EOF
		}
	}
}

// nextRecord reads and classifies one line. At end of input it reports
// recordEOF rather than an error.
func (r *Reader) nextRecord(rec *record) (recordKind, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return recordEOF, err
		}
		rec.kind = recordEOF
		return recordEOF, nil
	}
	r.line++
	r.last = strings.TrimSpace(r.sc.Text())

	if err := classify(r.last, rec); err != nil {
		return recordEOF, r.lineError(err)
	}
	return rec.kind, nil
}

func (r *Reader) lineError(err error) error {
	return &LineError{Line: r.line, Text: r.last, Err: err}
}
