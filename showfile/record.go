package showfile

import (
	"strconv"
	"strings"
	"unicode"
)

// Header is the literal marker line of a V1 OLA showfile.
const Header = "OLA Show"

// recordKind classifies one line of a showfile.
type recordKind int

const (
	recordBlank recordKind = iota
	recordHeader
	recordUniverseData
	recordDuration
	recordEOF
)

// record is the decoded form of a single showfile line.
type record struct {
	kind     recordKind
	universe uint32
	channels ChannelRow
	duration int64
}

// classify decodes one trimmed line. The header marker is recognized
// wherever it appears in the stream, not only on the first line.
func classify(line string, rec *record) error {
	if line == "" {
		rec.kind = recordBlank
		return nil
	}
	if line == Header {
		rec.kind = recordHeader
		return nil
	}

	token, rest := splitToken(line)
	n, err := strconv.ParseUint(token, 10, 32)
	if err != nil {
		return ErrMalformedInteger
	}

	if rest == "" {
		rec.kind = recordDuration
		rec.duration = int64(n)
		return nil
	}

	if err := DecodeChannels(rest, &rec.channels); err != nil {
		return err
	}
	rec.kind = recordUniverseData
	rec.universe = uint32(n)
	return nil
}

// splitToken splits a line at its first run of whitespace into a
// leading token and the remainder.
func splitToken(s string) (token, rest string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}
