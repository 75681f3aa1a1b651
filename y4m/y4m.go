// Package y4m reads yuv4mpeg2 streams carrying single-plane grayscale
// video, as produced by "ffmpeg -f yuv4mpegpipe -pix_fmt gray". It
// implements only what the video-to-showfile path needs: the stream
// header and raw FRAME payloads.
package y4m

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrNotY4M      = errors.New("y4m: missing YUV4MPEG2 signature")
	ErrNotGray     = errors.New("y4m: stream is not single-plane grayscale")
	ErrBadHeader   = errors.New("y4m: malformed stream header")
	ErrShortFrame  = errors.New("y4m: truncated frame payload")
	ErrMissingMark = errors.New("y4m: missing FRAME marker")
)

const signature = "YUV4MPEG2"

// Stream decodes one yuv4mpeg2 stream. Frames are returned as raw
// width*height gray8 buffers.
type Stream struct {
	Width  int
	Height int
	FPSNum int
	FPSDen int

	br    *bufio.Reader
	frame []byte
}

// NewStream reads the stream header from r and validates that the
// stream is mono. The reader is borrowed for the stream's lifetime.
func NewStream(r io.Reader) (*Stream, error) {
	br := bufio.NewReaderSize(r, 1<<16)

	line, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	line = strings.TrimSuffix(line, "\n")

	fields := strings.Split(line, " ")
	if fields[0] != signature {
		return nil, ErrNotY4M
	}

	s := &Stream{FPSNum: 25, FPSDen: 1, br: br}
	colour := ""
	for _, f := range fields[1:] {
		if f == "" {
			continue
		}
		tag, val := f[0], f[1:]
		switch tag {
		case 'W':
			if s.Width, err = strconv.Atoi(val); err != nil {
				return nil, fmt.Errorf("%w: width %q", ErrBadHeader, val)
			}
		case 'H':
			if s.Height, err = strconv.Atoi(val); err != nil {
				return nil, fmt.Errorf("%w: height %q", ErrBadHeader, val)
			}
		case 'F':
			num, den, ok := strings.Cut(val, ":")
			if !ok {
				return nil, fmt.Errorf("%w: frame rate %q", ErrBadHeader, val)
			}
			if s.FPSNum, err = strconv.Atoi(num); err != nil {
				return nil, fmt.Errorf("%w: frame rate %q", ErrBadHeader, val)
			}
			if s.FPSDen, err = strconv.Atoi(den); err != nil {
				return nil, fmt.Errorf("%w: frame rate %q", ErrBadHeader, val)
			}
		case 'C':
			colour = val
		case 'I', 'A', 'X':
			// Interlacing, aspect, comments: irrelevant for row data.
		}
	}

	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadHeader, s.Width, s.Height)
	}
	if colour != "mono" {
		return nil, fmt.Errorf("%w: colourspace %q", ErrNotGray, colour)
	}
	if s.FPSNum <= 0 || s.FPSDen <= 0 {
		return nil, fmt.Errorf("%w: frame rate %d:%d", ErrBadHeader, s.FPSNum, s.FPSDen)
	}

	s.frame = make([]byte, s.Width*s.Height)
	return s, nil
}

// NextFrame returns the next frame's pixel data. The buffer is reused
// between calls. io.EOF marks a clean end of stream.
func (s *Stream) NextFrame() ([]byte, error) {
	line, err := s.br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingMark, err)
	}
	// Frame headers may carry parameters after the marker.
	if line != "FRAME\n" && !strings.HasPrefix(line, "FRAME ") {
		return nil, fmt.Errorf("%w: got %q", ErrMissingMark, strings.TrimSuffix(line, "\n"))
	}

	if _, err := io.ReadFull(s.br, s.frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortFrame, err)
	}
	return s.frame, nil
}

// FrameDurationMS converts the stream's frame rate into a per-frame
// hold time in milliseconds, rounded to nearest and at least 1.
func (s *Stream) FrameDurationMS() int64 {
	ms := (1000*int64(s.FPSDen) + int64(s.FPSNum)/2) / int64(s.FPSNum)
	if ms < 1 {
		ms = 1
	}
	return ms
}
