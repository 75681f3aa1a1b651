// Package encode writes packed universe rows into a video container.
//
// The core conversion hands each committed state snapshot to a
// [FrameSink]: one buffer of row-major gray8 pixels becomes one video
// frame held for its duration. [MKVWriter] muxes frames losslessly into
// a Matroska stream; [FFV1Sink] pipes that stream through an external
// ffmpeg process for FFV1 compression.
package encode

import (
	"errors"
	"fmt"
)

// Sentinel errors for sink lifecycle and geometry mismatches.
var (
	ErrClosed      = errors.New("encode: sink is closed")
	ErrBadGeometry = errors.New("encode: frame geometry does not match sink")
	ErrBadDuration = errors.New("encode: non-positive frame duration")
	ErrShortBuffer = errors.New("encode: row buffer shorter than stride*rows")
)

// FrameSink consumes packed row buffers. Each WriteFrame call produces
// exactly one output video frame of rows height and stride width, held
// for durationMS. Close finalizes the container and must be called
// after the last frame; it is safe to call more than once.
type FrameSink interface {
	WriteFrame(buf []byte, stride, rows int, durationMS int64) error
	Close() error
}

// checkFrame validates one WriteFrame call against the sink's fixed
// geometry.
func checkFrame(buf []byte, stride, rows, wantStride, wantRows int, durationMS int64) error {
	if stride != wantStride || rows != wantRows {
		return fmt.Errorf("%w: got %dx%d, sink is %dx%d", ErrBadGeometry, stride, rows, wantStride, wantRows)
	}
	if len(buf) < stride*rows {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrShortBuffer, len(buf), stride, rows)
	}
	if durationMS <= 0 {
		return fmt.Errorf("%w: %dms", ErrBadDuration, durationMS)
	}
	return nil
}
