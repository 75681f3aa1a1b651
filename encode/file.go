package encode

import (
	"bufio"
	"fmt"
	"os"
)

// FileSink writes the lossless Matroska stream straight to a file.
type FileSink struct {
	f      *os.File
	buf    *bufio.Writer
	mkv    *MKVWriter
	closed bool
}

// NewFileSink creates path (truncating any existing file) and prepares
// it for stride x rows frames.
func NewFileSink(path string, stride, rows int) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	buf := bufio.NewWriterSize(f, 1<<16)

	mkv, err := NewMKVWriter(buf, stride, rows)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return &FileSink{f: f, buf: buf, mkv: mkv}, nil
}

func (s *FileSink) WriteFrame(buf []byte, stride, rows int, durationMS int64) error {
	return s.mkv.WriteFrame(buf, stride, rows, durationMS)
}

// Close flushes buffered container data and closes the file. Close is
// idempotent; only the first call reports flush errors.
func (s *FileSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.mkv.Close()
	if ferr := s.buf.Flush(); err == nil {
		err = ferr
	}
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}
