package encode

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmxio/olavc/universe"
)

func TestFileSink(t *testing.T) {
	t.Parallel()

	const stride, rows = universe.RowWidth, 1
	path := filepath.Join(t.TempDir(), "show.mkv")

	s, err := NewFileSink(path, stride, rows)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	if err := s.WriteFrame(testFrame(stride, rows, 7), stride, rows, 100); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		t.Fatal("output file does not start with the EBML magic")
	}
}
