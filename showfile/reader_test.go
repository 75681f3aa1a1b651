package showfile

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, input string) []Frame {
	t.Helper()

	r := NewReader(strings.NewReader(input))
	var frames []Frame
	for {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return frames
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		frames = append(frames, f)
	}
}

func TestReaderSingleFrame(t *testing.T) {
	t.Parallel()

	frames := readAll(t, "0 10,20,30\n5\n")
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	f := frames[0]
	if f.Universe != 0 || f.Duration != 5 {
		t.Fatalf("frame = universe %d duration %d, want universe 0 duration 5", f.Universe, f.Duration)
	}
	want := ChannelRow{10, 20, 30}
	if f.Channels != want {
		t.Fatalf("channels = %v..., want 10,20,30,0...", f.Channels[:4])
	}
}

func TestReaderSkipsHeaderAndBlanks(t *testing.T) {
	t.Parallel()

	input := "OLA Show\n\n1 5\n\nOLA Show\n100\n"
	frames := readAll(t, input)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Universe != 1 || frames[0].Duration != 100 {
		t.Fatalf("frame = %+v, want universe 1 duration 100", frames[0])
	}
}

func TestReaderHeaderAcceptedMidStream(t *testing.T) {
	t.Parallel()

	// The header marker is not position-sensitive; it is skipped even
	// between a universe-data line and its duration line.
	frames := readAll(t, "2 1\nOLA Show\n7\n")
	if len(frames) != 1 || frames[0].Universe != 2 || frames[0].Duration != 7 {
		t.Fatalf("frames = %+v, want one frame for universe 2 with duration 7", frames)
	}
}

func TestReaderFinalFrameSentinel(t *testing.T) {
	t.Parallel()

	// Stream ends after a universe-data line with no duration line.
	frames := readAll(t, "0 1,2\n10\n3 4,5\n")
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[1].Universe != 3 || frames[1].Duration != UnknownDuration {
		t.Fatalf("final frame = %+v, want universe 3 with UnknownDuration", frames[1])
	}
}

func TestReaderCleanEOF(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("OLA Show\n\n"))
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next on empty show = %v, want io.EOF", err)
	}
	// Subsequent calls keep reporting EOF.
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("second Next = %v, want io.EOF", err)
	}
}

func TestReaderDurationBeforeData(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("7\n"))
	_, err := r.Next()
	if !errors.Is(err, ErrNoDataBeforeDuration) {
		t.Fatalf("Next = %v, want ErrNoDataBeforeDuration", err)
	}

	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("error %v does not carry line context", err)
	}
	if le.Line != 1 || le.Text != "7" {
		t.Fatalf("line context = %d %q, want 1 %q", le.Line, le.Text, "7")
	}
}

func TestReaderLastDataWinsBeforeDuration(t *testing.T) {
	t.Parallel()

	// Two universe-data lines before one duration line: only the last
	// one is kept. Load-bearing behavior, do not "fix".
	frames := readAll(t, "0 1\n1 2\n50\n")
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Universe != 1 || frames[0].Channels[0] != 2 {
		t.Fatalf("frame = %+v, want the second universe-data line", frames[0])
	}
}

func TestReaderErrorContext(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("0 1,2\n5\nbogus line here\n"))
	if _, err := r.Next(); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	_, err := r.Next()
	if !errors.Is(err, ErrMalformedInteger) {
		t.Fatalf("Next = %v, want ErrMalformedInteger", err)
	}
	var le *LineError
	if !errors.As(err, &le) || le.Line != 3 {
		t.Fatalf("error %v, want LineError for line 3", err)
	}
}

func TestReaderZeroDurationFrames(t *testing.T) {
	t.Parallel()

	// Zero durations are legal at this layer; the state table decides
	// whether they produce output.
	frames := readAll(t, "0 1\n0\n1 2\n0\n1 3\n25\n")
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	if frames[0].Duration != 0 || frames[1].Duration != 0 || frames[2].Duration != 25 {
		t.Fatalf("durations = %d,%d,%d, want 0,0,25",
			frames[0].Duration, frames[1].Duration, frames[2].Duration)
	}
}
