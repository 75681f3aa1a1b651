// Command yuv2ola converts a grayscale yuv4mpeg2 stream back into an
// OLA showfile: each video row becomes one universe-data record, each
// frame one held state. It is the inverse of olavc for streams that
// olavc produced, typically fed from ffmpeg:
//
//	ffmpeg -i show.mkv -f yuv4mpegpipe -pix_fmt gray - | yuv2ola > show.txt
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/dmxio/olavc/showfile"
	"github.com/dmxio/olavc/universe"
	"github.com/dmxio/olavc/y4m"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		slog.Error("restore failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	in, out, err := openStreams()
	if err != nil {
		return err
	}
	defer in.Close()
	defer out.Close()

	stream, err := y4m.NewStream(in)
	if err != nil {
		return err
	}
	if stream.Width < universe.RowWidth {
		return fmt.Errorf("video is %d pixels wide, need at least %d for one universe row",
			stream.Width, universe.RowWidth)
	}

	slog.Info("restoring showfile",
		"geometry", fmt.Sprintf("%dx%d", stream.Width, stream.Height),
		"universes", stream.Height,
		"frame_ms", stream.FrameDurationMS(),
	)

	w := bufio.NewWriterSize(out, 1<<16)
	if _, err := fmt.Fprintln(w, showfile.Header); err != nil {
		return err
	}

	durMS := stream.FrameDurationMS()
	frames := 0
	for {
		frame, err := stream.NextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := writeFrame(w, frame, stream.Width, stream.Height, durMS); err != nil {
			return err
		}
		frames++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	// Close explicitly so a failed final write to a file reaches the
	// exit status; the deferred Close only covers the error paths.
	if err := out.Close(); err != nil {
		return err
	}

	slog.Info("restore finished", "frames", frames)
	return nil
}

// writeFrame emits one showfile record pair per universe row. All rows
// but the last get a zero duration so the whole frame reads back as a
// single state change held for durMS.
func writeFrame(w *bufio.Writer, frame []byte, stride, rows int, durMS int64) error {
	line := make([]byte, 0, 4*showfile.ChannelCount+8)

	for row := 0; row < rows; row++ {
		id, ch, err := universe.UnpackRow(frame[row*stride:])
		if err != nil {
			return err
		}

		line = strconv.AppendUint(line[:0], uint64(id), 10)
		line = append(line, ' ')
		for i, v := range ch {
			if i > 0 {
				line = append(line, ',')
			}
			line = strconv.AppendUint(line, uint64(v), 10)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}

		dur := int64(0)
		if row == rows-1 {
			dur = durMS
		}
		if _, err := fmt.Fprintln(w, dur); err != nil {
			return err
		}
	}
	return nil
}

func openStreams() (io.ReadCloser, io.WriteCloser, error) {
	var (
		input  string
		output string
	)
	flag.StringVar(&input, "i", "-", "input yuv4mpeg2 stream (\"-\" for stdin)")
	flag.StringVar(&output, "o", "-", "output showfile (\"-\" for stdout)")
	flag.Parse()

	in := io.NopCloser(os.Stdin)
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return nil, nil, err
		}
		in = f
	}

	out := nopWriteCloser{os.Stdout}
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			in.Close()
			return nil, nil, err
		}
		return in, f, nil
	}
	return in, out, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
