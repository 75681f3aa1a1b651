package encode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// FFV1Sink re-encodes the lossless stream to FFV1 through an external
// ffmpeg process: the muxed Matroska stream is piped to ffmpeg's stdin
// and ffmpeg writes the compressed output file. Frame timestamps and
// durations survive the re-encode because both sides speak Matroska.
type FFV1Sink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	mkv    *MKVWriter
	g      *errgroup.Group
	stderr bytes.Buffer
	log    *slog.Logger
	closed bool
}

// NewFFV1Sink starts ffmpegPath (or "ffmpeg" when empty) writing FFV1
// video to path, and returns a sink accepting stride x rows frames.
// The encoder runs with every frame its own GOP and slice CRCs off.
func NewFFV1Sink(ctx context.Context, path string, stride, rows int, ffmpegPath string) (*FFV1Sink, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-f", "matroska", "-i", "-",
		"-c:v", "ffv1", "-g", "1", "-slicecrc", "0",
		"-y", path,
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("encode: ffmpeg stdin: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("encode: ffmpeg stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("encode: starting %s: %w", ffmpegPath, err)
	}

	s := &FFV1Sink{
		cmd:   cmd,
		stdin: stdin,
		g:     &errgroup.Group{},
		log:   slog.With("component", "ffv1", "output", path),
	}

	// Drain stderr until the process exits so a failing encode can be
	// reported with ffmpeg's own diagnostics.
	s.g.Go(func() error {
		_, err := io.Copy(&s.stderr, stderr)
		return err
	})

	mkv, err := NewMKVWriter(stdin, stride, rows)
	if err != nil {
		stdin.Close()
		s.g.Wait()
		cmd.Wait()
		return nil, err
	}
	s.mkv = mkv

	return s, nil
}

func (s *FFV1Sink) WriteFrame(buf []byte, stride, rows int, durationMS int64) error {
	if s.closed {
		return ErrClosed
	}
	return s.mkv.WriteFrame(buf, stride, rows, durationMS)
}

// Close signals end of input to ffmpeg and waits for it to finish the
// output file. Close is idempotent; only the first call reports encode
// errors.
func (s *FFV1Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.mkv.Close()
	if cerr := s.stdin.Close(); err == nil {
		err = cerr
	}
	if gerr := s.g.Wait(); err == nil {
		err = gerr
	}
	if werr := s.cmd.Wait(); werr != nil {
		if msg := bytes.TrimSpace(s.stderr.Bytes()); len(msg) > 0 {
			s.log.Error("ffmpeg failed", "error", werr, "stderr", string(msg))
		}
		if err == nil {
			err = fmt.Errorf("encode: ffmpeg: %w", werr)
		}
	}
	return err
}
