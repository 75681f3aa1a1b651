// Package pipeline drives a single showfile conversion pass: decode
// frames from the recording, fold them into the universe-state table,
// and hand each committed snapshot to the frame sink as one packed
// video frame.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dmxio/olavc/encode"
	"github.com/dmxio/olavc/showfile"
	"github.com/dmxio/olavc/universe"
)

// Config carries the parameters of one conversion pass.
type Config struct {
	// Universes is the number of distinct universes the recording must
	// initialize before its first committed frame.
	Universes int

	// FinalDurationMS replaces the unknown duration of a recording's
	// last frame. Clamped to at least 1ms.
	FinalDurationMS int64

	// Stride is the packed row width in bytes. Zero means the minimum
	// (universe.RowWidth).
	Stride int

	// ProgressEvery logs conversion statistics every N decoded records.
	// Zero disables progress reporting.
	ProgressEvery int

	// Logger receives progress output. Nil means slog.Default.
	Logger *slog.Logger
}

// Stats summarizes a finished (or failed) conversion pass.
type Stats struct {
	RecordsIn  int64 // decoded showfile records
	FramesOut  int64 // committed video frames
	DurationMS uint64
	Elapsed    time.Duration
}

// Converter runs the single-threaded decode → accumulate → pack → sink
// loop. The input stream and sink are borrowed; the sink is not closed
// by the converter so the caller controls container finalization.
type Converter struct {
	log    *slog.Logger
	reader *showfile.Reader
	table  *universe.Table
	sink   encode.FrameSink
	cfg    Config
	stride int

	buf   []byte // packed-row scratch, reused across commits
	stats Stats
}

// New creates a Converter reading showfile records from r and emitting
// packed frames to sink.
func New(r io.Reader, sink encode.FrameSink, cfg Config) (*Converter, error) {
	table, err := universe.NewTable(cfg.Universes, cfg.FinalDurationMS)
	if err != nil {
		return nil, err
	}

	stride := cfg.Stride
	if stride == 0 {
		stride = universe.RowWidth
	}
	if stride < universe.RowWidth {
		return nil, fmt.Errorf("%w: stride %d, row width %d",
			universe.ErrStrideTooShort, stride, universe.RowWidth)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Converter{
		log:    log.With("component", "convert"),
		reader: showfile.NewReader(r),
		table:  table,
		sink:   sink,
		cfg:    cfg,
		stride: stride,
	}, nil
}

// Run converts the whole recording. It blocks until the stream is
// exhausted, a decode or sink error occurs, or ctx is cancelled. The
// caller must Close the sink afterwards regardless of the outcome.
func (c *Converter) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		c.stats.Elapsed = time.Since(start)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		f, err := c.reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		c.stats.RecordsIn++

		commit, err := c.table.Apply(f)
		if err != nil {
			return err
		}
		if commit.Emit {
			c.buf, err = c.table.Pack(c.stride, c.buf)
			if err != nil {
				return err
			}
			if err := c.sink.WriteFrame(c.buf, c.stride, c.table.Len(), commit.DurationMS); err != nil {
				return err
			}
			c.stats.FramesOut++
			c.stats.DurationMS += uint64(commit.DurationMS)
		}

		if n := c.cfg.ProgressEvery; n > 0 && c.stats.RecordsIn%int64(n) == 0 {
			elapsed := time.Since(start).Seconds()
			c.log.Info("conversion progress",
				"records", c.stats.RecordsIn,
				"frames", c.stats.FramesOut,
				"elapsed_s", elapsed,
				"avg_fps", float64(c.stats.RecordsIn)/elapsed,
			)
		}
	}
}

// Stats returns counters for the pass so far.
func (c *Converter) Stats() Stats {
	return c.stats
}
