// Command olavc converts an OLA showfile recording into a lossless
// Matroska video: one gray8 row per universe, one frame per state
// change, held for the recorded duration.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmxio/olavc/config"
	"github.com/dmxio/olavc/encode"
	"github.com/dmxio/olavc/pipeline"
	"github.com/dmxio/olavc/universe"
)

var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(); err != nil {
		slog.Error("conversion failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		jobFile   string
		universes int
		input     string
		output    string
		lastMS    int64
		progress  int
		ffv1      bool
		ffmpeg    string
	)
	flag.StringVar(&jobFile, "c", "", "YAML job file (flags override its values)")
	flag.IntVar(&universes, "u", 0, "number of universes in the recording")
	flag.StringVar(&input, "i", "", "path of the input showfile (\"-\" for stdin)")
	flag.StringVar(&output, "o", "", "path of the output MKV file")
	flag.Int64Var(&lastMS, "l", 1, "duration of the last frame in ms")
	flag.IntVar(&progress, "p", 0, "record interval between progress reports (0 = off)")
	flag.BoolVar(&ffv1, "ffv1", false, "re-encode the output to FFV1 via ffmpeg")
	flag.StringVar(&ffmpeg, "ffmpeg", "", "ffmpeg binary to use with -ffv1")
	flag.Parse()

	job := config.Default()
	if jobFile != "" {
		loaded, err := config.Load(jobFile)
		if err != nil {
			return err
		}
		job = loaded
	}

	// Explicitly set flags override the job file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "u":
			job.Universes = universes
		case "i":
			job.Input = input
		case "o":
			job.Output = output
		case "l":
			job.LastDurationMS = lastMS
		case "p":
			job.ProgressEvery = progress
		case "ffv1":
			job.FFV1 = ffv1
		case "ffmpeg":
			job.FFmpeg = ffmpeg
		}
	})

	if err := job.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, aborting conversion", "signal", sig)
		cancel()
	}()

	var in io.Reader
	if job.Input == "-" {
		in = os.Stdin
	} else {
		f, err := os.Open(job.Input)
		if err != nil {
			return fmt.Errorf("could not open showfile: %w", err)
		}
		defer f.Close()
		in = f
	}

	sink, err := newSink(ctx, job)
	if err != nil {
		return err
	}
	defer sink.Close()

	conv, err := pipeline.New(in, sink, pipeline.Config{
		Universes:       job.Universes,
		FinalDurationMS: job.LastDurationMS,
		ProgressEvery:   job.ProgressEvery,
	})
	if err != nil {
		return err
	}

	slog.Info("olavc starting",
		"version", version,
		"input", job.Input,
		"output", job.Output,
		"universes", job.Universes,
		"ffv1", job.FFV1,
	)

	if err := conv.Run(ctx); err != nil {
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}

	stats := conv.Stats()
	slog.Info("conversion finished",
		"records", stats.RecordsIn,
		"frames", stats.FramesOut,
		"video_ms", stats.DurationMS,
		"elapsed", stats.Elapsed,
	)
	return nil
}

func newSink(ctx context.Context, job config.Job) (encode.FrameSink, error) {
	if job.FFV1 {
		return encode.NewFFV1Sink(ctx, job.Output, universe.RowWidth, job.Universes, job.FFmpeg)
	}
	return encode.NewFileSink(job.Output, universe.RowWidth, job.Universes)
}
