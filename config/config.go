// Package config assembles conversion settings from command-line flags
// and an optional YAML job file. Flags win over the file so a job file
// can hold a show's fixed parameters while the paths vary per run.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validation errors.
var (
	ErrNoUniverses = errors.New("config: no universe count specified")
	ErrNoOutput    = errors.New("config: no output path specified")
	ErrNoInput     = errors.New("config: no input path specified")
)

// Job describes one showfile conversion.
type Job struct {
	Input          string `yaml:"input"`
	Output         string `yaml:"output"`
	Universes      int    `yaml:"universes"`
	LastDurationMS int64  `yaml:"last_duration_ms"`
	ProgressEvery  int    `yaml:"progress_every"`
	FFV1           bool   `yaml:"ffv1"`
	FFmpeg         string `yaml:"ffmpeg"`
}

// Default returns a Job with the documented flag defaults applied.
func Default() Job {
	return Job{LastDurationMS: 1}
}

// Load reads a YAML job file. Unknown keys are rejected so a typo in a
// job file fails loudly instead of silently using a default.
func Load(path string) (Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return Job{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	job := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil {
		return Job{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return job, nil
}

// Validate checks that the job is complete enough to run.
func (j Job) Validate() error {
	if j.Universes <= 0 {
		return fmt.Errorf("%w (have %d)", ErrNoUniverses, j.Universes)
	}
	if j.Output == "" {
		return ErrNoOutput
	}
	if j.Input == "" {
		return ErrNoInput
	}
	return nil
}
