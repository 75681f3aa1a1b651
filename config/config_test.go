package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeJobFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeJobFile(t, `
input: show.txt
output: show.mkv
universes: 4
last_duration_ms: 40
progress_every: 100
ffv1: true
`)
	job, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if job.Universes != 4 || job.LastDurationMS != 40 || !job.FFV1 {
		t.Fatalf("job = %+v, want 4 universes, 40ms, ffv1", job)
	}
	if err := job.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	path := writeJobFile(t, "input: a\noutput: b\nuniverses: 1\n")
	job, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if job.LastDurationMS != 1 {
		t.Fatalf("LastDurationMS = %d, want default 1", job.LastDurationMS)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	path := writeJobFile(t, "input: a\nuniverse_count: 2\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted a job file with an unknown key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		job  Job
		err  error
	}{
		{name: "no universes", job: Job{Input: "a", Output: "b"}, err: ErrNoUniverses},
		{name: "negative universes", job: Job{Input: "a", Output: "b", Universes: -1}, err: ErrNoUniverses},
		{name: "no output", job: Job{Input: "a", Universes: 1}, err: ErrNoOutput},
		{name: "no input", job: Job{Output: "b", Universes: 1}, err: ErrNoInput},
		{name: "complete", job: Job{Input: "a", Output: "b", Universes: 1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.job.Validate()
			if tt.err == nil && err != nil {
				t.Fatalf("Validate = %v, want nil", err)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("Validate = %v, want %v", err, tt.err)
			}
		})
	}
}
