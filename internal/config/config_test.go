package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/roster-ocr/internal/errors"
)

var rosterKeys = []string{
	"ROSTER_MIN_DIMENSION",
	"ROSTER_RECOGNITION_TIMEOUT",
	"ROSTER_IMAGE_TIMEOUT",
	"ROSTER_TRIAL_PARALLELISM",
	"ROSTER_WORKER_CONCURRENCY",
	"ROSTER_COMPLETE_THRESHOLD",
	"ROSTER_LANGUAGES",
	"ROSTER_TESSDATA_PREFIX",
	"ROSTER_LOG_LEVEL",
	"TESSDATA_PREFIX",
}

// clearEnv unsets every ROSTER_* key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range rosterKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROSTER_MIN_DIMENSION", "1000")
	t.Setenv("ROSTER_RECOGNITION_TIMEOUT", "5")
	t.Setenv("ROSTER_IMAGE_TIMEOUT", "90s")
	t.Setenv("ROSTER_TRIAL_PARALLELISM", "4")
	t.Setenv("ROSTER_WORKER_CONCURRENCY", "8")
	t.Setenv("ROSTER_COMPLETE_THRESHOLD", "85.5")
	t.Setenv("ROSTER_LANGUAGES", "eng+fra")
	t.Setenv("TESSDATA_PREFIX", "/usr/share/tessdata")
	t.Setenv("ROSTER_LOG_LEVEL", "DEBUG")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	want := &Config{
		MinDimension:       1000,
		RecognitionTimeout: 5 * time.Second,
		ImageTimeout:       90 * time.Second,
		TrialParallelism:   4,
		Languages:          []string{"eng", "fra"},
		TessdataPrefix:     "/usr/share/tessdata",
		WorkerConcurrency:  8,
		CompleteThreshold:  85.5,
		LogLevel:           "debug",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"ROSTER_MIN_DIMENSION", "abc"},
		{"ROSTER_MIN_DIMENSION", "50"},
		{"ROSTER_RECOGNITION_TIMEOUT", "soon"},
		{"ROSTER_RECOGNITION_TIMEOUT", "0"},
		{"ROSTER_IMAGE_TIMEOUT", "1s"},
		{"ROSTER_TRIAL_PARALLELISM", "0"},
		{"ROSTER_WORKER_CONCURRENCY", "500"},
		{"ROSTER_COMPLETE_THRESHOLD", "101"},
		{"ROSTER_COMPLETE_THRESHOLD", "x"},
		{"ROSTER_LANGUAGES", "+"},
		{"ROSTER_LOG_LEVEL", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *errors.ProcessingError
			if !stderrors.As(err, &pe) || pe.Code != errors.ErrorInvalidConfig {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
			if pe != nil && pe.Details["key"] != tt.key {
				t.Errorf("key = %v, want %s", pe.Details["key"], tt.key)
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "roster.env")
	content := "ROSTER_WORKER_CONCURRENCY=12\nROSTER_LANGUAGES=fra\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WorkerConcurrency != 12 {
		t.Errorf("WorkerConcurrency = %d, want 12", cfg.WorkerConcurrency)
	}
	if diff := cmp.Diff([]string{"fra"}, cfg.Languages); diff != "" {
		t.Errorf("Languages mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROSTER_WORKER_CONCURRENCY", "3")
	path := filepath.Join(t.TempDir(), "roster.env")
	if err := os.WriteFile(path, []byte("ROSTER_WORKER_CONCURRENCY=12\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WorkerConcurrency != 3 {
		t.Errorf("WorkerConcurrency = %d, want 3", cfg.WorkerConcurrency)
	}
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
}
