package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"groovescan/internal/config"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := config.Default()
	path := writeConfig(t, "")

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if loaded.Pipeline.DownloadWorkers != cfg.Pipeline.DownloadWorkers {
		t.Fatalf("download workers: got %d, want %d", loaded.Pipeline.DownloadWorkers, cfg.Pipeline.DownloadWorkers)
	}
	if loaded.Tools.YtdlpBinary != "yt-dlp" {
		t.Fatalf("ytdlp binary: got %q", loaded.Tools.YtdlpBinary)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[pipeline]
download_workers = 8
segment_seconds = 30
retry_after_hours = 24

[logging]
format = "json"
level = "debug"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Pipeline.DownloadWorkers != 8 {
		t.Fatalf("download workers: got %d, want 8", cfg.Pipeline.DownloadWorkers)
	}
	if cfg.SegmentDuration() != 30*time.Second {
		t.Fatalf("segment duration: got %s", cfg.SegmentDuration())
	}
	if cfg.RetryHorizon() != 24*time.Hour {
		t.Fatalf("retry horizon: got %s", cfg.RetryHorizon())
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging: got %+v", cfg.Logging)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Pipeline.SegmentSeconds != 60 {
		t.Fatalf("segment seconds default: got %d", cfg.Pipeline.SegmentSeconds)
	}
}

func TestNormalizeClampsDelayBounds(t *testing.T) {
	path := writeConfig(t, `
[pipeline]
min_request_delay_ms = 2000
max_request_delay_ms = 100
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	minDelay, maxDelay := cfg.RequestDelayBounds()
	if maxDelay < minDelay {
		t.Fatalf("delay bounds not clamped: min %s max %s", minDelay, maxDelay)
	}
}

func TestValidateRejectsNegativeWorkers(t *testing.T) {
	path := writeConfig(t, `
[pipeline]
analysis_workers = -2
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for negative analysis workers")
	}
}

func TestValidateRejectsStagingOverlap(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
staging_dir = "`+filepath.Join(dir, "out")+`"
tracks_file = "`+filepath.Join(dir, "out", "tracks.csv")+`"
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for staging dir overlapping tracks dir")
	}
}

func TestAnalysisWorkerCountDefaultsToCores(t *testing.T) {
	cfg := config.Default()
	if cfg.AnalysisWorkerCount() <= 0 {
		t.Fatalf("worker count must be positive, got %d", cfg.AnalysisWorkerCount())
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[pipeline]") {
		t.Fatal("sample config missing [pipeline] section")
	}

	// The sample must itself load cleanly.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
