// Package testsupport provides shared helpers for package tests: temp-dir
// backed configs, candidate dataset fixtures, and state store setup.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"groovescan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DatasetFile = filepath.Join(base, "dataset.json")
	cfgVal.Paths.TracksFile = filepath.Join(base, "out", "tracks.csv")
	cfgVal.Paths.StateDB = filepath.Join(base, "state", "groovescan.db")
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Pipeline.DownloadWorkers = 2
	cfgVal.Pipeline.AnalysisWorkers = 2
	cfgVal.Pipeline.MinRequestDelayMs = 0
	cfgVal.Pipeline.MaxRequestDelayMs = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSegmentSeconds overrides the segment length on the test config.
func WithSegmentSeconds(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.SegmentSeconds = seconds
	}
}

// WithRetryAfterHours overrides the retry horizon on the test config.
func WithRetryAfterHours(hours int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Pipeline.RetryAfterHours = hours
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
