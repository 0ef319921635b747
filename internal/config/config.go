package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory configuration.
type Paths struct {
	DatasetFile string `toml:"dataset_file"`
	TracksFile  string `toml:"tracks_file"`
	StateDB     string `toml:"state_db"`
	StagingDir  string `toml:"staging_dir"`
	LogDir      string `toml:"log_dir"`
}

// Pipeline contains worker pool widths and processing parameters.
type Pipeline struct {
	DownloadWorkers int `toml:"download_workers"`
	// AnalysisWorkers of 0 means one worker per CPU core.
	AnalysisWorkers   int `toml:"analysis_workers"`
	SegmentSeconds    int `toml:"segment_seconds"`
	RetryAfterHours   int `toml:"retry_after_hours"`
	MinRequestDelayMs int `toml:"min_request_delay_ms"`
	MaxRequestDelayMs int `toml:"max_request_delay_ms"`
}

// Tools contains external binary names and subprocess timeouts.
type Tools struct {
	YtdlpBinary    string `toml:"ytdlp_binary"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	FetchTimeout   int    `toml:"fetch_timeout"`
	ExtractTimeout int    `toml:"extract_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for groovescan.
//
// Configuration sections by subsystem:
//   - Paths: candidate dataset, output CSV, state database, scratch and log dirs
//   - Pipeline: worker widths, segment length, retry horizon, politeness delays
//   - Tools: yt-dlp/ffmpeg/ffprobe binaries and timeouts
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Pipeline Pipeline `toml:"pipeline"`
	Tools    Tools    `toml:"tools"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/groovescan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/groovescan/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("groovescan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.StagingDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.TracksFile),
		filepath.Dir(c.Paths.StateDB),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// AnalysisWorkerCount resolves the configured analysis width, defaulting to the core count.
func (c *Config) AnalysisWorkerCount() int {
	if c.Pipeline.AnalysisWorkers > 0 {
		return c.Pipeline.AnalysisWorkers
	}
	return runtime.NumCPU()
}

// SegmentDuration returns the target segment length.
func (c *Config) SegmentDuration() time.Duration {
	return time.Duration(c.Pipeline.SegmentSeconds) * time.Second
}

// RetryHorizon returns the minimum age a failure record must reach before retry.
func (c *Config) RetryHorizon() time.Duration {
	return time.Duration(c.Pipeline.RetryAfterHours) * time.Hour
}

// FetchTimeout returns the per-download subprocess timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Tools.FetchTimeout) * time.Second
}

// ExtractTimeout returns the per-segment subprocess timeout.
func (c *Config) ExtractTimeout() time.Duration {
	return time.Duration(c.Tools.ExtractTimeout) * time.Second
}

// RequestDelayBounds returns the per-worker politeness delay range between downloads.
func (c *Config) RequestDelayBounds() (time.Duration, time.Duration) {
	minDelay := time.Duration(c.Pipeline.MinRequestDelayMs) * time.Millisecond
	maxDelay := time.Duration(c.Pipeline.MaxRequestDelayMs) * time.Millisecond
	return minDelay, maxDelay
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
