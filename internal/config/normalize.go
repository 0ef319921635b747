package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DatasetFile) == "" {
		c.Paths.DatasetFile = defaultDatasetFile
	}
	if c.Paths.DatasetFile, err = expandPath(c.Paths.DatasetFile); err != nil {
		return fmt.Errorf("paths.dataset_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.TracksFile) == "" {
		c.Paths.TracksFile = defaultTracksFile
	}
	if c.Paths.TracksFile, err = expandPath(c.Paths.TracksFile); err != nil {
		return fmt.Errorf("paths.tracks_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDB) == "" {
		c.Paths.StateDB = defaultStateDB
	}
	if c.Paths.StateDB, err = expandPath(c.Paths.StateDB); err != nil {
		return fmt.Errorf("paths.state_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.DownloadWorkers <= 0 {
		c.Pipeline.DownloadWorkers = defaultDownloadWorkers
	}
	if c.Pipeline.AnalysisWorkers < 0 {
		c.Pipeline.AnalysisWorkers = 0
	}
	if c.Pipeline.SegmentSeconds <= 0 {
		c.Pipeline.SegmentSeconds = defaultSegmentSeconds
	}
	if c.Pipeline.RetryAfterHours <= 0 {
		c.Pipeline.RetryAfterHours = defaultRetryAfterHours
	}
	if c.Pipeline.MinRequestDelayMs < 0 {
		c.Pipeline.MinRequestDelayMs = defaultMinRequestDelayMs
	}
	if c.Pipeline.MaxRequestDelayMs <= 0 {
		c.Pipeline.MaxRequestDelayMs = defaultMaxRequestDelayMs
	}
	if c.Pipeline.MaxRequestDelayMs < c.Pipeline.MinRequestDelayMs {
		c.Pipeline.MaxRequestDelayMs = c.Pipeline.MinRequestDelayMs
	}
}

func (c *Config) normalizeTools() {
	c.Tools.YtdlpBinary = strings.TrimSpace(c.Tools.YtdlpBinary)
	if c.Tools.YtdlpBinary == "" {
		c.Tools.YtdlpBinary = defaultYtdlpBinary
	}
	c.Tools.FFmpegBinary = strings.TrimSpace(c.Tools.FFmpegBinary)
	if c.Tools.FFmpegBinary == "" {
		c.Tools.FFmpegBinary = defaultFFmpegBinary
	}
	c.Tools.FFprobeBinary = strings.TrimSpace(c.Tools.FFprobeBinary)
	if c.Tools.FFprobeBinary == "" {
		c.Tools.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Tools.FetchTimeout <= 0 {
		c.Tools.FetchTimeout = defaultFetchTimeout
	}
	if c.Tools.ExtractTimeout <= 0 {
		c.Tools.ExtractTimeout = defaultExtractTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
