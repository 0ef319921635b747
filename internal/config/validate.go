package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DatasetFile == "" {
		return errors.New("paths.dataset_file must be set")
	}
	if c.Paths.TracksFile == "" {
		return errors.New("paths.tracks_file must be set")
	}
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.StateDB == "" {
		return errors.New("paths.state_db must be set")
	}
	// The staging dir is wiped between items; refuse to share it with durable outputs.
	if c.Paths.StagingDir == filepath.Dir(c.Paths.TracksFile) {
		return errors.New("paths.staging_dir must not be the tracks file directory")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if err := ensurePositiveMap(map[string]int{
		"pipeline.download_workers": c.Pipeline.DownloadWorkers,
		"pipeline.segment_seconds":  c.Pipeline.SegmentSeconds,
		"pipeline.retry_after_hours": c.Pipeline.RetryAfterHours,
	}); err != nil {
		return err
	}
	if c.Pipeline.AnalysisWorkers < 0 {
		return errors.New("pipeline.analysis_workers must be >= 0 (0 means one per core)")
	}
	if c.Pipeline.MinRequestDelayMs < 0 {
		return errors.New("pipeline.min_request_delay_ms must be >= 0")
	}
	if c.Pipeline.MaxRequestDelayMs < c.Pipeline.MinRequestDelayMs {
		return errors.New("pipeline.max_request_delay_ms must be >= pipeline.min_request_delay_ms")
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.YtdlpBinary == "" {
		return errors.New("tools.ytdlp_binary must be set")
	}
	if c.Tools.FFmpegBinary == "" {
		return errors.New("tools.ffmpeg_binary must be set")
	}
	if c.Tools.FFprobeBinary == "" {
		return errors.New("tools.ffprobe_binary must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"tools.fetch_timeout":   c.Tools.FetchTimeout,
		"tools.extract_timeout": c.Tools.ExtractTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
