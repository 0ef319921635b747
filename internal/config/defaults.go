package config

const (
	defaultDatasetFile       = "~/.local/share/groovescan/dataset.json"
	defaultTracksFile        = "~/.local/share/groovescan/tracks.csv"
	defaultStateDB           = "~/.local/share/groovescan/groovescan.db"
	defaultStagingDir        = "~/.local/share/groovescan/staging"
	defaultLogDir            = "~/.local/share/groovescan/logs"
	defaultDownloadWorkers   = 4
	defaultSegmentSeconds    = 60
	defaultRetryAfterHours   = 168 // 7 days
	defaultMinRequestDelayMs = 500
	defaultMaxRequestDelayMs = 1500
	defaultYtdlpBinary       = "yt-dlp"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultFetchTimeout      = 300
	defaultExtractTimeout    = 120
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatasetFile: defaultDatasetFile,
			TracksFile:  defaultTracksFile,
			StateDB:     defaultStateDB,
			StagingDir:  defaultStagingDir,
			LogDir:      defaultLogDir,
		},
		Pipeline: Pipeline{
			DownloadWorkers:   defaultDownloadWorkers,
			AnalysisWorkers:   0,
			SegmentSeconds:    defaultSegmentSeconds,
			RetryAfterHours:   defaultRetryAfterHours,
			MinRequestDelayMs: defaultMinRequestDelayMs,
			MaxRequestDelayMs: defaultMaxRequestDelayMs,
		},
		Tools: Tools{
			YtdlpBinary:    defaultYtdlpBinary,
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			FetchTimeout:   defaultFetchTimeout,
			ExtractTimeout: defaultExtractTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
