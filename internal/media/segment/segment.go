package segment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"groovescan/internal/media/ffprobe"
)

// Analysis sample rate for cut segments. One known decode format keeps the
// analysis stage free of codec concerns.
const sampleRate = 22050

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Prober reports the duration of a media file in seconds.
type Prober func(ctx context.Context, path string) (float64, error)

// Option configures the cutter.
type Option func(*Cutter)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Cutter) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithProber injects a custom duration prober (primarily for tests).
func WithProber(probe Prober) Option {
	return func(c *Cutter) {
		if probe != nil {
			c.probe = probe
		}
	}
}

// Cutter wraps ffmpeg/ffprobe interactions for segment extraction.
type Cutter struct {
	ffmpegBinary string
	timeout      time.Duration
	exec         Executor
	probe        Prober
}

// New constructs a segment cutter.
func New(ffmpegBinary, ffprobeBinary string, timeout time.Duration, opts ...Option) (*Cutter, error) {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	ffprobeBinary = strings.TrimSpace(ffprobeBinary)
	if ffprobeBinary == "" {
		return nil, errors.New("ffprobe binary required")
	}

	cutter := &Cutter{
		ffmpegBinary: ffmpegBinary,
		timeout:      timeout,
		exec:         commandExecutor{},
		probe: func(ctx context.Context, path string) (float64, error) {
			result, err := ffprobe.Inspect(ctx, ffprobeBinary, path)
			if err != nil {
				return 0, err
			}
			return result.DurationSeconds(), nil
		},
	}
	for _, opt := range opts {
		opt(cutter)
	}
	return cutter, nil
}

// Cut writes a centered clip of at most length from src to dst. Sources
// shorter than length are carried over whole. The raw source file is left
// in place; deleting it is the caller's responsibility.
func (c *Cutter) Cut(ctx context.Context, src, dst string, length time.Duration) error {
	if length <= 0 {
		return errors.New("segment cut: non-positive target length")
	}
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("segment cut: source missing: %w", err)
	}

	cutCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		cutCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	total, err := c.probe(cutCtx, src)
	if err != nil {
		return fmt.Errorf("segment cut: probe duration: %w", err)
	}
	if math.IsNaN(total) || total <= 0 {
		return fmt.Errorf("segment cut: degenerate source duration %v", total)
	}

	target := length.Seconds()
	start := 0.0
	cutLen := total
	if total > target {
		start = (total - target) / 2
		cutLen = target
	}

	args := []string{
		"-y", "-v", "error",
		"-ss", formatSeconds(start),
		"-i", src,
		"-t", formatSeconds(cutLen),
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-acodec", "pcm_s16le",
		dst,
	}
	output, err := c.exec.Run(cutCtx, c.ffmpegBinary, args)
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("segment cut: ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
	}

	if info, err := os.Stat(dst); err != nil || info.Size() == 0 {
		_ = os.Remove(dst)
		return errors.New("segment cut: ffmpeg produced no output")
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}
