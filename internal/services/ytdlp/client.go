package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Failure classes surfaced to the failure sink. The pipeline treats them
// all the same; the class only drives the recorded reason label.
var (
	// ErrUnavailable marks content that is gone, private, or restricted.
	ErrUnavailable = errors.New("content unavailable")
	// ErrNetwork marks transport-level failures worth a transient retry.
	ErrNetwork = errors.New("network error")
)

// Fetcher defines the behaviour required by the acquisition stage.
type Fetcher interface {
	Fetch(ctx context.Context, id, dest string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithMaxRetries overrides the transient-failure retry budget per fetch.
func WithMaxRetries(retries uint64) Option {
	return func(c *Client) {
		c.maxRetries = retries
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary     string
	timeout    time.Duration
	maxRetries uint64
	exec       Executor
}

// New constructs a yt-dlp client.
func New(binary string, timeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:     binary,
		timeout:    timeout,
		maxRetries: 2,
		exec:       commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Fetch downloads best-available audio for id into dest as WAV. Transient
// network failures are retried with exponential backoff inside the same
// attempt; unavailable content fails immediately. On failure no artifact
// is left behind.
func (c *Client) Fetch(ctx context.Context, id, dest string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("ytdlp fetch: empty id")
	}
	if dest == "" {
		return errors.New("ytdlp fetch: empty destination")
	}

	fetchCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	operation := func() error {
		err := c.fetchOnce(fetchCtx, id, dest)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNetwork) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		fetchCtx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return nil
}

func (c *Client) fetchOnce(ctx context.Context, id, dest string) error {
	args := []string{
		"--ignore-config",
		"--no-playlist",
		"-f", "bestaudio",
		"--extract-audio",
		"--audio-format", "wav",
		"-o", dest,
		"https://www.youtube.com/watch?v=" + id,
	}

	output, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return classifyFailure(output, err)
	}
	if _, statErr := os.Stat(dest); statErr != nil {
		return fmt.Errorf("ytdlp fetch: no audio produced for %s", id)
	}
	return nil
}

// unavailableMarkers are yt-dlp stderr fragments meaning the content itself
// cannot be had, so retrying is pointless.
var unavailableMarkers = []string{
	"video unavailable",
	"private video",
	"this video is not available",
	"has been removed",
	"account associated with this video has been terminated",
	"age-restricted",
	"sign in to confirm",
	"members-only",
	"blocked in your country",
}

var networkMarkers = []string{
	"timed out",
	"timeout",
	"connection reset",
	"connection refused",
	"temporary failure in name resolution",
	"network is unreachable",
	"unable to connect",
	"http error 5",
	"http error 429",
}

func classifyFailure(output []byte, err error) error {
	detail := strings.ToLower(string(output))
	summary := firstLine(string(output))
	if summary == "" {
		summary = err.Error()
	}

	for _, marker := range unavailableMarkers {
		if strings.Contains(detail, marker) {
			return fmt.Errorf("%w: %s", ErrUnavailable, summary)
		}
	}
	for _, marker := range networkMarkers {
		if strings.Contains(detail, marker) {
			return fmt.Errorf("%w: %s", ErrNetwork, summary)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s", ErrNetwork, err.Error())
	}
	return fmt.Errorf("ytdlp fetch: %w: %s", err, summary)
}

func firstLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		// yt-dlp prefixes real problems with "ERROR:"; prefer those lines.
		if strings.HasPrefix(trimmed, "ERROR:") {
			return trimmed
		}
	}
	return strings.TrimSpace(strings.SplitN(output, "\n", 2)[0])
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.CombinedOutput()
}
