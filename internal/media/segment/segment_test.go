package segment

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

type fakeExecutor struct {
	binary string
	args   []string
	err    error
	// write controls whether the fake produces the destination file.
	write bool
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) ([]byte, error) {
	f.binary = binary
	f.args = append([]string(nil), args...)
	if f.err != nil {
		return []byte("ffmpeg exploded"), f.err
	}
	if f.write {
		dst := args[len(args)-1]
		if err := os.WriteFile(dst, []byte("wav"), 0o644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func newTestCutter(t *testing.T, total float64, exec *fakeExecutor) *Cutter {
	t.Helper()
	cutter, err := New("ffmpeg", "ffprobe", time.Minute,
		WithExecutor(exec),
		WithProber(func(context.Context, string) (float64, error) { return total, nil }),
	)
	if err != nil {
		t.Fatal(err)
	}
	return cutter
}

func writeSource(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.wav")
	if err := os.WriteFile(src, []byte("raw"), 0o644); err != nil {
		t.Fatal(err)
	}
	return src, filepath.Join(dir, "cut.wav")
}

func argValue(t *testing.T, args []string, flag string) float64 {
	t.Helper()
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			value, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				t.Fatalf("parse %s value %q: %v", flag, args[i+1], err)
			}
			return value
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return 0
}

func TestCutCentersLongSource(t *testing.T) {
	exec := &fakeExecutor{write: true}
	cutter := newTestCutter(t, 180, exec)
	src, dst := writeSource(t)

	if err := cutter.Cut(context.Background(), src, dst, 60*time.Second); err != nil {
		t.Fatalf("cut: %v", err)
	}

	start := argValue(t, exec.args, "-ss")
	length := argValue(t, exec.args, "-t")
	if math.Abs(start-60) > 0.001 {
		t.Fatalf("start: got %v, want 60 (equal trim both ends)", start)
	}
	if math.Abs(length-60) > 0.001 {
		t.Fatalf("length: got %v, want 60", length)
	}
}

func TestCutKeepsShortSourceWhole(t *testing.T) {
	exec := &fakeExecutor{write: true}
	cutter := newTestCutter(t, 42.5, exec)
	src, dst := writeSource(t)

	if err := cutter.Cut(context.Background(), src, dst, 60*time.Second); err != nil {
		t.Fatalf("cut: %v", err)
	}

	if start := argValue(t, exec.args, "-ss"); start != 0 {
		t.Fatalf("start: got %v, want 0", start)
	}
	if length := argValue(t, exec.args, "-t"); math.Abs(length-42.5) > 0.001 {
		t.Fatalf("length: got %v, want full source 42.5", length)
	}
}

func TestCutNormalizesOutputFormat(t *testing.T) {
	exec := &fakeExecutor{write: true}
	cutter := newTestCutter(t, 120, exec)
	src, dst := writeSource(t)

	if err := cutter.Cut(context.Background(), src, dst, 60*time.Second); err != nil {
		t.Fatalf("cut: %v", err)
	}

	joined := strings.Join(exec.args, " ")
	for _, want := range []string{"-ac 1", "-ar 22050", "-acodec pcm_s16le"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("missing %q in args: %v", want, exec.args)
		}
	}
}

func TestCutFailsOnFfmpegError(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit status 1")}
	cutter := newTestCutter(t, 120, exec)
	src, dst := writeSource(t)

	err := cutter.Cut(context.Background(), src, dst, 60*time.Second)
	if err == nil {
		t.Fatal("expected error from ffmpeg failure")
	}
	if _, statErr := os.Stat(dst); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("destination should not remain after failure")
	}
}

func TestCutFailsOnDegenerateDuration(t *testing.T) {
	for _, total := range []float64{0, -3, math.NaN()} {
		exec := &fakeExecutor{write: true}
		cutter := newTestCutter(t, total, exec)
		src, dst := writeSource(t)

		if err := cutter.Cut(context.Background(), src, dst, 60*time.Second); err == nil {
			t.Fatalf("duration %v: expected error", total)
		}
	}
}

func TestCutFailsOnProbeError(t *testing.T) {
	cutter, err := New("ffmpeg", "ffprobe", time.Minute,
		WithExecutor(&fakeExecutor{write: true}),
		WithProber(func(context.Context, string) (float64, error) {
			return 0, errors.New("probe failed")
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	src, dst := writeSource(t)

	if err := cutter.Cut(context.Background(), src, dst, 60*time.Second); err == nil {
		t.Fatal("expected probe error to propagate")
	}
}

func TestCutFailsOnMissingSource(t *testing.T) {
	cutter := newTestCutter(t, 120, &fakeExecutor{write: true})
	dir := t.TempDir()

	err := cutter.Cut(context.Background(), filepath.Join(dir, "missing.wav"), filepath.Join(dir, "cut.wav"), 60*time.Second)
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCutFailsWhenNoOutputProduced(t *testing.T) {
	exec := &fakeExecutor{write: false}
	cutter := newTestCutter(t, 120, exec)
	src, dst := writeSource(t)

	if err := cutter.Cut(context.Background(), src, dst, 60*time.Second); err == nil {
		t.Fatal("expected error when ffmpeg produces no output")
	}
}

func TestNewRequiresBinaries(t *testing.T) {
	if _, err := New("", "ffprobe", time.Minute); err == nil {
		t.Fatal("expected error for empty ffmpeg binary")
	}
	if _, err := New("ffmpeg", "", time.Minute); err == nil {
		t.Fatal("expected error for empty ffprobe binary")
	}
}
