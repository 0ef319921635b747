package analysis

import (
	"fmt"

	"groovescan/internal/features"
)

// Result holds the descriptors computed for one segment.
type Result struct {
	Tempo       float64
	Key         string
	KeyNotation string
	Energy      float64
}

// Analyze decodes the segment at path and computes tempo, key, and
// energy from a single shared spectrogram pass.
func Analyze(path string) (Result, error) {
	clip, err := DecodeWAV(path)
	if err != nil {
		return Result{}, err
	}
	return AnalyzeClip(clip)
}

// AnalyzeClip computes descriptors for already-decoded audio.
func AnalyzeClip(clip *Clip) (Result, error) {
	frames := spectrogram(clip.Samples)
	if len(frames) == 0 {
		return Result{}, fmt.Errorf("analyze: segment too short (%.2fs)", clip.Duration())
	}

	tempo, err := estimateTempo(onsetEnvelope(frames), clip.SampleRate)
	if err != nil {
		return Result{}, err
	}

	pitchClass, major, err := estimateKey(chromaVector(frames, clip.SampleRate))
	if err != nil {
		return Result{}, err
	}

	return Result{
		Tempo:       tempo,
		Key:         features.KeyName(pitchClass, major),
		KeyNotation: features.WheelNotation(pitchClass, major),
		Energy:      rmsEnergy(clip.Samples),
	}, nil
}
