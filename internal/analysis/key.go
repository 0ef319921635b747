package analysis

import (
	"errors"
	"math"
)

// Krumhansl-Schmuckler tonal hierarchy profiles, indexed by pitch class
// relative to the tonic.
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// chromaVector folds spectrogram energy into the twelve pitch classes.
// Bins below A0 and above C8 carry mostly rumble and noise, so they are
// excluded.
func chromaVector(frames [][]float64, sampleRate int) []float64 {
	chroma := make([]float64, 12)
	if len(frames) == 0 || sampleRate <= 0 {
		return chroma
	}

	binHz := float64(sampleRate) / float64(frameSize)
	const (
		loHz = 27.5   // A0
		hiHz = 4186.0 // C8
	)
	for _, magnitudes := range frames {
		for bin, mag := range magnitudes {
			freq := float64(bin) * binHz
			if freq < loHz || freq > hiHz {
				continue
			}
			// MIDI note number, then fold to pitch class (0 = C).
			note := 69 + 12*math.Log2(freq/440.0)
			pc := ((int(math.Round(note)) % 12) + 12) % 12
			chroma[pc] += mag * mag
		}
	}
	return chroma
}

// estimateKey correlates the chroma vector against all 24 rotated
// profiles and returns the winning tonic pitch class and mode. Ties
// between modes at the same score prefer major.
func estimateKey(chroma []float64) (pitchClass int, major bool, err error) {
	var flat bool = true
	for _, v := range chroma {
		if v > 0 {
			flat = false
			break
		}
	}
	if flat {
		return 0, false, errors.New("estimate key: silent segment")
	}

	bestScore := math.Inf(-1)
	for tonic := 0; tonic < 12; tonic++ {
		rotated := make([]float64, 12)
		for i := range rotated {
			rotated[i] = chroma[(tonic+i)%12]
		}
		if score := pearson(rotated, majorProfile); score > bestScore {
			bestScore, pitchClass, major = score, tonic, true
		}
		if score := pearson(rotated, minorProfile); score > bestScore {
			bestScore, pitchClass, major = score, tonic, false
		}
	}
	return pitchClass, major, nil
}
