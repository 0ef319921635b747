package analysis

import (
	"errors"
)

// Plausible dance-music tempo range. Estimates outside it are folded by
// octave (halved or doubled) before being rejected.
const (
	minBPM = 60.0
	maxBPM = 200.0
)

// onsetEnvelope reduces the spectrogram to a per-frame onset strength
// signal using half-wave rectified spectral flux.
func onsetEnvelope(frames [][]float64) []float64 {
	if len(frames) < 2 {
		return nil
	}
	envelope := make([]float64, len(frames)-1)
	for f := 1; f < len(frames); f++ {
		var flux float64
		for bin := range frames[f] {
			if diff := frames[f][bin] - frames[f-1][bin]; diff > 0 {
				flux += diff
			}
		}
		envelope[f-1] = flux
	}
	return envelope
}

// estimateTempo derives BPM from the onset envelope. The envelope is
// split into overlapping windows, each window votes via autocorrelation,
// and the median of the votes is the track tempo. The median keeps a
// breakdown or an ambient intro from dragging the estimate.
func estimateTempo(envelope []float64, sampleRate int) (float64, error) {
	frameRate := float64(sampleRate) / float64(hopSize)

	// ~8 seconds of envelope per vote, hopping by half a window.
	windowLen := int(8 * frameRate)
	if windowLen > len(envelope) {
		windowLen = len(envelope)
	}
	if windowLen < int(2*frameRate) {
		return 0, errors.New("estimate tempo: segment too short")
	}

	minLag := int(frameRate * 60 / maxBPM)
	maxLag := int(frameRate * 60 / minBPM)
	if maxLag >= windowLen {
		maxLag = windowLen - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return 0, errors.New("estimate tempo: envelope too coarse")
	}

	var votes []float64
	for start := 0; start+windowLen <= len(envelope); start += windowLen / 2 {
		if bpm, ok := windowTempo(envelope[start:start+windowLen], frameRate, minLag, maxLag); ok {
			votes = append(votes, bpm)
		}
		if windowLen == len(envelope) {
			break
		}
	}
	if len(votes) == 0 {
		return 0, errors.New("estimate tempo: no periodicity detected")
	}
	return median(votes), nil
}

func windowTempo(window []float64, frameRate float64, minLag, maxLag int) (float64, bool) {
	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))

	centered := make([]float64, len(window))
	var variance float64
	for i, v := range window {
		centered[i] = v - mean
		variance += centered[i] * centered[i]
	}
	if variance == 0 {
		return 0, false
	}

	autocorr := make([]float64, maxLag+1)
	for lag := minLag; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < len(centered); i++ {
			sum += centered[i] * centered[i+lag]
		}
		autocorr[lag] = sum
	}

	bestLag, bestValue := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		if autocorr[lag] > bestValue {
			bestLag, bestValue = lag, autocorr[lag]
		}
	}
	if bestLag == 0 || bestValue <= 0 {
		return 0, false
	}

	// Parabolic interpolation around the peak for sub-lag precision.
	lag := float64(bestLag)
	if bestLag > minLag && bestLag < maxLag {
		left, mid, right := autocorr[bestLag-1], autocorr[bestLag], autocorr[bestLag+1]
		denom := left - 2*mid + right
		if denom != 0 {
			lag += 0.5 * (left - right) / denom
		}
	}

	bpm := 60 * frameRate / lag
	for bpm < minBPM {
		bpm *= 2
	}
	for bpm > maxBPM {
		bpm /= 2
	}
	if bpm < minBPM || bpm > maxBPM {
		return 0, false
	}
	return bpm, true
}
