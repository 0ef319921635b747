package analysis

import "math"

// rmsEnergy measures loudness as the mean of frame-wise RMS amplitudes
// against full-scale PCM, so values are comparable across the whole
// dataset rather than normalized per track. Clipped sources can nudge a
// frame past 1.0, so the result is clamped to the [0,1] contract.
func rmsEnergy(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var frameMeans []float64
	for start := 0; start < len(samples); start += hopSize {
		end := min(start+frameSize, len(samples))
		var sum float64
		for _, s := range samples[start:end] {
			sum += s * s
		}
		frameMeans = append(frameMeans, math.Sqrt(sum/float64(end-start)))
	}

	var total float64
	for _, rms := range frameMeans {
		total += rms
	}
	energy := total / float64(len(frameMeans))
	return math.Min(math.Max(energy, 0), 1)
}
