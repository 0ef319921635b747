package analysis

import "math"

// Short-time analysis parameters. 2048/512 at 22050 Hz gives ~43 onset
// frames per second, enough resolution for beat lags down to 200 BPM.
const (
	frameSize = 2048
	hopSize   = 512
)

func hannWindow(n int) []float64 {
	window := make([]float64, n)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return window
}

// fft computes an in-place radix-2 decimation-in-time transform.
// len(re) must be a power of two.
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			for k := 0; k < length/2; k++ {
				evenRe, evenIm := re[start+k], im[start+k]
				oddRe := re[start+k+length/2]*curRe - im[start+k+length/2]*curIm
				oddIm := re[start+k+length/2]*curIm + im[start+k+length/2]*curRe
				re[start+k], im[start+k] = evenRe+oddRe, evenIm+oddIm
				re[start+k+length/2], im[start+k+length/2] = evenRe-oddRe, evenIm-oddIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}

// spectrogram returns magnitude spectra for overlapping Hann-windowed
// frames. Each row holds frameSize/2 bins.
func spectrogram(samples []float64) [][]float64 {
	if len(samples) < frameSize {
		return nil
	}
	window := hannWindow(frameSize)
	frameCount := 1 + (len(samples)-frameSize)/hopSize
	frames := make([][]float64, 0, frameCount)

	re := make([]float64, frameSize)
	im := make([]float64, frameSize)
	for f := 0; f < frameCount; f++ {
		start := f * hopSize
		for i := 0; i < frameSize; i++ {
			re[i] = samples[start+i] * window[i]
			im[i] = 0
		}
		fft(re, im)

		magnitudes := make([]float64, frameSize/2)
		for k := range magnitudes {
			magnitudes[k] = math.Hypot(re[k], im[k])
		}
		frames = append(frames, magnitudes)
	}
	return frames
}

// pearson computes the correlation coefficient between two equal-length
// vectors, or 0 when either side has no variance.
func pearson(a, b []float64) float64 {
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// median returns the middle value of an unsorted slice without mutating it.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
