package analysis

import (
	"math"
	"testing"
)

func rotatedProfile(profile []float64, tonic int) []float64 {
	chroma := make([]float64, 12)
	for i := range chroma {
		chroma[i] = profile[((i-tonic)%12+12)%12]
	}
	return chroma
}

func TestEstimateKeyRecoversAllMajorTonics(t *testing.T) {
	for tonic := 0; tonic < 12; tonic++ {
		pc, major, err := estimateKey(rotatedProfile(majorProfile, tonic))
		if err != nil {
			t.Fatalf("tonic %d: %v", tonic, err)
		}
		if pc != tonic || !major {
			t.Fatalf("tonic %d: got pc=%d major=%v", tonic, pc, major)
		}
	}
}

func TestEstimateKeyRecoversAllMinorTonics(t *testing.T) {
	for tonic := 0; tonic < 12; tonic++ {
		pc, major, err := estimateKey(rotatedProfile(minorProfile, tonic))
		if err != nil {
			t.Fatalf("tonic %d: %v", tonic, err)
		}
		if pc != tonic || major {
			t.Fatalf("tonic %d: got pc=%d major=%v", tonic, pc, major)
		}
	}
}

func TestEstimateKeySilentSegment(t *testing.T) {
	if _, _, err := estimateKey(make([]float64, 12)); err == nil {
		t.Fatal("expected error for silent chroma")
	}
}

func TestEstimateTempoFromImpulseTrain(t *testing.T) {
	// Impulses every 21 envelope frames at 22050/512 fps is ~123 BPM.
	envelope := make([]float64, 700)
	for i := 0; i < len(envelope); i += 21 {
		envelope[i] = 1
	}
	bpm, err := estimateTempo(envelope, 22050)
	if err != nil {
		t.Fatal(err)
	}
	if bpm < 118 || bpm > 128 {
		t.Fatalf("bpm: got %f, want ~123", bpm)
	}
}

func TestEstimateTempoResolvesFastPeriodsWithinRange(t *testing.T) {
	// Impulses every 10 frames is ~258 BPM; the estimator should lock
	// onto a harmonic inside the plausible range instead of failing.
	envelope := make([]float64, 700)
	for i := 0; i < len(envelope); i += 10 {
		envelope[i] = 1
	}
	bpm, err := estimateTempo(envelope, 22050)
	if err != nil {
		t.Fatal(err)
	}
	if bpm < minBPM || bpm > maxBPM {
		t.Fatalf("bpm out of range: %f", bpm)
	}
}

func TestEstimateTempoFlatEnvelope(t *testing.T) {
	envelope := make([]float64, 700)
	for i := range envelope {
		envelope[i] = 0.5
	}
	if _, err := estimateTempo(envelope, 22050); err == nil {
		t.Fatal("expected error for flat envelope")
	}
}

func TestEstimateTempoTooShort(t *testing.T) {
	if _, err := estimateTempo(make([]float64, 10), 22050); err == nil {
		t.Fatal("expected error for short envelope")
	}
}

func TestRMSEnergyBounds(t *testing.T) {
	if e := rmsEnergy(make([]float64, 22050)); e != 0 {
		t.Fatalf("silence energy: got %f, want 0", e)
	}

	loud := make([]float64, 22050)
	for i := range loud {
		loud[i] = 1
	}
	if e := rmsEnergy(loud); math.Abs(e-1) > 1e-9 {
		t.Fatalf("full-scale energy: got %f, want 1", e)
	}

	if e := rmsEnergy(nil); e != 0 {
		t.Fatalf("empty energy: got %f, want 0", e)
	}
}

func TestRMSEnergyClampsClippedInput(t *testing.T) {
	clipped := make([]float64, 22050)
	for i := range clipped {
		clipped[i] = 1.2
	}
	if e := rmsEnergy(clipped); e != 1 {
		t.Fatalf("clipped energy: got %f, want clamp to 1", e)
	}
}

// burstClip synthesizes tone bursts at a fixed tempo: 100ms decaying
// bursts of the given frequency, silence between them.
func burstClip(freq, bpm float64, seconds int) *Clip {
	const rate = 22050
	samples := make([]float64, rate*seconds)
	period := int(60.0 / bpm * rate)
	burstLen := rate / 10
	for start := 0; start < len(samples); start += period {
		for i := 0; i < burstLen && start+i < len(samples); i++ {
			decay := 1 - float64(i)/float64(burstLen)
			samples[start+i] = 0.8 * decay * math.Sin(2*math.Pi*freq*float64(i)/rate)
		}
	}
	return &Clip{SampleRate: rate, Samples: samples}
}

func TestAnalyzeClipSyntheticBursts(t *testing.T) {
	result, err := AnalyzeClip(burstClip(440, 120, 15))
	if err != nil {
		t.Fatal(err)
	}
	if result.Tempo < 112 || result.Tempo > 128 {
		t.Fatalf("tempo: got %f, want ~120", result.Tempo)
	}
	if result.Key == "" || result.KeyNotation == "" {
		t.Fatalf("key missing: %+v", result)
	}
	if result.Energy <= 0 || result.Energy > 1 {
		t.Fatalf("energy out of range: %f", result.Energy)
	}
}

func TestAnalyzeClipTooShort(t *testing.T) {
	clip := &Clip{SampleRate: 22050, Samples: make([]float64, 100)}
	if _, err := AnalyzeClip(clip); err == nil {
		t.Fatal("expected error for sub-frame clip")
	}
}

func TestSpectrogramFrameLayout(t *testing.T) {
	samples := make([]float64, frameSize+3*hopSize)
	frames := spectrogram(samples)
	if len(frames) != 4 {
		t.Fatalf("frames: got %d, want 4", len(frames))
	}
	if len(frames[0]) != frameSize/2 {
		t.Fatalf("bins: got %d, want %d", len(frames[0]), frameSize/2)
	}
}

func TestFFTRecoversSingleTone(t *testing.T) {
	const n = 1024
	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = math.Sin(2 * math.Pi * 16 * float64(i) / n)
	}
	fft(re, im)

	peak, peakBin := 0.0, 0
	for k := 0; k < n/2; k++ {
		if mag := math.Hypot(re[k], im[k]); mag > peak {
			peak, peakBin = mag, k
		}
	}
	if peakBin != 16 {
		t.Fatalf("peak bin: got %d, want 16", peakBin)
	}
}

func TestMedian(t *testing.T) {
	if m := median([]float64{3, 1, 2}); m != 2 {
		t.Fatalf("odd median: got %f", m)
	}
	if m := median([]float64{4, 1, 3, 2}); m != 2.5 {
		t.Fatalf("even median: got %f", m)
	}
	if m := median(nil); m != 0 {
		t.Fatalf("empty median: got %f", m)
	}
}
