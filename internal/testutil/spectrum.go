package testutil

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// DominantFrequency returns the frequency in Hz of the strongest
// spectral peak in samples. The signal is Hann windowed before the
// transform and the peak bin is refined by parabolic interpolation on
// log magnitudes, so steady tones resolve well below one bin of error.
func DominantFrequency(samples []float64, sampleRate float64) (float64, error) {
	size := len(samples)
	if size < 4 {
		return 0, fmt.Errorf("dominant frequency needs at least 4 samples, got %d", size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return 0, fmt.Errorf("dominant frequency fft plan: %w", err)
	}

	in := make([]complex128, size)
	for i, s := range samples {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
		in[i] = complex(s*w, 0)
	}

	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return 0, fmt.Errorf("dominant frequency fft: %w", err)
	}

	peak := 1
	peakMag := 0.0
	for bin := 1; bin < size/2; bin++ {
		if mag := cmplx.Abs(out[bin]); mag > peakMag {
			peak, peakMag = bin, mag
		}
	}

	refined := float64(peak)
	if peak > 1 && peak < size/2-1 {
		m0 := math.Log(cmplx.Abs(out[peak-1]) + 1e-300)
		m1 := math.Log(peakMag + 1e-300)
		m2 := math.Log(cmplx.Abs(out[peak+1]) + 1e-300)

		if denom := m0 - 2*m1 + m2; denom != 0 {
			refined += 0.5 * (m0 - m2) / denom
		}
	}

	return refined * sampleRate / float64(size), nil
}
