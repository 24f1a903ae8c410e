package testutil

import "math"

// DeterministicSine renders length samples of a fixed-phase sine at
// freq Hz, for spectral assertions against rendered audio.
func DeterministicSine(freq, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}
