package node

import "math"

// midiZeroFrequency is the frequency of MIDI note 0 with A4 tuned to 440 Hz.
const midiZeroFrequency = 8.1757989156

// midiToFrequency converts a (fractional) MIDI note number to Hz.
func midiToFrequency(note float64) float64 {
	return midiZeroFrequency * math.Exp2(note/12.0)
}

// dbToAmp converts a decibel value to a linear amplitude factor.
func dbToAmp(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}

	return x
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// sanitize maps non-finite values to zero so a single bad sample cannot
// poison downstream filter state.
func sanitize(x float64) float64 {
	if !isFinite(x) {
		return 0
	}

	return x
}

// noiseState is a tiny xorshift64* generator. Each noise-producing node
// owns one so voices stay independent and block-deterministic.
type noiseState uint64

func (s *noiseState) next() float64 {
	x := *s
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*s = x

	// Map the top 53 bits to [-1, 1).
	return float64(x>>11)/float64(1<<52) - 1.0
}
