package node

import (
	"math"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// Waveform identifies an oscillator shape.
type Waveform int

// Oscillator waveforms.
const (
	WaveformSine Waveform = iota
	WaveformTriangle
	WaveformSquare
	WaveformDownSaw
	WaveformUpSaw
	WaveformThreeStep
	WaveformFourStep
	WaveformEightStep
	WaveformWhiteNoise

	waveformCount
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case WaveformSine:
		return "sine"
	case WaveformTriangle:
		return "triangle"
	case WaveformSquare:
		return "square"
	case WaveformDownSaw:
		return "down_saw"
	case WaveformUpSaw:
		return "up_saw"
	case WaveformThreeStep:
		return "three_step"
	case WaveformFourStep:
		return "four_step"
	case WaveformEightStep:
		return "eight_step"
	case WaveformWhiteNoise:
		return "white_noise"
	default:
		return "unknown"
	}
}

// Oscillator generates one of a fixed set of waveforms at a frequency
// input, with a phase accumulator in [0, 1). The waveform input selects
// the shape by number; a reset trigger restarts the phase at the
// trigger's frame.
type Oscillator struct {
	graph.Node
	phase float64
	rng   noiseState
}

// Input slots of Oscillator.
const (
	oscWaveform = iota
	oscFrequency
	oscReset
)

// NewOscillator returns an Oscillator reading waveform, frequency in
// Hz, and a phase reset trigger.
func NewOscillator(waveform, frequency, reset *graph.Output) *Oscillator {
	o := &Oscillator{rng: noiseSeed}
	o.InitNode(o, 3, 1)
	o.Plug(waveform, oscWaveform)
	o.Plug(frequency, oscFrequency)
	o.Plug(reset, oscReset)

	return o
}

// ProcessBlock advances the phase and writes the waveform per frame.
func (o *Oscillator) ProcessBlock(n int) {
	out := o.Output(0)
	buf := out.Buffer()

	wave := clampWaveform(o.Source(oscWaveform).At(0))
	freq := o.Source(oscFrequency)

	resetAt := -1
	if trig := o.Source(oscReset); trig.Triggered() {
		resetAt = trig.TriggerOffset()
	}

	// Control-rate oscillators advance a whole block per step, keeping
	// LFO timing correct at block resolution.
	dt := 1.0
	if out.ControlRate() {
		dt = float64(n)
		if resetAt >= 0 {
			resetAt = 0
		}
	}

	sr := o.SampleRate()
	for i := range frames(out, n) {
		if i == resetAt {
			o.phase = 0
		}

		buf[i] = waveformSample(wave, o.phase, &o.rng)
		o.phase += sanitize(dt * freq.At(i) / sr)
		o.phase -= math.Floor(o.phase)
	}
}

// noiseSeed is the initial xorshift state of noise-producing nodes.
const noiseSeed noiseState = 0x9e3779b97f4a7c15

// waveformSample evaluates a waveform at a phase in [0, 1).
func waveformSample(w Waveform, phase float64, rng *noiseState) float64 {
	switch w {
	case WaveformSine:
		return math.Sin(2 * math.Pi * phase)
	case WaveformTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	case WaveformSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveformDownSaw:
		return 1 - 2*phase
	case WaveformUpSaw:
		return 2*phase - 1
	case WaveformThreeStep:
		return stepSample(phase, 3)
	case WaveformFourStep:
		return stepSample(phase, 4)
	case WaveformEightStep:
		return stepSample(phase, 8)
	case WaveformWhiteNoise:
		return rng.next()
	default:
		return 0
	}
}

// stepSample quantizes a phase into equally spaced levels across
// [-1, 1].
func stepSample(phase float64, steps int) float64 {
	k := math.Floor(phase * float64(steps))
	if k > float64(steps-1) {
		k = float64(steps - 1)
	}

	return 2*k/float64(steps-1) - 1
}

// clampWaveform maps a waveform control value onto a valid Waveform.
func clampWaveform(x float64) Waveform {
	w := Waveform(int(x))
	if w < 0 {
		return 0
	}
	if w >= waveformCount {
		return waveformCount - 1
	}

	return w
}
