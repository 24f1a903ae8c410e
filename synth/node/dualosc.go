package node

import (
	"math"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// DualOscillator runs two oscillators that frequency-modulate each
// other under a shared cross modulation amount. Port 0 carries the
// first oscillator, port 1 the second. A reset trigger restarts both
// phases at the trigger's frame.
type DualOscillator struct {
	graph.Node
	phase1, phase2 float64
	value1, value2 float64
	rng            noiseState
}

// Input slots of DualOscillator.
const (
	dualOscWaveform1 = iota
	dualOscFrequency1
	dualOscWaveform2
	dualOscFrequency2
	dualOscCrossMod
	dualOscReset
)

// NewDualOscillator returns a DualOscillator reading per-oscillator
// waveform and frequency inputs, the cross modulation amount, and a
// phase reset trigger.
func NewDualOscillator(waveform1, frequency1, waveform2, frequency2, crossMod, reset *graph.Output) *DualOscillator {
	d := &DualOscillator{rng: noiseSeed}
	d.InitNode(d, 6, 2)
	d.Plug(waveform1, dualOscWaveform1)
	d.Plug(frequency1, dualOscFrequency1)
	d.Plug(waveform2, dualOscWaveform2)
	d.Plug(frequency2, dualOscFrequency2)
	d.Plug(crossMod, dualOscCrossMod)
	d.Plug(reset, dualOscReset)

	return d
}

// ProcessBlock advances both oscillators and writes one sample of each
// per frame.
func (d *DualOscillator) ProcessBlock(n int) {
	first := d.Output(0)
	second := d.Output(1)
	buf1 := first.Buffer()
	buf2 := second.Buffer()

	wave1 := clampWaveform(d.Source(dualOscWaveform1).At(0))
	wave2 := clampWaveform(d.Source(dualOscWaveform2).At(0))
	freq1 := d.Source(dualOscFrequency1)
	freq2 := d.Source(dualOscFrequency2)
	cross := d.Source(dualOscCrossMod)

	resetAt := -1
	if trig := d.Source(dualOscReset); trig.Triggered() {
		resetAt = trig.TriggerOffset()
	}

	sr := d.SampleRate()
	for i := range frames(first, n) {
		if i == resetAt {
			d.phase1, d.phase2 = 0, 0
			d.value1, d.value2 = 0, 0
		}

		d.value1 = waveformSample(wave1, d.phase1, &d.rng)
		d.value2 = waveformSample(wave2, d.phase2, &d.rng)
		buf1[i] = d.value1
		buf2[i] = d.value2

		// Each phase advance is modulated by the other oscillator's
		// current sample.
		cm := cross.At(i)
		d.phase1 += sanitize(freq1.At(i) * (1 + cm*d.value2) / sr)
		d.phase2 += sanitize(freq2.At(i) * (1 + cm*d.value1) / sr)
		d.phase1 -= math.Floor(d.phase1)
		d.phase2 -= math.Floor(d.phase2)
	}
}
