package node

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// Formant is one resonant band of a vocal formant bank: a bandpass
// biquad at a center frequency input, scaled by a gain input. The
// coefficients follow the frequency and resonance once per block; the
// gain is applied per frame so morphing stays smooth.
type Formant struct {
	graph.Node
	coeffs biquadCoefficients
	d0, d1 float64
}

// Input slots of Formant.
const (
	formantAudio = iota
	formantGain
	formantResonance
	formantFrequency
)

// NewFormant returns a Formant reading the audio source, the band gain,
// the resonance as a quality factor, and the center frequency in Hz.
func NewFormant(audio, gain, resonance, frequency *graph.Output) *Formant {
	f := &Formant{}
	f.InitNode(f, 4, 1)
	f.Plug(audio, formantAudio)
	f.Plug(gain, formantGain)
	f.Plug(resonance, formantResonance)
	f.Plug(frequency, formantFrequency)

	return f
}

// ProcessBlock filters the audio through the band and writes the scaled
// result per frame.
func (f *Formant) ProcessBlock(n int) {
	out := f.Output(0)
	buf := out.Buffer()

	audio := f.Source(formantAudio)
	gain := f.Source(formantGain)

	sr := f.SampleRate()
	freq := clamp(sanitize(f.Source(formantFrequency).At(0)), minFilterFrequency, maxFilterFrequencyRatio*sr)
	q := sanitize(f.Source(formantResonance).At(0))
	f.coeffs = designBiquad(FilterBandPass, freq, q, 1, sr)

	c := f.coeffs
	for i := range frames(out, n) {
		x := audio.At(i)
		y := c.b0*x + f.d0
		f.d0 = c.b1*x - c.a1*y + f.d1
		f.d1 = c.b2*x - c.a2*y

		buf[i] = sanitize(gain.At(i) * y)
	}

	f.d0 = sanitize(f.d0)
	f.d1 = sanitize(f.d1)
}

// FormantManager mixes a bank of formant bands with a passthrough copy
// of the dry signal: out = passthrough*audio + sum of plugged bands.
type FormantManager struct {
	graph.Node
}

// Input slots of FormantManager.
const (
	formantManagerAudio = iota
	formantManagerPassthrough
	formantManagerFirst
)

// NewFormantManager returns a FormantManager with count band slots,
// reading the dry audio source and the passthrough gain. Band outputs
// are attached with PlugBand.
func NewFormantManager(count int, audio, passthrough *graph.Output) *FormantManager {
	if count < 1 {
		panic(fmt.Sprintf("synth: formant manager needs at least one band: %d", count))
	}

	m := &FormantManager{}
	m.InitNode(m, formantManagerFirst+count, 1)
	m.Plug(audio, formantManagerAudio)
	m.Plug(passthrough, formantManagerPassthrough)

	return m
}

// BandCount returns the number of band slots.
func (m *FormantManager) BandCount() int { return m.InputCount() - formantManagerFirst }

// PlugBand connects source as band i's signal.
func (m *FormantManager) PlugBand(i int, source *graph.Output) {
	if i < 0 || i >= m.BandCount() {
		panic(fmt.Sprintf("synth: formant band out of range [0, %d): %d", m.BandCount(), i))
	}

	m.Plug(source, formantManagerFirst+i)
}

// ProcessBlock writes the passthrough plus the sum of all bands.
func (m *FormantManager) ProcessBlock(n int) {
	out := m.Output(0)
	buf := out.Buffer()

	audio := m.Source(formantManagerAudio)
	pass := m.Source(formantManagerPassthrough)

	dst, audioOut := audioBuffer(out, n)
	if ab, ok := audioBuffer(audio, n); audioOut && ok && pass.ControlRate() {
		vecmath.ScaleBlock(dst, ab, pass.At(0))
	} else {
		for i := range frames(out, n) {
			buf[i] = pass.At(i) * audio.At(i)
		}
	}

	for slot := formantManagerFirst; slot < m.InputCount(); slot++ {
		if !m.Plugged(slot) {
			continue
		}

		src := m.Source(slot)
		if audioOut {
			if sb, ok := audioBuffer(src, n); ok {
				vecmath.AddBlockInPlace(dst, sb)
				continue
			}
		}

		for i := range frames(out, n) {
			buf[i] += src.At(i)
		}
	}
}
