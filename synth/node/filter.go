package node

import (
	"math"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// FilterType selects the multimode filter's response.
type FilterType int

// Filter responses.
const (
	FilterLowPass FilterType = iota
	FilterHighPass
	FilterBandPass
	FilterNotch
	FilterLowShelf
	FilterHighShelf

	filterTypeCount
)

// String returns the filter type name.
func (t FilterType) String() string {
	switch t {
	case FilterLowPass:
		return "low_pass"
	case FilterHighPass:
		return "high_pass"
	case FilterBandPass:
		return "band_pass"
	case FilterNotch:
		return "notch"
	case FilterLowShelf:
		return "low_shelf"
	case FilterHighShelf:
		return "high_shelf"
	default:
		return "unknown"
	}
}

// Frequency bounds for biquad design, as a floor in Hz and a ceiling
// relative to the sample rate.
const (
	minFilterFrequency      = 1.0
	maxFilterFrequencyRatio = 0.49
	defaultFilterQ          = 1 / math.Sqrt2
)

// Filter is a multimode biquad. Coefficients are recomputed once per
// block from the type, cutoff, resonance, and gain inputs; the gain is
// a linear amplitude, applied post-filter for the pass responses and
// folded into the shelf designs. A reset trigger clears the filter
// state at the trigger's frame.
type Filter struct {
	graph.Node
	coeffs biquadCoefficients
	d0, d1 float64
}

// Input slots of Filter.
const (
	filterAudio = iota
	filterKind
	filterReset
	filterCutoff
	filterResonance
	filterGain
)

// NewFilter returns a Filter reading the audio source, the response
// selector, a state reset trigger, the cutoff in Hz, the resonance as
// a quality factor, and the gain as a linear amplitude.
func NewFilter(audio, kind, reset, cutoff, resonance, gain *graph.Output) *Filter {
	f := &Filter{coeffs: biquadCoefficients{b0: 1}}
	f.InitNode(f, 6, 1)
	f.Plug(audio, filterAudio)
	f.Plug(kind, filterKind)
	f.Plug(reset, filterReset)
	f.Plug(cutoff, filterCutoff)
	f.Plug(resonance, filterResonance)
	f.Plug(gain, filterGain)

	return f
}

// ProcessBlock redesigns the biquad from the block's control values and
// filters the audio per frame.
func (f *Filter) ProcessBlock(n int) {
	out := f.Output(0)
	buf := out.Buffer()
	audio := f.Source(filterAudio)

	sr := f.SampleRate()
	kind := clampFilterType(f.Source(filterKind).At(0))
	cutoff := clamp(sanitize(f.Source(filterCutoff).At(0)), minFilterFrequency, maxFilterFrequencyRatio*sr)
	q := sanitize(f.Source(filterResonance).At(0))
	gain := math.Abs(sanitize(f.Source(filterGain).At(0)))

	post := 1.0
	designGain := gain
	if !kind.shelf() {
		post = gain
		designGain = 1
	}
	f.coeffs = designBiquad(kind, cutoff, q, designGain, sr)

	resetAt := -1
	if trig := f.Source(filterReset); trig.Triggered() {
		resetAt = trig.TriggerOffset()
	}

	c := f.coeffs
	for i := range frames(out, n) {
		if i == resetAt {
			f.d0, f.d1 = 0, 0
		}

		x := audio.At(i)
		y := c.b0*x + f.d0
		f.d0 = c.b1*x - c.a1*y + f.d1
		f.d1 = c.b2*x - c.a2*y

		buf[i] = sanitize(post * y)
	}

	// A single non-finite sample must not silence the filter for good.
	f.d0 = sanitize(f.d0)
	f.d1 = sanitize(f.d1)
}

// shelf reports whether the response folds its gain into the design.
func (t FilterType) shelf() bool {
	return t == FilterLowShelf || t == FilterHighShelf
}

// biquadCoefficients holds a normalized second-order section:
// feedforward b, feedback a, with a0 = 1.
type biquadCoefficients struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// designBiquad computes RBJ cookbook coefficients for the given
// response. The gain is a linear amplitude and only affects the shelf
// responses. Out-of-range parameters design a unity passthrough.
func designBiquad(kind FilterType, freq, q, gain, sampleRate float64) biquadCoefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquadCoefficients{b0: 1}
	}
	q = normalizedQ(q)

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case FilterLowPass:
		b0 = (1 - cw) / 2
		b1 = 1 - cw
		b2 = b0
		a0 = 1 + alpha
		a1 = -2 * cw
		a2 = 1 - alpha
	case FilterHighPass:
		b0 = (1 + cw) / 2
		b1 = -(1 + cw)
		b2 = b0
		a0 = 1 + alpha
		a1 = -2 * cw
		a2 = 1 - alpha
	case FilterBandPass:
		// Constant 0 dB peak gain, so resonance shapes width only.
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cw
		a2 = 1 - alpha
	case FilterNotch:
		b0 = 1
		b1 = -2 * cw
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cw
		a2 = 1 - alpha
	case FilterLowShelf:
		a := math.Sqrt(gain)
		beta := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cw + beta)
		b1 = 2 * a * ((a - 1) - (a+1)*cw)
		b2 = a * ((a + 1) - (a-1)*cw - beta)
		a0 = (a + 1) + (a-1)*cw + beta
		a1 = -2 * ((a - 1) + (a+1)*cw)
		a2 = (a + 1) + (a-1)*cw - beta
	case FilterHighShelf:
		a := math.Sqrt(gain)
		beta := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) + (a-1)*cw + beta)
		b1 = -2 * a * ((a - 1) + (a+1)*cw)
		b2 = a * ((a + 1) + (a-1)*cw - beta)
		a0 = (a + 1) - (a-1)*cw + beta
		a1 = 2 * ((a - 1) - (a+1)*cw)
		a2 = (a + 1) - (a-1)*cw - beta
	default:
		return biquadCoefficients{b0: 1}
	}

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || !isFinite(freq) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || !isFinite(q) {
		return defaultFilterQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquadCoefficients {
	if a0 == 0 || !isFinite(a0) {
		return biquadCoefficients{b0: 1}
	}

	return biquadCoefficients{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}
}

// clampFilterType maps a type control value onto a valid FilterType.
func clampFilterType(x float64) FilterType {
	t := FilterType(int(x))
	if t < 0 {
		return 0
	}
	if t >= filterTypeCount {
		return filterTypeCount - 1
	}

	return t
}
