package node

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// Add sums two inputs sample by sample.
type Add struct {
	graph.Node
}

// NewAdd returns an Add reading the two given sources. Either may be
// nil to leave the slot silent.
func NewAdd(a, b *graph.Output) *Add {
	n := &Add{}
	n.InitNode(n, 2, 1)
	n.Plug(a, 0)
	n.Plug(b, 1)

	return n
}

// ProcessBlock writes a+b into the output.
func (a *Add) ProcessBlock(n int) {
	out := a.Output(0)
	left, right := a.Source(0), a.Source(1)

	if buf, ok := audioBuffer(out, n); ok {
		lb, lok := audioBuffer(left, n)
		rb, rok := audioBuffer(right, n)
		if lok && rok {
			vecmath.AddBlock(buf, lb, rb)
			return
		}
	}

	buf := out.Buffer()
	for i := range frames(out, n) {
		buf[i] = left.At(i) + right.At(i)
	}
}

// Multiply multiplies two inputs sample by sample.
type Multiply struct {
	graph.Node
}

// NewMultiply returns a Multiply reading the two given sources.
func NewMultiply(a, b *graph.Output) *Multiply {
	n := &Multiply{}
	n.InitNode(n, 2, 1)
	n.Plug(a, 0)
	n.Plug(b, 1)

	return n
}

// ProcessBlock writes a*b into the output.
func (m *Multiply) ProcessBlock(n int) {
	out := m.Output(0)
	left, right := m.Source(0), m.Source(1)

	if buf, ok := audioBuffer(out, n); ok {
		lb, lok := audioBuffer(left, n)
		rb, rok := audioBuffer(right, n)
		if lok && rok {
			vecmath.MulBlock(buf, lb, rb)
			return
		}
	}

	buf := out.Buffer()
	for i := range frames(out, n) {
		buf[i] = left.At(i) * right.At(i)
	}
}

// Interpolate blends linearly between two inputs under a fraction
// input: out = from + fraction*(to-from).
type Interpolate struct {
	graph.Node
}

// Input slots of Interpolate.
const (
	interpolateFrom = iota
	interpolateTo
	interpolateFraction
)

// NewInterpolate returns an Interpolate blending from and to under
// fraction.
func NewInterpolate(from, to, fraction *graph.Output) *Interpolate {
	n := &Interpolate{}
	n.InitNode(n, 3, 1)
	n.Plug(from, interpolateFrom)
	n.Plug(to, interpolateTo)
	n.Plug(fraction, interpolateFraction)

	return n
}

// ProcessBlock writes the blended signal into the output.
func (p *Interpolate) ProcessBlock(n int) {
	out := p.Output(0)
	from := p.Source(interpolateFrom)
	to := p.Source(interpolateTo)
	fraction := p.Source(interpolateFraction)

	buf := out.Buffer()
	for i := range frames(out, n) {
		f := from.At(i)
		buf[i] = f + fraction.At(i)*(to.At(i)-f)
	}
}

// Clamp restricts its input to a fixed [lo, hi] range.
type Clamp struct {
	graph.Node
	lo, hi float64
}

// NewClamp returns a Clamp bounding source to [lo, hi].
func NewClamp(lo, hi float64, source *graph.Output) *Clamp {
	n := &Clamp{lo: lo, hi: hi}
	n.InitNode(n, 1, 1)
	n.Plug(source, 0)

	return n
}

// ProcessBlock writes the bounded signal into the output.
func (c *Clamp) ProcessBlock(n int) {
	out := c.Output(0)
	src := c.Source(0)

	buf := out.Buffer()
	for i := range frames(out, n) {
		buf[i] = clamp(src.At(i), c.lo, c.hi)
	}
}

// Inverse computes 1/x per sample. A zero input yields zero instead of
// an infinity.
type Inverse struct {
	graph.Node
}

// NewInverse returns an Inverse reading the given source.
func NewInverse(source *graph.Output) *Inverse {
	n := &Inverse{}
	n.InitNode(n, 1, 1)
	n.Plug(source, 0)

	return n
}

// ProcessBlock writes the reciprocal signal into the output.
func (v *Inverse) ProcessBlock(n int) {
	out := v.Output(0)
	src := v.Source(0)

	buf := out.Buffer()
	for i := range frames(out, n) {
		x := src.At(i)
		if x == 0 {
			buf[i] = 0
			continue
		}
		buf[i] = sanitize(1.0 / x)
	}
}

// MidiScale converts MIDI note numbers to frequencies in Hz.
type MidiScale struct {
	graph.Node
}

// NewMidiScale returns a MidiScale reading the given source.
func NewMidiScale(source *graph.Output) *MidiScale {
	n := &MidiScale{}
	n.InitNode(n, 1, 1)
	n.Plug(source, 0)

	return n
}

// ProcessBlock writes the frequency signal into the output.
func (m *MidiScale) ProcessBlock(n int) {
	out := m.Output(0)
	src := m.Source(0)

	buf := out.Buffer()
	for i := range frames(out, n) {
		buf[i] = sanitize(midiToFrequency(src.At(i)))
	}
}

// MagnitudeScale converts decibel values to linear amplitude factors.
type MagnitudeScale struct {
	graph.Node
}

// NewMagnitudeScale returns a MagnitudeScale reading the given source.
func NewMagnitudeScale(source *graph.Output) *MagnitudeScale {
	n := &MagnitudeScale{}
	n.InitNode(n, 1, 1)
	n.Plug(source, 0)

	return n
}

// ProcessBlock writes the amplitude signal into the output.
func (m *MagnitudeScale) ProcessBlock(n int) {
	out := m.Output(0)
	src := m.Source(0)

	buf := out.Buffer()
	for i := range frames(out, n) {
		buf[i] = sanitize(dbToAmp(src.At(i)))
	}
}

// Resonance bounds mapped by ResonanceScale.
const (
	minResonanceQ = 0.5
	maxResonanceQ = 15.0
)

// ResonanceScale maps a normalized [0, 1] resonance control onto a
// filter Q in [0.5, 15] along an exponential curve, so equal control
// moves feel equally strong across the range.
type ResonanceScale struct {
	graph.Node
}

// NewResonanceScale returns a ResonanceScale reading the given source.
func NewResonanceScale(source *graph.Output) *ResonanceScale {
	n := &ResonanceScale{}
	n.InitNode(n, 1, 1)
	n.Plug(source, 0)

	return n
}

// ProcessBlock writes the Q signal into the output.
func (r *ResonanceScale) ProcessBlock(n int) {
	out := r.Output(0)
	src := r.Source(0)
	ratio := maxResonanceQ / minResonanceQ

	buf := out.Buffer()
	for i := range frames(out, n) {
		buf[i] = sanitize(minResonanceQ * math.Pow(ratio, src.At(i)))
	}
}

// BilinearInterpolate blends four corner inputs under x/y position
// inputs, both in [0, 1]: x blends left to right, y top to bottom.
type BilinearInterpolate struct {
	graph.Node
}

// Input slots of BilinearInterpolate.
const (
	bilinearTopLeft = iota
	bilinearTopRight
	bilinearBottomLeft
	bilinearBottomRight
	bilinearX
	bilinearY
)

// NewBilinearInterpolate returns a BilinearInterpolate over the four
// corner sources, positioned by x and y.
func NewBilinearInterpolate(topLeft, topRight, bottomLeft, bottomRight, x, y *graph.Output) *BilinearInterpolate {
	n := &BilinearInterpolate{}
	n.InitNode(n, 6, 1)
	n.Plug(topLeft, bilinearTopLeft)
	n.Plug(topRight, bilinearTopRight)
	n.Plug(bottomLeft, bilinearBottomLeft)
	n.Plug(bottomRight, bilinearBottomRight)
	n.Plug(x, bilinearX)
	n.Plug(y, bilinearY)

	return n
}

// ProcessBlock writes the blended signal into the output.
func (b *BilinearInterpolate) ProcessBlock(n int) {
	out := b.Output(0)
	tl := b.Source(bilinearTopLeft)
	tr := b.Source(bilinearTopRight)
	bl := b.Source(bilinearBottomLeft)
	br := b.Source(bilinearBottomRight)
	xs := b.Source(bilinearX)
	ys := b.Source(bilinearY)

	buf := out.Buffer()
	for i := range frames(out, n) {
		x, y := xs.At(i), ys.At(i)
		top := tl.At(i) + x*(tr.At(i)-tl.At(i))
		bottom := bl.At(i) + x*(br.At(i)-bl.At(i))
		buf[i] = top + y*(bottom-top)
	}
}

// frames returns how many samples of an output a block of n covers.
// Control-rate outputs hold a single broadcast sample.
func frames(o *graph.Output, n int) int {
	if o.ControlRate() {
		return 1
	}

	return n
}

// audioBuffer returns the first n samples of an output's buffer when it
// carries audio-rate data, enabling vectorized block kernels.
func audioBuffer(o *graph.Output, n int) ([]float64, bool) {
	if o.ControlRate() {
		return nil, false
	}
	buf := o.Buffer()
	if len(buf) < n {
		return nil, false
	}

	return buf[:n], true
}
