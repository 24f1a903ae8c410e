package node

import (
	"math"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// Value broadcasts a host-settable scalar into the graph. Set takes
// effect at the start of the next processed block.
type Value struct {
	graph.Node
	value float64
}

// NewValue returns a Value holding the given initial scalar.
func NewValue(value float64) *Value {
	v := &Value{value: value}
	v.InitNode(v, 0, 1)

	return v
}

// Set replaces the broadcast scalar.
func (v *Value) Set(value float64) { v.value = value }

// Value returns the scalar most recently passed to Set.
func (v *Value) Value() float64 { return v.value }

// ProcessBlock fills the output with the current scalar.
func (v *Value) ProcessBlock(n int) {
	out := v.Output(0)
	if v.ControlRate() {
		out.Set(v.value)
		return
	}

	buf := out.Buffer()
	for i := range n {
		buf[i] = v.value
	}
}

// smoothingCutoffHz sets the one-pole lag applied by SmoothValue. Low
// enough to swallow zipper noise from coarse host updates, high enough
// that wheel gestures still feel immediate.
const smoothingCutoffHz = 5.0

// SmoothValue is a Value that ramps toward its target with a one-pole
// lag instead of stepping, so abrupt host parameter changes do not
// click.
type SmoothValue struct {
	graph.Node
	target  float64
	current float64
}

// NewSmoothValue returns a SmoothValue starting at the given scalar.
func NewSmoothValue(value float64) *SmoothValue {
	s := &SmoothValue{target: value, current: value}
	s.InitNode(s, 0, 1)

	return s
}

// Set replaces the ramp target. The output approaches it over the
// following blocks.
func (s *SmoothValue) Set(target float64) { s.target = target }

// Value returns the current ramp target.
func (s *SmoothValue) Value() float64 { return s.target }

// ProcessBlock advances the ramp and fills the output.
func (s *SmoothValue) ProcessBlock(n int) {
	decay := math.Exp(-2.0 * math.Pi * smoothingCutoffHz / s.SampleRate())

	out := s.Output(0)
	if s.ControlRate() {
		// One step per block, scaled to cover n samples.
		s.current = s.target + (s.current-s.target)*math.Pow(decay, float64(n))
		out.Set(s.current)

		return
	}

	buf := out.Buffer()
	for i := range n {
		s.current = s.target + (s.current-s.target)*decay
		buf[i] = s.current
	}
}
