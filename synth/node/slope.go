package node

import (
	"math"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// LinearSlope glides toward its target input at a rate that covers the
// distance in the run input's seconds. A jump trigger snaps straight to
// the target at the trigger's frame; so does a non-positive run time.
// Pitch portamento is built from this node.
type LinearSlope struct {
	graph.Node
	value      float64
	lastTarget float64
	increment  float64
}

// Input slots of LinearSlope.
const (
	slopeTarget = iota
	slopeRun
	slopeJump
)

// NewLinearSlope returns a LinearSlope reading target, run seconds, and
// a jump trigger.
func NewLinearSlope(target, run, jump *graph.Output) *LinearSlope {
	s := &LinearSlope{lastTarget: math.NaN()}
	s.InitNode(s, 3, 1)
	s.Plug(target, slopeTarget)
	s.Plug(run, slopeRun)
	s.Plug(jump, slopeJump)

	return s
}

// ProcessBlock advances the glide and writes the slope into the output.
func (s *LinearSlope) ProcessBlock(n int) {
	out := s.Output(0)
	buf := out.Buffer()

	target := s.Source(slopeTarget).At(0)
	run := s.Source(slopeRun).At(0)

	jumpAt := -1
	if trig := s.Source(slopeJump); trig.Triggered() {
		jumpAt = trig.TriggerOffset()
	}
	if run <= 0 {
		jumpAt = 0
	}

	if target != s.lastTarget {
		steps := run * s.SampleRate()
		if steps >= 1 {
			s.increment = (target - s.value) / steps
		} else {
			s.increment = target - s.value
		}

		s.lastTarget = target
	}

	for i := range frames(out, n) {
		if i == jumpAt {
			s.value = target
		}

		if s.value != target {
			s.value += s.increment
			overshot := (s.increment > 0 && s.value > target) ||
				(s.increment < 0 && s.value < target)
			if overshot {
				s.value = target
			}
		}

		buf[i] = s.value
	}
}
