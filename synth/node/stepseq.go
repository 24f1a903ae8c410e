package node

import (
	"fmt"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// StepGenerator cycles through a bank of step value inputs at a step
// frequency, holding each step's value on the output until the next
// step. The number of active steps is itself an input, so sequences can
// shrink and grow live.
type StepGenerator struct {
	graph.Node
	capacity int
	position int
	offset   float64
}

// Input slots of StepGenerator.
const (
	stepNumSteps = iota
	stepFrequency
	stepFirst
)

// NewStepGenerator returns a StepGenerator with the given step
// capacity, reading the active step count and the step frequency in
// Hz. Step value sources are attached with PlugStep.
func NewStepGenerator(capacity int, numSteps, frequency *graph.Output) *StepGenerator {
	if capacity < 1 {
		panic(fmt.Sprintf("synth: step generator capacity must be positive: %d", capacity))
	}

	s := &StepGenerator{capacity: capacity}
	s.InitNode(s, stepFirst+capacity, 1)
	s.Plug(numSteps, stepNumSteps)
	s.Plug(frequency, stepFrequency)

	return s
}

// Capacity returns the number of step slots.
func (s *StepGenerator) Capacity() int { return s.capacity }

// PlugStep connects source as the value of step i.
func (s *StepGenerator) PlugStep(i int, source *graph.Output) {
	if i < 0 || i >= s.capacity {
		panic(fmt.Sprintf("synth: step index out of range [0, %d): %d", s.capacity, i))
	}

	s.Plug(source, stepFirst+i)
}

// ProcessBlock advances the sequence and writes the held step value per
// frame.
func (s *StepGenerator) ProcessBlock(n int) {
	out := s.Output(0)
	buf := out.Buffer()

	count := int(s.Source(stepNumSteps).At(0))
	if count < 1 {
		count = 1
	}
	if count > s.capacity {
		count = s.capacity
	}

	freq := s.Source(stepFrequency)

	dt := 1.0
	if out.ControlRate() {
		dt = float64(n)
	}

	sr := s.SampleRate()
	for i := range frames(out, n) {
		if s.position >= count {
			s.position = 0
		}

		buf[i] = s.Source(stepFirst + s.position).At(i)

		s.offset += sanitize(dt * freq.At(i) / sr)
		for s.offset >= 1 {
			s.offset--
			s.position = (s.position + 1) % count
		}
	}
}
