package node

import (
	"math"

	"github.com/cwbudde/algo-synth/synth/graph"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func testConfig() graph.Config {
	return graph.Config{SampleRate: 48000, BlockSize: 64}
}

// sourceNode plays a sample pattern on repeat, so tests can drive nodes
// with impulses and exact periodic signals.
type sourceNode struct {
	graph.Node
	samples []float64
	pos     int
}

func newSourceNode(samples ...float64) *sourceNode {
	s := &sourceNode{samples: samples}
	s.InitNode(s, 0, 1)

	return s
}

func (s *sourceNode) ProcessBlock(n int) {
	out := s.Output(0)
	buf := out.Buffer()
	for i := range frames(out, n) {
		buf[i] = s.samples[s.pos%len(s.samples)]
		s.pos++
	}
}

// rms returns the root mean square of a slice.
func rms(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(x)))
}
