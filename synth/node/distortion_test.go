package node

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-synth/synth/graph"
)

func shapeOne(t *testing.T, kind DistortionType, threshold float64, input float64) float64 {
	t.Helper()

	r := graph.NewRouter(testConfig())

	src := newSourceNode(input)
	d := NewDistortion(
		src.Output(0),
		graph.NewControlOutput(float64(kind)),
		graph.NewControlOutput(threshold),
	)
	r.Add(src)
	r.Add(d)

	r.ProcessBlock(8)

	return d.Output(0).At(0)
}

func TestDistortionTanhStaysBelowThreshold(t *testing.T) {
	got := shapeOne(t, DistortionTanh, 0.5, 10)
	if got >= 0.5 || got < 0.49 {
		t.Fatalf("tanh(10) = %v, want just under the 0.5 threshold", got)
	}

	small := shapeOne(t, DistortionTanh, 0.5, 0.01)
	if !approxEqual(small, 0.01, 1e-4) {
		t.Fatalf("tanh(0.01) = %v, want nearly linear for small input", small)
	}
}

func TestDistortionHardClip(t *testing.T) {
	if got := shapeOne(t, DistortionHardClip, 0.5, 2); got != 0.5 {
		t.Fatalf("clip(2) = %v, want 0.5", got)
	}
	if got := shapeOne(t, DistortionHardClip, 0.5, -2); got != -0.5 {
		t.Fatalf("clip(-2) = %v, want -0.5", got)
	}
	if got := shapeOne(t, DistortionHardClip, 0.5, 0.25); got != 0.25 {
		t.Fatalf("clip(0.25) = %v, want 0.25", got)
	}
}

func TestDistortionFoldReflects(t *testing.T) {
	if got := shapeOne(t, DistortionFold, 0.5, 0.75); !approxEqual(got, 0.25, 1e-12) {
		t.Fatalf("fold(0.75) = %v, want 0.25", got)
	}
	if got := shapeOne(t, DistortionFold, 0.5, -0.75); !approxEqual(got, -0.25, 1e-12) {
		t.Fatalf("fold(-0.75) = %v, want -0.25", got)
	}
	if got := shapeOne(t, DistortionFold, 0.5, 0.25); got != 0.25 {
		t.Fatalf("fold(0.25) = %v, want 0.25", got)
	}
	if got := shapeOne(t, DistortionFold, 0.5, 5); got < -0.5 || got > 0.5 {
		t.Fatalf("fold(5) = %v, want within the threshold", got)
	}
}

func TestDistortionNonFiniteInputYieldsFinite(t *testing.T) {
	if got := shapeOne(t, DistortionTanh, 0.5, math.NaN()); !isFinite(got) {
		t.Fatalf("tanh(NaN) = %v, want finite", got)
	}
	if got := shapeOne(t, DistortionHardClip, 0.5, math.Inf(1)); !isFinite(got) {
		t.Fatalf("clip(+Inf) = %v, want finite", got)
	}
}
