package node

import (
	"math"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// DistortionType selects a waveshaping curve.
type DistortionType int

// Distortion types.
const (
	// DistortionTanh saturates softly, approaching the threshold
	// asymptotically.
	DistortionTanh DistortionType = iota
	// DistortionHardClip clips at the threshold.
	DistortionHardClip
	// DistortionFold reflects the signal back off the threshold.
	DistortionFold

	distortionTypeCount
)

// String returns the distortion type name.
func (t DistortionType) String() string {
	switch t {
	case DistortionTanh:
		return "tanh"
	case DistortionHardClip:
		return "hard_clip"
	case DistortionFold:
		return "fold"
	default:
		return "unknown"
	}
}

// minDistortionThreshold keeps the shaping curves away from a zero
// threshold, where every curve collapses to silence.
const minDistortionThreshold = 1e-4

// Distortion applies a waveshaping curve around a threshold input. The
// type input selects the curve by number.
type Distortion struct {
	graph.Node
}

// Input slots of Distortion.
const (
	distortionAudio = iota
	distortionKind
	distortionThreshold
)

// NewDistortion returns a Distortion reading the audio source, the
// curve selector, and the shaping threshold.
func NewDistortion(audio, kind, threshold *graph.Output) *Distortion {
	d := &Distortion{}
	d.InitNode(d, 3, 1)
	d.Plug(audio, distortionAudio)
	d.Plug(kind, distortionKind)
	d.Plug(threshold, distortionThreshold)

	return d
}

// ProcessBlock writes the shaped signal per frame.
func (d *Distortion) ProcessBlock(n int) {
	out := d.Output(0)
	buf := out.Buffer()

	audio := d.Source(distortionAudio)
	threshold := d.Source(distortionThreshold)
	kind := clampDistortionType(d.Source(distortionKind).At(0))

	for i := range frames(out, n) {
		t := sanitize(threshold.At(i))
		if t < minDistortionThreshold {
			t = minDistortionThreshold
		}

		buf[i] = shapeSample(kind, sanitize(audio.At(i)), t)
	}
}

// shapeSample applies one distortion curve around threshold t.
func shapeSample(kind DistortionType, x, t float64) float64 {
	switch kind {
	case DistortionTanh:
		return t * math.Tanh(x/t)
	case DistortionHardClip:
		return clamp(x, -t, t)
	case DistortionFold:
		a := math.Abs(x)
		if a <= t {
			return x
		}
		r := 2*t - a
		if r < -t {
			r = -t
		}
		return math.Copysign(r, x)
	default:
		return x
	}
}

// clampDistortionType maps a type control value onto a valid
// DistortionType.
func clampDistortionType(x float64) DistortionType {
	t := DistortionType(int(x))
	if t < 0 {
		return 0
	}
	if t >= distortionTypeCount {
		return distortionTypeCount - 1
	}

	return t
}
