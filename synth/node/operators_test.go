package node

import (
	"testing"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// --- arithmetic ---

func TestAddMixedRates(t *testing.T) {
	r := graph.NewRouter(testConfig())

	src := newSourceNode(1, 2, 3, 4)
	sum := NewAdd(src.Output(0), graph.NewControlOutput(10))
	r.Add(src)
	r.Add(sum)

	r.ProcessBlock(4)

	want := []float64{11, 12, 13, 14}
	for i, w := range want {
		if got := sum.Output(0).At(i); got != w {
			t.Fatalf("sum[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestAddAudioRateUsesWholeBlock(t *testing.T) {
	r := graph.NewRouter(testConfig())

	a := newSourceNode(1, -1)
	b := newSourceNode(0.5)
	sum := NewAdd(a.Output(0), b.Output(0))
	r.Add(a)
	r.Add(b)
	r.Add(sum)

	r.ProcessBlock(64)

	for i := range 64 {
		want := 0.5 + 1.0
		if i%2 == 1 {
			want = 0.5 - 1.0
		}
		if got := sum.Output(0).At(i); got != want {
			t.Fatalf("sum[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestMultiply(t *testing.T) {
	r := graph.NewRouter(testConfig())

	a := newSourceNode(2, 3)
	m := NewMultiply(a.Output(0), graph.NewControlOutput(0.5))
	r.Add(a)
	r.Add(m)

	r.ProcessBlock(2)

	if got := m.Output(0).At(0); got != 1 {
		t.Fatalf("product[0] = %v, want 1", got)
	}
	if got := m.Output(0).At(1); got != 1.5 {
		t.Fatalf("product[1] = %v, want 1.5", got)
	}
}

func TestMultiplyUnpluggedSlotIsSilent(t *testing.T) {
	r := graph.NewRouter(testConfig())

	a := newSourceNode(2)
	m := NewMultiply(a.Output(0), nil)
	r.Add(a)
	r.Add(m)

	r.ProcessBlock(8)

	if got := m.Output(0).At(0); got != 0 {
		t.Fatalf("product with silent input = %v, want 0", got)
	}
}

func TestInterpolate(t *testing.T) {
	r := graph.NewRouter(testConfig())

	p := NewInterpolate(graph.NewControlOutput(2), graph.NewControlOutput(6), graph.NewControlOutput(0.25))
	p.SetControlRate(true)
	r.Add(p)

	r.ProcessBlock(64)

	if got := p.Output(0).At(0); got != 3 {
		t.Fatalf("interpolate(2, 6, 0.25) = %v, want 3", got)
	}
}

func TestClamp(t *testing.T) {
	r := graph.NewRouter(testConfig())

	src := newSourceNode(-2, 0.25, 2)
	c := NewClamp(-1, 1, src.Output(0))
	r.Add(src)
	r.Add(c)

	r.ProcessBlock(3)

	want := []float64{-1, 0.25, 1}
	for i, w := range want {
		if got := c.Output(0).At(i); got != w {
			t.Fatalf("clamp[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestInverseZeroInputYieldsZero(t *testing.T) {
	r := graph.NewRouter(testConfig())

	src := newSourceNode(4, 0, -0.5)
	inv := NewInverse(src.Output(0))
	r.Add(src)
	r.Add(inv)

	r.ProcessBlock(3)

	want := []float64{0.25, 0, -2}
	for i, w := range want {
		if got := inv.Output(0).At(i); got != w {
			t.Fatalf("inverse[%d] = %v, want %v", i, got, w)
		}
	}
}

// --- scales ---

func TestMidiScaleConcertPitch(t *testing.T) {
	r := graph.NewRouter(testConfig())

	m := NewMidiScale(graph.NewControlOutput(69))
	m.SetControlRate(true)
	r.Add(m)

	r.ProcessBlock(64)

	if got := m.Output(0).At(0); !approxEqual(got, 440, 1e-9) {
		t.Fatalf("midi 69 = %v Hz, want 440", got)
	}
}

func TestMidiScaleOctaveDoubles(t *testing.T) {
	r := graph.NewRouter(testConfig())

	low := NewMidiScale(graph.NewControlOutput(57))
	low.SetControlRate(true)
	high := NewMidiScale(graph.NewControlOutput(69))
	high.SetControlRate(true)
	r.Add(low)
	r.Add(high)

	r.ProcessBlock(64)

	ratio := high.Output(0).At(0) / low.Output(0).At(0)
	if !approxEqual(ratio, 2, 1e-9) {
		t.Fatalf("octave ratio = %v, want 2", ratio)
	}
}

func TestMidiScaleExtremeInputStaysFinite(t *testing.T) {
	r := graph.NewRouter(testConfig())

	up := NewMidiScale(graph.NewControlOutput(1e6))
	up.SetControlRate(true)
	down := NewMidiScale(graph.NewControlOutput(-1e6))
	down.SetControlRate(true)
	r.Add(up)
	r.Add(down)

	r.ProcessBlock(64)

	if got := up.Output(0).At(0); !isFinite(got) {
		t.Fatalf("midi 1e6 = %v, want finite", got)
	}
	if got := down.Output(0).At(0); !isFinite(got) {
		t.Fatalf("midi -1e6 = %v, want finite", got)
	}
}

func TestMagnitudeScale(t *testing.T) {
	r := graph.NewRouter(testConfig())

	unity := NewMagnitudeScale(graph.NewControlOutput(0))
	unity.SetControlRate(true)
	boost := NewMagnitudeScale(graph.NewControlOutput(20))
	boost.SetControlRate(true)
	r.Add(unity)
	r.Add(boost)

	r.ProcessBlock(64)

	if got := unity.Output(0).At(0); !approxEqual(got, 1, 1e-12) {
		t.Fatalf("0 dB = %v, want 1", got)
	}
	if got := boost.Output(0).At(0); !approxEqual(got, 10, 1e-9) {
		t.Fatalf("20 dB = %v, want 10", got)
	}
}

func TestResonanceScaleRange(t *testing.T) {
	r := graph.NewRouter(testConfig())

	lo := NewResonanceScale(graph.NewControlOutput(0))
	lo.SetControlRate(true)
	hi := NewResonanceScale(graph.NewControlOutput(1))
	hi.SetControlRate(true)
	mid := NewResonanceScale(graph.NewControlOutput(0.5))
	mid.SetControlRate(true)
	r.Add(lo)
	r.Add(hi)
	r.Add(mid)

	r.ProcessBlock(64)

	if got := lo.Output(0).At(0); !approxEqual(got, minResonanceQ, 1e-12) {
		t.Fatalf("resonance 0 = %v, want %v", got, minResonanceQ)
	}
	if got := hi.Output(0).At(0); !approxEqual(got, maxResonanceQ, 1e-9) {
		t.Fatalf("resonance 1 = %v, want %v", got, maxResonanceQ)
	}

	low, high := lo.Output(0).At(0), hi.Output(0).At(0)
	if got := mid.Output(0).At(0); got <= low || got >= high {
		t.Fatalf("resonance 0.5 = %v, want inside (%v, %v)", got, low, high)
	}
}

// --- bilinear ---

func TestBilinearInterpolateCorners(t *testing.T) {
	corners := [4]float64{1, 2, 3, 4}

	cases := []struct {
		name string
		x, y float64
		want float64
	}{
		{"top_left", 0, 0, 1},
		{"top_right", 1, 0, 2},
		{"bottom_left", 0, 1, 3},
		{"bottom_right", 1, 1, 4},
		{"center", 0.5, 0.5, 2.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := graph.NewRouter(testConfig())

			b := NewBilinearInterpolate(
				graph.NewControlOutput(corners[0]),
				graph.NewControlOutput(corners[1]),
				graph.NewControlOutput(corners[2]),
				graph.NewControlOutput(corners[3]),
				graph.NewControlOutput(tc.x),
				graph.NewControlOutput(tc.y),
			)
			b.SetControlRate(true)
			r.Add(b)

			r.ProcessBlock(64)

			if got := b.Output(0).At(0); !approxEqual(got, tc.want, 1e-12) {
				t.Fatalf("bilinear(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}
