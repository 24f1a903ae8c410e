package node

import (
	"testing"

	"github.com/cwbudde/algo-synth/synth/graph"
)

func impulseSamples(n int) []float64 {
	samples := make([]float64, n)
	samples[0] = 1

	return samples
}

func TestDelayEchoesAfterDelayTime(t *testing.T) {
	cfg := testConfig()
	r := graph.NewRouter(cfg)

	src := newSourceNode(impulseSamples(1024)...)
	d := NewDelay(4800,
		src.Output(0),
		graph.NewControlOutput(10.0/cfg.SampleRate),
		graph.NewControlOutput(0),
		graph.NewControlOutput(1),
	)
	r.Add(src)
	r.Add(d)

	r.ProcessBlock(64)

	out := d.Output(0)
	if got := out.At(9); !approxEqual(got, 0, 1e-9) {
		t.Fatalf("delay[9] = %v, want 0 before the echo", got)
	}
	if got := out.At(10); !approxEqual(got, 1, 1e-9) {
		t.Fatalf("delay[10] = %v, want the echoed impulse", got)
	}
	if got := out.At(11); !approxEqual(got, 0, 1e-9) {
		t.Fatalf("delay[11] = %v, want 0 after the echo", got)
	}
}

func TestDelayFeedbackDecaysRepeats(t *testing.T) {
	cfg := testConfig()
	r := graph.NewRouter(cfg)

	src := newSourceNode(impulseSamples(1024)...)
	d := NewDelay(4800,
		src.Output(0),
		graph.NewControlOutput(10.0/cfg.SampleRate),
		graph.NewControlOutput(0.5),
		graph.NewControlOutput(1),
	)
	r.Add(src)
	r.Add(d)

	r.ProcessBlock(64)

	out := d.Output(0)
	if got := out.At(10); !approxEqual(got, 1, 1e-9) {
		t.Fatalf("first echo = %v, want 1", got)
	}
	if got := out.At(20); !approxEqual(got, 0.5, 1e-9) {
		t.Fatalf("second echo = %v, want 0.5", got)
	}
	if got := out.At(30); !approxEqual(got, 0.25, 1e-9) {
		t.Fatalf("third echo = %v, want 0.25", got)
	}
}

func TestDelayWetMixBlendsDryAndDelayed(t *testing.T) {
	cfg := testConfig()
	r := graph.NewRouter(cfg)

	src := newSourceNode(impulseSamples(1024)...)
	d := NewDelay(4800,
		src.Output(0),
		graph.NewControlOutput(10.0/cfg.SampleRate),
		graph.NewControlOutput(0),
		graph.NewControlOutput(0.5),
	)
	r.Add(src)
	r.Add(d)

	r.ProcessBlock(64)

	out := d.Output(0)
	if got := out.At(0); !approxEqual(got, 0.5, 1e-9) {
		t.Fatalf("dry half = %v, want 0.5", got)
	}
	if got := out.At(10); !approxEqual(got, 0.5, 1e-9) {
		t.Fatalf("wet half = %v, want 0.5", got)
	}
}

func TestDelayDryWhenWetZero(t *testing.T) {
	cfg := testConfig()
	r := graph.NewRouter(cfg)

	src := newSourceNode(impulseSamples(1024)...)
	d := NewDelay(4800,
		src.Output(0),
		graph.NewControlOutput(10.0/cfg.SampleRate),
		graph.NewControlOutput(0.9),
		graph.NewControlOutput(0),
	)
	r.Add(src)
	r.Add(d)

	r.ProcessBlock(64)

	out := d.Output(0)
	if got := out.At(0); got != 1 {
		t.Fatalf("dry[0] = %v, want the input unchanged", got)
	}
	if got := out.At(10); got != 0 {
		t.Fatalf("dry[10] = %v, want no echo in the dry mix", got)
	}
}

func TestDelayTimeClampsToCapacity(t *testing.T) {
	cfg := testConfig()
	r := graph.NewRouter(cfg)

	src := newSourceNode(impulseSamples(1024)...)
	d := NewDelay(32,
		src.Output(0),
		graph.NewControlOutput(10),
		graph.NewControlOutput(0),
		graph.NewControlOutput(1),
	)
	r.Add(src)
	r.Add(d)

	r.ProcessBlock(64)

	// Ten seconds cannot fit in 32 samples; the echo lands at the cap.
	if got := d.Output(0).At(31); !approxEqual(got, 1, 1e-9) {
		t.Fatalf("capped echo = %v, want 1 at the last slot", got)
	}
}
