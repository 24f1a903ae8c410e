package voice

import (
	"fmt"

	"github.com/cwbudde/algo-synth/synth/graph"
	"github.com/cwbudde/algo-synth/synth/node"
)

// Option mutates the engine configuration used by NewGlobals.
type Option func(*graph.Config)

// WithSampleRate sets the engine sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *graph.Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the per-block frame count.
func WithBlockSize(blockSize int) Option {
	return func(cfg *graph.Config) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// Globals owns the processors shared by every voice built against it:
// the pitch and mod wheel smoothers, the pitch bend amount, the
// free-running LFO 1, and the mono mod controls. The owner processes
// Globals exactly once per block, before any voice, no matter how many
// voices share it.
type Globals struct {
	cfg    graph.Config
	router *graph.Router

	pitchWheel *node.SmoothValue
	modWheel   *node.SmoothValue
	pitchBend  *node.Multiply
	lfo1       *node.Oscillator
	cutoff     *node.SmoothValue
	ampSustain *node.SmoothValue

	controls map[string]Control
}

// NewGlobals returns the shared node set for one synthesizer instance.
func NewGlobals(opts ...Option) *Globals {
	cfg := graph.DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	g := &Globals{
		cfg:      cfg,
		router:   graph.NewRouter(cfg),
		controls: make(map[string]Control),
	}

	g.pitchWheel = node.NewSmoothValue(0)
	g.modWheel = node.NewSmoothValue(0)
	g.router.Add(g.pitchWheel)
	g.router.Add(g.modWheel)

	bendRange := node.NewValue(2)
	bendRange.SetControlRate(true)
	g.router.Add(bendRange)
	g.registerControl("pitch_bend_range", bendRange)

	g.pitchBend = node.NewMultiply(g.pitchWheel.Output(0), bendRange.Output(0))
	g.router.Add(g.pitchBend)

	lfo1Waveform := node.NewValue(float64(node.WaveformSine))
	lfo1Waveform.SetControlRate(true)
	g.router.Add(lfo1Waveform)
	g.registerControl("lfo_1_waveform", lfo1Waveform)

	lfo1Frequency := node.NewSmoothValue(2)
	g.router.Add(lfo1Frequency)
	g.registerControl("lfo_1_frequency", lfo1Frequency)

	// LFO 1 free-runs across notes; voices that want a phase-locked LFO
	// use their own LFO 2.
	g.lfo1 = node.NewOscillator(lfo1Waveform.Output(0), lfo1Frequency.Output(0), nil)
	g.router.Add(g.lfo1)

	g.cutoff = node.NewSmoothValue(80)
	g.cutoff.SetControlRate(true)
	g.router.Add(g.cutoff)
	g.registerControl("cutoff", g.cutoff)

	g.ampSustain = node.NewSmoothValue(0.5)
	g.router.Add(g.ampSustain)
	g.registerControl("amp_sustain", g.ampSustain)

	return g
}

// Config returns the engine configuration shared by all voices built
// against g.
func (g *Globals) Config() graph.Config { return g.cfg }

// Router returns the shared router. The owner processes it exactly once
// per block, before any voice router.
func (g *Globals) Router() *graph.Router { return g.router }

// ProcessBlock advances the shared processors for the next n frames.
func (g *Globals) ProcessBlock(n int) {
	g.router.ProcessBlock(n)
}

// SetPitchWheel moves the pitch wheel, nominally in [-1, 1]. The bend
// reaches the voices over the following blocks through smoothing.
func (g *Globals) SetPitchWheel(value float64) {
	g.pitchWheel.Set(value)
}

// SetModWheel moves the mod wheel, nominally in [0, 1].
func (g *Globals) SetModWheel(value float64) {
	g.modWheel.Set(value)
}

func (g *Globals) registerControl(name string, c Control) {
	if _, ok := g.controls[name]; ok {
		panic(fmt.Sprintf("synth: control %q registered twice", name))
	}

	g.controls[name] = c
}
