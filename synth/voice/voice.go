package voice

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-synth/synth/graph"
	"github.com/cwbudde/algo-synth/synth/node"
)

const (
	// MaxModulationConnections bounds how many modulation routings can
	// feed a single destination at the same time.
	MaxModulationConnections = 16

	// StepCount is the number of slots in the step sequencer.
	StepCount = 16

	// FormantBandCount is the number of parallel bands in the formant
	// filter bank.
	FormantBandCount = 4
)

const (
	midiNotes      = 128
	midiCenter     = midiNotes / 2
	pitchModRange  = 12
	cutoffModRange = midiCenter

	minFilterGainDB = -24
	maxFilterGainDB = 24

	// maxFeedbackFrames bounds the oscillator feedback delay line; at
	// one transposed period per frame this covers every audible pitch.
	maxFeedbackFrames = 20000
)

// Shared constant sources. Ownerless outputs impose no ordering edges,
// so they are safe to fan out across voices and routers.
var (
	one          = graph.NewControlOutput(1)
	half         = graph.NewControlOutput(0.5)
	noteScale    = graph.NewControlOutput(1.0 / (midiNotes - 1))
	centerAdjust = graph.NewControlOutput(-midiCenter)
	pitchScale   = graph.NewControlOutput(pitchModRange)
	cutoffScale  = graph.NewControlOutput(cutoffModRange)
	minGain      = graph.NewControlOutput(minFilterGainDB)
	maxGain      = graph.NewControlOutput(maxFilterGainDB)
	tanhShape    = graph.NewControlOutput(float64(node.DistortionTanh))
)

// Control is a host-settable voice parameter. Setting a control is
// safe between blocks; the change reaches the graph on the next
// processed block, smoothed where the control smooths.
type Control interface {
	Set(value float64)
	Value() float64
}

// controlBase is what a registered control is built from: a processor
// the router runs plus the host-facing Set and Value pair.
type controlBase interface {
	graph.Processor
	Control
}

// Voice is one polyphonic synthesizer voice: two oscillators with
// cross modulation and a feedback delay, an amplitude and a filter
// envelope, two LFOs and a step sequencer, a multimode filter with a
// formant bank behind it, and a modulation matrix tying the pieces
// together.
//
// A Voice is built against a Globals, which owns the nodes shared by
// every voice of one instrument. Hosts drive a voice by writing to its
// Inputs, then processing the shared globals once per block followed
// by each sounding voice.
type Voice struct {
	globals *Globals
	inputs  *Inputs
	router  *graph.Router

	controls     map[string]Control
	sources      map[string]*graph.Output
	destinations map[string]*node.VariableAdd
	modulations  map[*node.Value]*node.Multiply

	output      *graph.Output
	voiceKiller *graph.Output
	ampFinished *graph.Output
	finished    bool

	// formantBlends holds the gain, resonance and frequency corner
	// blends per band, in band order.
	formantBlends [FormantBandCount][3]*graph.Output
}

// NewVoice builds a voice against the shared globals. A nil globals or
// inputs gets a fresh default one, which suits single-voice hosts.
func NewVoice(g *Globals, in *Inputs) *Voice {
	if g == nil {
		g = NewGlobals()
	}
	if in == nil {
		in = NewInputs()
	}

	v := &Voice{
		globals:      g,
		inputs:       in,
		router:       graph.NewRouter(g.Config()),
		controls:     make(map[string]Control),
		sources:      make(map[string]*graph.Output),
		destinations: make(map[string]*node.VariableAdd),
		modulations:  make(map[*node.Value]*node.Multiply),
	}

	for name, c := range g.controls {
		v.controls[name] = c
	}

	v.registerSource("pitch_wheel", g.pitchWheel.Output(0))
	v.registerSource("mod_wheel", g.modWheel.Output(0))
	v.registerSource("lfo_1", g.lfo1.Output(0))
	v.registerSource("aftertouch", in.Aftertouch)

	art := v.buildArticulation()
	oscillators := v.buildOscillators(art)
	v.buildModulators(art)
	filtered := v.buildFilter(oscillators, art)

	output := node.NewMultiply(filtered, art.amplitude)
	v.router.Add(output)
	v.output = output.Output(0)
	v.router.RegisterOutput("audio", v.output)

	v.voiceKiller = art.envValue
	v.router.RegisterOutput("voice_killer", v.voiceKiller)
	v.ampFinished = art.envFinished

	return v
}

// Inputs returns the performance inputs driving this voice.
func (v *Voice) Inputs() *Inputs { return v.inputs }

// Globals returns the shared node set this voice was built against.
func (v *Voice) Globals() *Globals { return v.globals }

// Output returns the rendered audio for the last processed block.
func (v *Voice) Output() *graph.Output { return v.output }

// VoiceKiller returns the amplitude envelope level. Hosts steal the
// voice with the lowest level when they run out of voices.
func (v *Voice) VoiceKiller() *graph.Output { return v.voiceKiller }

// Finished reports whether the amplitude envelope has fully released
// since the last note on. A finished voice renders silence and is free
// to reuse.
func (v *Voice) Finished() bool { return v.finished }

// ProcessBlock renders the next n frames. The shared globals must have
// been processed for the same block already; multi-voice hosts process
// the globals once, then every sounding voice.
func (v *Voice) ProcessBlock(n int) {
	v.router.ProcessBlock(n)

	if v.ampFinished.Triggered() {
		v.finished = true
	}
	if v.inputs.Event.Triggered() && graph.VoiceEvent(v.inputs.Event.TriggerValue()) == graph.VoiceOn {
		v.finished = false
	}

	v.inputs.clearTriggers()
}

// Process renders the next n frames of a standalone voice, advancing
// the shared globals first.
func (v *Voice) Process(n int) {
	v.globals.ProcessBlock(n)
	v.ProcessBlock(n)
}

// SetControl sets the control registered under name. It panics when no
// such control exists; ControlNames lists the valid names.
func (v *Voice) SetControl(name string, value float64) {
	v.namedControl(name).Set(value)
}

// Control returns the control registered under name, panicking when no
// such control exists.
func (v *Voice) Control(name string) Control {
	return v.namedControl(name)
}

// ControlNames returns the name of every control, sorted.
func (v *Voice) ControlNames() []string {
	names := make([]string, 0, len(v.controls))
	for name := range v.controls {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (v *Voice) namedControl(name string) Control {
	c, ok := v.controls[name]
	if !ok {
		panic(fmt.Sprintf("synth: unknown control %q", name))
	}

	return c
}

func (v *Voice) registerControl(name string, c Control) {
	if _, ok := v.controls[name]; ok {
		panic(fmt.Sprintf("synth: control %q registered twice", name))
	}

	v.controls[name] = c
}

func (v *Voice) registerSource(name string, out *graph.Output) {
	if _, ok := v.sources[name]; ok {
		panic(fmt.Sprintf("synth: modulation source %q registered twice", name))
	}

	v.sources[name] = out
}

func (v *Voice) registerDestination(name string, dest *node.VariableAdd) {
	if _, ok := v.destinations[name]; ok {
		panic(fmt.Sprintf("synth: modulation destination %q registered twice", name))
	}

	v.destinations[name] = dest
}

// baseControl registers an unmodulatable control-rate value.
func (v *Voice) baseControl(name string, def float64) *node.Value {
	base := node.NewValue(def)
	base.SetControlRate(true)
	v.router.Add(base)
	v.registerControl(name, base)

	return base
}

// polyModControl registers a modulatable control: a per-voice base
// value plus a destination accumulator, summed at the control's rate.
func (v *Voice) polyModControl(name string, def float64, controlRate bool) *graph.Output {
	base := node.NewValue(def)
	base.SetControlRate(controlRate)

	return v.finishModControl(name, base, controlRate)
}

// smoothPolyModControl is polyModControl with a smoothed base value,
// for controls that click when stepped.
func (v *Voice) smoothPolyModControl(name string, def float64) *graph.Output {
	return v.finishModControl(name, node.NewSmoothValue(def), false)
}

func (v *Voice) finishModControl(name string, base controlBase, controlRate bool) *graph.Output {
	v.router.Add(base)
	v.registerControl(name, base)

	mods := node.NewVariableAdd(MaxModulationConnections)
	mods.SetControlRate(controlRate)
	v.router.Add(mods)
	v.registerDestination(name, mods)

	total := node.NewAdd(base.Output(0), mods.Output(0))
	total.SetControlRate(controlRate)
	v.router.Add(total)

	return total.Output(0)
}
