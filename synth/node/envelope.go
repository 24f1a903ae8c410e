package node

import "github.com/cwbudde/algo-synth/synth/graph"

// Envelope is a linear ADSR generator driven by voice event triggers.
// A voice-on or voice-reset enters the attack phase from the current
// level, so retriggers never produce a hard discontinuity; a voice-off
// enters the release phase. When the release reaches zero the finished
// port fires a single voice-reset trigger.
type Envelope struct {
	graph.Node
	state       envelopeState
	level       float64
	releaseRate float64
}

type envelopeState int

const (
	envelopeIdle envelopeState = iota
	envelopeAttacking
	envelopeDecaying
	envelopeSustaining
	envelopeReleasing
)

// Input slots of Envelope.
const (
	envelopeAttack = iota
	envelopeDecay
	envelopeSustain
	envelopeRelease
	envelopeTrigger
)

// Output ports of Envelope.
const (
	EnvelopeValue = iota
	EnvelopeFinished
)

// NewEnvelope returns an Envelope reading the four stage controls, in
// seconds except sustain in [0, 1], and a voice event trigger.
func NewEnvelope(attack, decay, sustain, release, trigger *graph.Output) *Envelope {
	e := &Envelope{}
	e.InitNode(e, 5, 2)
	e.Plug(attack, envelopeAttack)
	e.Plug(decay, envelopeDecay)
	e.Plug(sustain, envelopeSustain)
	e.Plug(release, envelopeRelease)
	e.Plug(trigger, envelopeTrigger)

	return e
}

// ProcessBlock advances the envelope and writes its level per frame.
func (e *Envelope) ProcessBlock(n int) {
	value := e.Output(EnvelopeValue)
	finished := e.Output(EnvelopeFinished)
	finished.ClearTrigger()

	triggerAt := -1
	var event graph.VoiceEvent
	if trig := e.Source(envelopeTrigger); trig.Triggered() {
		triggerAt = trig.TriggerOffset()
		event = graph.VoiceEvent(int(trig.TriggerValue()))
	}

	sr := e.SampleRate()
	attackRate := fullScaleRate(e.Source(envelopeAttack).At(0), sr)
	sustain := clamp(e.Source(envelopeSustain).At(0), 0, 1)
	decayRate := (1 - sustain) * fullScaleRate(e.Source(envelopeDecay).At(0), sr)
	releaseSeconds := e.Source(envelopeRelease).At(0)

	buf := value.Buffer()
	for i := range frames(value, n) {
		if i == triggerAt {
			switch event {
			case graph.VoiceOn, graph.VoiceReset:
				e.state = envelopeAttacking
			case graph.VoiceOff:
				if e.state != envelopeIdle {
					e.state = envelopeReleasing
					e.releaseRate = e.level * fullScaleRate(releaseSeconds, sr)
				}
			}
		}

		switch e.state {
		case envelopeAttacking:
			e.level += attackRate
			if e.level >= 1 {
				e.level = 1
				e.state = envelopeDecaying
			}
		case envelopeDecaying:
			e.level -= decayRate
			if e.level <= sustain {
				e.level = sustain
				e.state = envelopeSustaining
			}
		case envelopeSustaining:
			e.level = sustain
		case envelopeReleasing:
			e.level -= e.releaseRate
			if e.level <= 0 {
				e.level = 0
				e.state = envelopeIdle
				finished.TriggerEvent(graph.VoiceReset, i)
			}
		}

		buf[i] = e.level
	}
}

// fullScaleRate returns the per-sample step that crosses full scale in
// the given seconds. Durations under one sample, and non-finite ones,
// step the whole distance at once.
func fullScaleRate(seconds, sampleRate float64) float64 {
	steps := seconds * sampleRate
	if !(steps >= 1) {
		return 1
	}

	return 1 / steps
}
