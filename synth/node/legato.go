package node

import "github.com/cwbudde/algo-synth/synth/graph"

// LegatoFilter splits a voice event stream in two: events that should
// restart articulation come out the retrigger port, note-ons that land
// while a note is already sounding with legato enabled come out the
// remain port. Voice-offs and the first note-on always retrigger.
type LegatoFilter struct {
	graph.Node
	last graph.VoiceEvent
}

// Input slots of LegatoFilter.
const (
	legatoEnabled = iota
	legatoTrigger
)

// Output ports of LegatoFilter.
const (
	LegatoRetrigger = iota
	LegatoRemain
)

// NewLegatoFilter returns a LegatoFilter splitting trigger under the
// enabled control (nonzero enables legato).
func NewLegatoFilter(enabled, trigger *graph.Output) *LegatoFilter {
	f := &LegatoFilter{last: graph.VoiceOff}
	f.InitNode(f, 2, 2)
	f.SetControlRate(true)
	f.Plug(enabled, legatoEnabled)
	f.Plug(trigger, legatoTrigger)

	return f
}

// ProcessBlock routes a pending voice event to one of the two ports.
func (f *LegatoFilter) ProcessBlock(n int) {
	retrigger := f.Output(LegatoRetrigger)
	remain := f.Output(LegatoRemain)
	retrigger.ClearTrigger()
	remain.ClearTrigger()

	trig := f.Source(legatoTrigger)
	if !trig.Triggered() {
		return
	}

	value := trig.TriggerValue()
	offset := trig.TriggerOffset()
	event := graph.VoiceEvent(int(value))

	legato := f.Source(legatoEnabled).At(offset) != 0
	if event == graph.VoiceOn && f.last == graph.VoiceOn && legato {
		remain.Trigger(value, offset)
	} else {
		retrigger.Trigger(value, offset)
	}

	f.last = event
}
