package node

import "github.com/cwbudde/algo-synth/synth/graph"

// TriggerFilter forwards only trigger events carrying one specific
// voice event, discarding the rest.
type TriggerFilter struct {
	graph.Node
	event graph.VoiceEvent
}

// NewTriggerFilter returns a TriggerFilter passing only the given event
// from the trigger source.
func NewTriggerFilter(event graph.VoiceEvent, trigger *graph.Output) *TriggerFilter {
	f := &TriggerFilter{event: event}
	f.InitNode(f, 1, 1)
	f.SetControlRate(true)
	f.Plug(trigger, 0)

	return f
}

// ProcessBlock forwards a matching trigger, if any.
func (f *TriggerFilter) ProcessBlock(n int) {
	out := f.Output(0)
	out.ClearTrigger()

	src := f.Source(0)
	if src.Triggered() && src.TriggerValue() == float64(f.event) {
		out.Trigger(src.TriggerValue(), src.TriggerOffset())
	}
}

// TriggerCombiner merges two trigger streams. When both fire in the
// same block the first input wins.
type TriggerCombiner struct {
	graph.Node
}

// NewTriggerCombiner returns a TriggerCombiner merging the two given
// trigger sources.
func NewTriggerCombiner(a, b *graph.Output) *TriggerCombiner {
	c := &TriggerCombiner{}
	c.InitNode(c, 2, 1)
	c.SetControlRate(true)
	c.Plug(a, 0)
	c.Plug(b, 1)

	return c
}

// ProcessBlock forwards a pending trigger from either input.
func (c *TriggerCombiner) ProcessBlock(n int) {
	out := c.Output(0)
	out.ClearTrigger()

	if a := c.Source(0); a.Triggered() {
		out.Trigger(a.TriggerValue(), a.TriggerOffset())
		return
	}
	if b := c.Source(1); b.Triggered() {
		out.Trigger(b.TriggerValue(), b.TriggerOffset())
	}
}

// TriggerWait samples its wait input at the frame where a trigger
// fires, holds the latched value on its output, and re-emits the
// trigger carrying it. Voices use it to freeze note and velocity for
// the duration of a note.
type TriggerWait struct {
	graph.Node
	value float64
}

// Input slots of TriggerWait.
const (
	triggerWaitValue = iota
	triggerWaitTrigger
)

// NewTriggerWait returns a TriggerWait latching wait whenever trigger
// fires.
func NewTriggerWait(wait, trigger *graph.Output) *TriggerWait {
	w := &TriggerWait{}
	w.InitNode(w, 2, 1)
	w.SetControlRate(true)
	w.Plug(wait, triggerWaitValue)
	w.Plug(trigger, triggerWaitTrigger)

	return w
}

// Value returns the most recently latched sample.
func (w *TriggerWait) Value() float64 { return w.value }

// ProcessBlock latches on a pending trigger and holds the value.
func (w *TriggerWait) ProcessBlock(n int) {
	out := w.Output(0)
	out.ClearTrigger()

	if trig := w.Source(triggerWaitTrigger); trig.Triggered() {
		offset := trig.TriggerOffset()
		w.value = w.Source(triggerWaitValue).At(offset)
		out.Trigger(w.value, offset)
	}

	out.Set(w.value)
}
