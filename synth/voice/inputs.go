package voice

import "github.com/cwbudde/algo-synth/synth/graph"

// Inputs is the per-voice performance state a host writes between
// blocks: the latest MIDI note and velocity, channel aftertouch, and
// the voice event stream that drives triggers through the graph.
//
// Note and velocity here follow the raw key press. The voice latches
// its own sounding note and velocity from these on note changes, so a
// note-off never bends pitch back to the released key.
type Inputs struct {
	// Note is the raw MIDI note number of the most recent key press.
	Note *graph.Output

	// Velocity is the raw note velocity in [0, 1].
	Velocity *graph.Output

	// Event carries voice lifecycle triggers. Its value holds the last
	// event so control-rate consumers can read it between triggers.
	Event *graph.Output

	// Aftertouch is channel or key pressure in [0, 1]. It doubles as
	// the "aftertouch" modulation source.
	Aftertouch *graph.Output
}

// NewInputs returns a silent input set. All outputs are host-owned
// constants, valid at any block size.
func NewInputs() *Inputs {
	return &Inputs{
		Note:       graph.NewControlOutput(0),
		Velocity:   graph.NewControlOutput(0),
		Event:      graph.NewControlOutput(0),
		Aftertouch: graph.NewControlOutput(0),
	}
}

// NoteOn starts or retriggers the voice at the given MIDI note and
// velocity. The trigger lands offset frames into the next block.
func (in *Inputs) NoteOn(note, velocity float64, offset int) {
	in.Note.Set(note)
	in.Velocity.Set(velocity)
	in.Event.Set(float64(graph.VoiceOn))
	in.Event.TriggerEvent(graph.VoiceOn, offset)
}

// NoteOff releases the voice. The trigger lands offset frames into the
// next block.
func (in *Inputs) NoteOff(offset int) {
	in.Event.Set(float64(graph.VoiceOff))
	in.Event.TriggerEvent(graph.VoiceOff, offset)
}

// SetAftertouch updates the pressure value in [0, 1].
func (in *Inputs) SetAftertouch(value float64) {
	in.Aftertouch.Set(value)
}

// clearTriggers drops the event trigger after a processed block so it
// fires exactly once.
func (in *Inputs) clearTriggers() {
	in.Event.ClearTrigger()
}
