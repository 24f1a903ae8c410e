package node

import "github.com/cwbudde/algo-synth/synth/graph"

// PortamentoMode selects when note changes glide instead of jumping.
type PortamentoMode int

// Portamento modes.
const (
	// PortamentoOff jumps to every new note.
	PortamentoOff PortamentoMode = iota
	// PortamentoAuto glides between overlapping notes and jumps on
	// detached ones.
	PortamentoAuto
	// PortamentoOn glides on every note change after the first note.
	PortamentoOn
)

// String returns the mode name.
func (m PortamentoMode) String() string {
	switch m {
	case PortamentoOff:
		return "off"
	case PortamentoAuto:
		return "auto"
	case PortamentoOn:
		return "on"
	default:
		return "unknown"
	}
}

// PortamentoFilter watches note changes and voice events and emits a
// jump trigger whenever the pitch slope should snap to the new note
// instead of gliding, according to the portamento mode.
type PortamentoFilter struct {
	graph.Node
	active      bool
	justStarted bool
	sounded     bool
}

// Input slots of PortamentoFilter.
const (
	portamentoMode = iota
	portamentoNoteTrigger
	portamentoVoiceTrigger
)

// NewPortamentoFilter returns a PortamentoFilter reading the mode
// control, the note-change trigger stream, and the voice event stream.
func NewPortamentoFilter(mode, noteTrigger, voiceTrigger *graph.Output) *PortamentoFilter {
	f := &PortamentoFilter{}
	f.InitNode(f, 3, 1)
	f.SetControlRate(true)
	f.Plug(mode, portamentoMode)
	f.Plug(noteTrigger, portamentoNoteTrigger)
	f.Plug(voiceTrigger, portamentoVoiceTrigger)

	return f
}

// ProcessBlock forwards the note trigger when the new note should jump.
func (f *PortamentoFilter) ProcessBlock(n int) {
	out := f.Output(0)
	out.ClearTrigger()

	if vt := f.Source(portamentoVoiceTrigger); vt.Triggered() {
		switch graph.VoiceEvent(int(vt.TriggerValue())) {
		case graph.VoiceOn:
			f.justStarted = !f.active
			f.active = true
		case graph.VoiceOff:
			f.active = false
		}
	}

	nt := f.Source(portamentoNoteTrigger)
	if !nt.Triggered() {
		return
	}
	offset := nt.TriggerOffset()

	jump := false
	switch PortamentoMode(int(f.Source(portamentoMode).At(offset))) {
	case PortamentoOff:
		jump = true
	case PortamentoAuto:
		jump = f.justStarted || !f.active
	case PortamentoOn:
		jump = !f.sounded
	}

	if jump {
		out.Trigger(nt.TriggerValue(), offset)
	}

	f.sounded = true
	f.justStarted = false
}
