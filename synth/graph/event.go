package graph

// VoiceEvent identifies a voice lifecycle trigger value carried on an
// Output's trigger channel.
type VoiceEvent int

const (
	// VoiceOff releases the voice (note-off).
	VoiceOff VoiceEvent = iota
	// VoiceOn starts or re-pitches the voice (note-on).
	VoiceOn
	// VoiceReset marks a voice as fully decayed and safe to reuse.
	VoiceReset
)

func (e VoiceEvent) String() string {
	switch e {
	case VoiceOff:
		return "voice_off"
	case VoiceOn:
		return "voice_on"
	case VoiceReset:
		return "voice_reset"
	default:
		return "unknown"
	}
}
