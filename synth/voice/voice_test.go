package voice

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/cwbudde/algo-synth/internal/testutil"
	"github.com/cwbudde/algo-synth/synth/node"
)

func newTestVoice() *Voice {
	return NewVoice(NewGlobals(), NewInputs())
}

// render advances the voice the given number of blocks and returns the
// concatenated audio output.
func render(v *Voice, blocks int) []float64 {
	out := make([]float64, 0, blocks*testBlock)
	for range blocks {
		v.Process(testBlock)
		out = append(out, v.Output().Buffer()...)
	}

	return out
}

func mustPanic(t *testing.T, fn func()) {
	t.Helper()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()

	fn()
}

func TestVoiceControlDefaults(t *testing.T) {
	v := newTestVoice()

	defaults := map[string]float64{
		"pitch_bend_range":       2,
		"portamento":             0.01,
		"portamento_type":        float64(node.PortamentoOff),
		"legato":                 0,
		"amp_attack":             0.01,
		"amp_decay":              0.7,
		"amp_sustain":            0.5,
		"amp_release":            0.3,
		"velocity_track":         0.3,
		"osc_1_waveform":         float64(node.WaveformDownSaw),
		"osc_1_transpose":        0,
		"osc_1_tune":             0,
		"osc_2_waveform":         float64(node.WaveformDownSaw),
		"osc_2_transpose":        -12,
		"osc_2_tune":             0.08,
		"osc_mix":                0.5,
		"cross_modulation":       0.15,
		"osc_feedback_transpose": -12,
		"osc_feedback_amount":    0,
		"osc_feedback_tune":      0,
		"lfo_1_waveform":         float64(node.WaveformSine),
		"lfo_1_frequency":        2,
		"lfo_2_waveform":         float64(node.WaveformSine),
		"lfo_2_frequency":        2,
		"num_steps":              StepCount,
		"step_frequency":         5,
		"fil_attack":             0.01,
		"fil_decay":              0.3,
		"fil_sustain":            0.3,
		"fil_release":            0.3,
		"fil_env_depth":          48,
		"keytrack":               0,
		"cutoff":                 80,
		"resonance":              0.5,
		"filter_type":            float64(node.FilterLowPass),
		"filter_saturation":      0,
		"formant_bypass":         1,
		"formant_passthrough":    0,
		"formant_x":              0,
		"formant_y":              0,
	}
	for i := range StepCount {
		defaults[fmt.Sprintf("step_seq_%02d", i)] = 0
	}

	for name, want := range defaults {
		if got := v.Control(name).Value(); got != want {
			t.Errorf("control %q default = %v, want %v", name, got, want)
		}
	}

	want := make([]string, 0, len(defaults))
	for name := range defaults {
		want = append(want, name)
	}
	sort.Strings(want)

	got := v.ControlNames()
	if len(got) != len(want) {
		t.Fatalf("control count = %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("control name %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestVoiceSetControl(t *testing.T) {
	v := newTestVoice()

	v.SetControl("resonance", 0.8)
	if got := v.Control("resonance").Value(); got != 0.8 {
		t.Fatalf("resonance = %v after set, want 0.8", got)
	}
}

func TestVoiceUnknownControlPanics(t *testing.T) {
	v := newTestVoice()

	mustPanic(t, func() { v.SetControl("no_such_control", 1) })
	mustPanic(t, func() { v.Control("no_such_control") })
}

func TestVoiceRegisteredOutputs(t *testing.T) {
	v := newTestVoice()

	if v.router.Output("audio") != v.Output() {
		t.Fatal("audio output not registered")
	}
	if v.router.Output("voice_killer") != v.VoiceKiller() {
		t.Fatal("voice killer output not registered")
	}
}

func TestVoiceNilArguments(t *testing.T) {
	v := NewVoice(nil, nil)

	v.Inputs().NoteOn(60, 0.8, 0)
	out := render(v, 4)
	testutil.RequireFinite(t, out)
}

func TestVoiceDefaultPatchDeterministic(t *testing.T) {
	first := newTestVoice()
	second := newTestVoice()

	first.Inputs().NoteOn(60, 0.8, 0)
	second.Inputs().NoteOn(60, 0.8, 0)

	a := render(first, 30)
	b := render(second, 30)

	testutil.RequireFinite(t, a)
	testutil.RequireSliceNearlyEqual(t, a, b, 0)

	if level := testutil.RMS(a); level < 0.01 {
		t.Fatalf("default patch rendered near-silence: rms %v", level)
	}
	for i, s := range a {
		if math.Abs(s) > 4 {
			t.Fatalf("frame %d out of bounds: %v", i, s)
		}
	}
}

func TestVoiceTriggerOffsetWithinBlock(t *testing.T) {
	v := newTestVoice()
	v.Inputs().NoteOn(60, 0.8, 32)
	v.Process(testBlock)

	killer := v.VoiceKiller()
	if got := killer.At(31); got != 0 {
		t.Fatalf("envelope moved before the trigger offset: %v", got)
	}
	if got := killer.At(testBlock - 1); got <= 0 {
		t.Fatalf("envelope still idle after the trigger offset: %v", got)
	}
}

func TestVoiceFinishedAfterFullRelease(t *testing.T) {
	v := newTestVoice()
	v.Inputs().NoteOn(60, 0.8, 0)

	for range 20 {
		v.Process(testBlock)
	}
	if v.Finished() {
		t.Fatal("sounding voice reported finished")
	}

	v.Inputs().NoteOff(0)

	finished := false
	for range 400 {
		v.Process(testBlock)
		if v.Finished() {
			finished = true
			break
		}
	}
	if !finished {
		t.Fatal("voice never finished after release")
	}

	if got := v.VoiceKiller().At(testBlock - 1); got != 0 {
		t.Fatalf("voice killer = %v after finish, want 0", got)
	}

	for range 5 {
		v.Process(testBlock)
		if !v.Finished() {
			t.Fatal("finished latch dropped while idle")
		}
	}

	v.Inputs().NoteOn(64, 0.5, 0)
	v.Process(testBlock)
	if v.Finished() {
		t.Fatal("fresh note should clear the finished latch")
	}
}

func TestVoiceNoteOffKeepsSoundingPitch(t *testing.T) {
	v := newTestVoice()
	v.Inputs().NoteOn(60, 0.8, 0)
	v.Process(testBlock)

	note := v.sources["note"]
	want := 60.0 / 127.0
	if got := note.At(testBlock - 1); !approxEqual(got, want, 1e-12) {
		t.Fatalf("note source = %v, want %v", got, want)
	}

	v.Inputs().NoteOff(0)
	v.Process(testBlock)

	if got := note.At(testBlock - 1); !approxEqual(got, want, 1e-12) {
		t.Fatalf("note source moved on note off: %v", got)
	}
}

func TestVoiceLegatoTransitionKeepsEnvelope(t *testing.T) {
	v := newTestVoice()
	v.SetControl("legato", 1)
	v.SetControl("amp_decay", 0.05)

	v.Inputs().NoteOn(60, 0.8, 0)
	for range 60 {
		v.Process(testBlock)
	}

	v.Inputs().NoteOn(72, 0.8, 0)

	peak := 0.0
	for range 12 {
		v.Process(testBlock)
		if level := v.VoiceKiller().At(testBlock - 1); level > peak {
			peak = level
		}
	}
	if peak > 0.7 {
		t.Fatalf("legato transition re-attacked: envelope peak %v", peak)
	}

	if got := v.sources["note"].At(0); !approxEqual(got, 72.0/127.0, 1e-12) {
		t.Fatalf("legato transition should still update pitch: note source %v", got)
	}
}

func TestVoiceDetachedRetriggerRestartsEnvelope(t *testing.T) {
	v := newTestVoice()
	v.SetControl("amp_decay", 0.05)

	v.Inputs().NoteOn(60, 0.8, 0)
	for range 60 {
		v.Process(testBlock)
	}

	v.Inputs().NoteOn(72, 0.8, 0)

	peak := 0.0
	for range 12 {
		v.Process(testBlock)
		if level := v.VoiceKiller().At(testBlock - 1); level > peak {
			peak = level
		}
	}
	if peak < 0.9 {
		t.Fatalf("second press should re-attack without legato: envelope peak %v", peak)
	}
}

func TestVoiceFormantCornerBlends(t *testing.T) {
	v := newTestVoice()
	v.Process(testBlock)

	// The morph position starts at the origin, so the first block reads
	// the top-left presets without interpolation error.
	for band := range FormantBandCount {
		for param := range 3 {
			got := v.formantBlends[band][param].At(0)
			if got != formantTopLeft[band][param] {
				t.Fatalf("band %d param %d at origin = %v, want %v",
					band, param, got, formantTopLeft[band][param])
			}
		}
	}

	corners := []struct {
		name string
		x, y float64
		want [FormantBandCount][3]float64
	}{
		{"top right", 1, 0, formantTopRight},
		{"bottom right", 1, 1, formantBottomRight},
		{"bottom left", 0, 1, formantBottomLeft},
	}

	for _, corner := range corners {
		v.SetControl("formant_x", corner.x)
		v.SetControl("formant_y", corner.y)

		// Let the smoothed morph position settle on the corner.
		for range 1000 {
			v.Process(testBlock)
		}

		for band := range FormantBandCount {
			for param := range 3 {
				got := v.formantBlends[band][param].At(0)
				if !approxEqual(got, corner.want[band][param], 1e-9) {
					t.Fatalf("band %d param %d at %s = %v, want %v",
						band, param, corner.name, got, corner.want[band][param])
				}
			}
		}
	}

	v.SetControl("formant_x", 0.5)
	v.SetControl("formant_y", 0.5)
	for range 1000 {
		v.Process(testBlock)
	}

	for band := range FormantBandCount {
		for param := range 3 {
			want := (formantTopLeft[band][param] + formantTopRight[band][param] +
				formantBottomLeft[band][param] + formantBottomRight[band][param]) / 4
			got := v.formantBlends[band][param].At(0)
			if !approxEqual(got, want, 1e-9) {
				t.Fatalf("band %d param %d at center = %v, want %v", band, param, got, want)
			}
		}
	}
}

func TestVoicePitchTracksNoteAndBend(t *testing.T) {
	v := newTestVoice()
	v.SetControl("osc_1_waveform", float64(node.WaveformSine))
	v.SetControl("osc_mix", 0)
	v.SetControl("cross_modulation", 0)

	v.Inputs().NoteOn(69, 0.8, 0)
	for range 100 {
		v.Process(testBlock)
	}

	sampleRate := v.Globals().Config().SampleRate

	got, err := testutil.DominantFrequency(render(v, 64), sampleRate)
	if err != nil {
		t.Fatalf("DominantFrequency: %v", err)
	}
	if math.Abs(got-440) > 3 {
		t.Fatalf("dominant frequency = %.2f Hz, want 440 Hz for A4", got)
	}

	v.Globals().SetPitchWheel(1)
	for range 300 {
		v.Process(testBlock)
	}

	got, err = testutil.DominantFrequency(render(v, 64), sampleRate)
	if err != nil {
		t.Fatalf("DominantFrequency: %v", err)
	}

	want := 440 * math.Pow(2, 2.0/12.0)
	if math.Abs(got-want) > 3 {
		t.Fatalf("dominant frequency = %.2f Hz, want %.2f Hz after a full bend up", got, want)
	}
}

func TestVoiceSurvivesExtremeModulation(t *testing.T) {
	v := newTestVoice()
	v.Connect("lfo_1", "pitch", node.NewValue(1e6))
	v.Connect("lfo_2", "cutoff", node.NewValue(1e6))

	v.Inputs().NoteOn(60, 0.8, 0)
	for range 20 {
		v.Process(testBlock)
		testutil.RequireFinite(t, v.Output().Buffer())
	}
}

func TestVoiceDestinationRates(t *testing.T) {
	v := newTestVoice()

	if !v.destinations["cutoff"].ControlRate() {
		t.Fatal("cutoff destination should run at control rate")
	}
	if !v.destinations["resonance"].ControlRate() {
		t.Fatal("resonance destination should run at control rate")
	}
	if v.destinations["pitch"].ControlRate() {
		t.Fatal("pitch destination should run at audio rate")
	}
	if v.destinations["osc_mix"].ControlRate() {
		t.Fatal("osc_mix destination should run at audio rate")
	}
}
