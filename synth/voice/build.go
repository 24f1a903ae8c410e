package voice

import (
	"fmt"

	"github.com/cwbudde/algo-synth/synth/graph"
	"github.com/cwbudde/algo-synth/synth/node"
)

// Formant corner presets per band: gain, Q and frequency at each corner
// of the (x, y) morph square. The defaults morph between rough vowel
// shapes.
var (
	formantTopLeft = [FormantBandCount][3]float64{
		{1, 6, 270},
		{1, 10, 2300},
		{1, 8, 3000},
		{0.2, 15, 500},
	}
	formantTopRight = [FormantBandCount][3]float64{
		{1, 6, 270},
		{1, 12, 500},
		{1, 8, 2000},
		{1, 9, 1500},
	}
	formantBottomLeft = [FormantBandCount][3]float64{
		{1, 6, 270},
		{1, 4, 2300},
		{1, 8, 3000},
		{0.2, 0.5, 500},
	}
	formantBottomRight = [FormantBandCount][3]float64{
		{0, 6, 270},
		{0, 12, 500},
		{0, 8, 3000},
		{0, 9, 3500},
	}
)

// articulation carries the per-voice pitch and level plumbing that the
// oscillator and filter sections hang off of.
type articulation struct {
	glidedNote     *graph.Output
	noteFromCenter *graph.Output
	noteChange     *graph.Output
	amplitude      *graph.Output
	envValue       *graph.Output
	envFinished    *graph.Output
}

// buildArticulation wires the legato filter, the amplitude envelope,
// the note and velocity latches, and portamento.
func (v *Voice) buildArticulation() *articulation {
	art := &articulation{}
	in := v.inputs

	legato := v.baseControl("legato", 0)
	legatoFilter := node.NewLegatoFilter(legato.Output(0), in.Event)
	v.router.Add(legatoFilter)

	attack := v.polyModControl("amp_attack", 0.01, false)
	decay := v.polyModControl("amp_decay", 0.7, true)
	release := v.polyModControl("amp_release", 0.3, true)

	envelope := node.NewEnvelope(attack, decay, v.globals.ampSustain.Output(0), release,
		legatoFilter.Output(node.LegatoRetrigger))
	v.router.Add(envelope)
	art.envValue = envelope.Output(node.EnvelopeValue)
	art.envFinished = envelope.Output(node.EnvelopeFinished)
	v.registerSource("amplitude_env", art.envValue)

	// A note change is the first press of a phrase, a retriggered
	// detached note, or a legato transition. Note offs never reach this
	// stream, so releasing a key cannot move the sounding pitch.
	onRetrigger := node.NewTriggerFilter(graph.VoiceOn, legatoFilter.Output(node.LegatoRetrigger))
	v.router.Add(onRetrigger)

	noteChange := node.NewTriggerCombiner(onRetrigger.Output(0), legatoFilter.Output(node.LegatoRemain))
	v.router.Add(noteChange)
	art.noteChange = noteChange.Output(0)

	noteWait := node.NewTriggerWait(in.Note, art.noteChange)
	v.router.Add(noteWait)
	currentNote := noteWait.Output(0)

	velocityWait := node.NewTriggerWait(in.Velocity, art.noteChange)
	v.router.Add(velocityWait)
	currentVelocity := velocityWait.Output(0)
	v.registerSource("velocity", currentVelocity)

	notePercentage := node.NewMultiply(noteScale, currentNote)
	v.router.Add(notePercentage)
	v.registerSource("note", notePercentage.Output(0))

	noteFromCenter := node.NewAdd(centerAdjust, currentNote)
	v.router.Add(noteFromCenter)
	art.noteFromCenter = noteFromCenter.Output(0)

	portamento := v.baseControl("portamento", 0.01)
	portamentoType := v.baseControl("portamento_type", float64(node.PortamentoOff))
	portamentoFilter := node.NewPortamentoFilter(portamentoType.Output(0), art.noteChange, in.Event)
	v.router.Add(portamentoFilter)

	glide := node.NewLinearSlope(currentNote, portamento.Output(0), portamentoFilter.Output(0))
	v.router.Add(glide)
	art.glidedNote = glide.Output(0)

	velocityTrack := v.polyModControl("velocity_track", 0.3, false)
	velocityLevel := node.NewInterpolate(one, currentVelocity, velocityTrack)
	v.router.Add(velocityLevel)

	amplitude := node.NewMultiply(art.envValue, velocityLevel.Output(0))
	v.router.Add(amplitude)
	art.amplitude = amplitude.Output(0)

	return art
}

// buildOscillators wires pitch bend and pitch modulation into the dual
// oscillator, the oscillator mix, and the tuned feedback delay. It
// returns the oscillator section's audio output.
func (v *Voice) buildOscillators(art *articulation) *graph.Output {
	bentNote := node.NewAdd(art.glidedNote, v.globals.pitchBend.Output(0))
	v.router.Add(bentNote)

	pitchMods := node.NewVariableAdd(MaxModulationConnections)
	v.router.Add(pitchMods)
	v.registerDestination("pitch", pitchMods)

	scaledPitchMods := node.NewMultiply(pitchMods.Output(0), pitchScale)
	v.router.Add(scaledPitchMods)

	finalNote := node.NewAdd(bentNote.Output(0), scaledPitchMods.Output(0))
	v.router.Add(finalNote)

	waveform1 := v.polyModControl("osc_1_waveform", float64(node.WaveformDownSaw), true)
	transpose1 := v.polyModControl("osc_1_transpose", 0, false)
	tune1 := v.polyModControl("osc_1_tune", 0, false)
	crossMod := v.polyModControl("cross_modulation", 0.15, false)
	waveform2 := v.polyModControl("osc_2_waveform", float64(node.WaveformDownSaw), true)
	transpose2 := v.polyModControl("osc_2_transpose", -12, false)
	tune2 := v.polyModControl("osc_2_tune", 0.08, false)

	frequency1 := v.oscillatorFrequency(finalNote.Output(0), transpose1, tune1)
	frequency2 := v.oscillatorFrequency(finalNote.Output(0), transpose2, tune2)

	oscillators := node.NewDualOscillator(
		waveform1, frequency1,
		waveform2, frequency2,
		crossMod, art.envFinished)
	v.router.Add(oscillators)
	v.registerSource("osc_1", oscillators.Output(0))
	v.registerSource("osc_2", oscillators.Output(1))

	mix := node.NewClamp(0, 1, v.smoothPolyModControl("osc_mix", 0.5))
	v.router.Add(mix)

	blended := node.NewInterpolate(oscillators.Output(0), oscillators.Output(1), mix.Output(0))
	v.router.Add(blended)

	// The feedback delay tracks the played pitch: its time input is one
	// period of the transposed note, so feedback stacks harmonics on
	// the oscillator mix.
	feedbackTranspose := v.polyModControl("osc_feedback_transpose", -12, false)
	feedbackAmount := v.polyModControl("osc_feedback_amount", 0, false)
	feedbackTune := v.polyModControl("osc_feedback_tune", 0, false)

	feedbackFrequency := v.oscillatorFrequency(finalNote.Output(0), feedbackTranspose, feedbackTune)
	feedbackPeriod := node.NewInverse(feedbackFrequency)
	v.router.Add(feedbackPeriod)

	feedback := node.NewDelay(maxFeedbackFrames, blended.Output(0), feedbackPeriod.Output(0),
		feedbackAmount, half)
	v.router.Add(feedback)

	return feedback.Output(0)
}

// oscillatorFrequency converts a MIDI note shifted by transpose
// semitones and tune into Hz.
func (v *Voice) oscillatorFrequency(midi, transpose, tune *graph.Output) *graph.Output {
	transposed := node.NewAdd(midi, transpose)
	v.router.Add(transposed)

	tuned := node.NewAdd(transposed.Output(0), tune)
	v.router.Add(tuned)

	frequency := node.NewMidiScale(tuned.Output(0))
	v.router.Add(frequency)

	return frequency.Output(0)
}

// buildModulators wires LFO 2 and the step sequencer. LFO 1 lives in
// the shared globals and free-runs across voices.
func (v *Voice) buildModulators(art *articulation) {
	lfo2Waveform := v.baseControl("lfo_2_waveform", float64(node.WaveformSine))
	lfo2Frequency := v.polyModControl("lfo_2_frequency", 2, false)

	lfo2 := node.NewOscillator(lfo2Waveform.Output(0), lfo2Frequency, art.envFinished)
	v.router.Add(lfo2)
	v.registerSource("lfo_2", lfo2.Output(0))

	numSteps := v.baseControl("num_steps", StepCount)
	stepFrequency := v.polyModControl("step_frequency", 5, false)

	steps := node.NewStepGenerator(StepCount, numSteps.Output(0), stepFrequency)
	for i := range StepCount {
		step := v.baseControl(fmt.Sprintf("step_seq_%02d", i), 0)
		steps.PlugStep(i, step.Output(0))
	}
	v.router.Add(steps)
	v.registerSource("step_sequencer", steps.Output(0))
}

// buildFilter wires the filter envelope, key tracking, the cutoff and
// resonance scaling chain, the multimode filter, the saturation and
// distortion stages, and the formant bank behind them. It returns the
// filtered audio output.
func (v *Voice) buildFilter(audio *graph.Output, art *articulation) *graph.Output {
	attack := v.polyModControl("fil_attack", 0.01, false)
	decay := v.polyModControl("fil_decay", 0.3, true)
	sustain := v.polyModControl("fil_sustain", 0.3, false)
	release := v.polyModControl("fil_release", 0.3, true)

	// The filter envelope restarts on every sounding note and releases
	// on note off; unlike the amplitude envelope it ignores legato.
	offTrigger := node.NewTriggerFilter(graph.VoiceOff, v.inputs.Event)
	v.router.Add(offTrigger)

	envTrigger := node.NewTriggerCombiner(offTrigger.Output(0), art.noteChange)
	v.router.Add(envTrigger)

	envelope := node.NewEnvelope(attack, decay, sustain, release, envTrigger.Output(0))
	v.router.Add(envelope)
	v.registerSource("filter_env", envelope.Output(node.EnvelopeValue))

	depth := v.polyModControl("fil_env_depth", 48, false)
	scaledEnvelope := node.NewMultiply(envelope.Output(node.EnvelopeValue), depth)
	v.router.Add(scaledEnvelope)

	keytrack := v.polyModControl("keytrack", 0, false)
	currentKeytrack := node.NewMultiply(art.noteFromCenter, keytrack)
	v.router.Add(currentKeytrack)

	keytrackedCutoff := node.NewAdd(v.globals.cutoff.Output(0), currentKeytrack.Output(0))
	keytrackedCutoff.SetControlRate(true)
	v.router.Add(keytrackedCutoff)

	midiCutoff := node.NewAdd(keytrackedCutoff.Output(0), scaledEnvelope.Output(0))
	midiCutoff.SetControlRate(true)
	v.router.Add(midiCutoff)

	cutoffMods := node.NewVariableAdd(MaxModulationConnections)
	cutoffMods.SetControlRate(true)
	v.router.Add(cutoffMods)
	v.registerDestination("cutoff", cutoffMods)

	scaledCutoffMods := node.NewMultiply(cutoffMods.Output(0), cutoffScale)
	scaledCutoffMods.SetControlRate(true)
	v.router.Add(scaledCutoffMods)

	moddedCutoff := node.NewAdd(midiCutoff.Output(0), scaledCutoffMods.Output(0))
	moddedCutoff.SetControlRate(true)
	v.router.Add(moddedCutoff)

	cutoffFrequency := node.NewMidiScale(moddedCutoff.Output(0))
	cutoffFrequency.SetControlRate(true)
	v.router.Add(cutoffFrequency)

	resonance := v.polyModControl("resonance", 0.5, true)
	finalResonance := node.NewResonanceScale(resonance)
	finalResonance.SetControlRate(true)
	v.router.Add(finalResonance)

	// Higher resonance trades peak gain for body, keeping the level
	// roughly constant across the resonance range.
	decibels := node.NewInterpolate(minGain, maxGain, resonance)
	decibels.SetControlRate(true)
	v.router.Add(decibels)

	finalGain := node.NewMagnitudeScale(decibels.Output(0))
	finalGain.SetControlRate(true)
	v.router.Add(finalGain)

	saturation := v.polyModControl("filter_saturation", 0, false)
	saturationMagnitude := node.NewMagnitudeScale(saturation)
	v.router.Add(saturationMagnitude)

	saturated := node.NewMultiply(audio, saturationMagnitude.Output(0))
	v.router.Add(saturated)

	filterType := v.baseControl("filter_type", float64(node.FilterLowPass))
	filter := node.NewFilter(saturated.Output(0), filterType.Output(0), art.envFinished,
		cutoffFrequency.Output(0), finalResonance.Output(0), finalGain.Output(0))
	v.router.Add(filter)

	distorted := node.NewDistortion(filter.Output(0), tanhShape, half)
	v.router.Add(distorted)

	return v.buildFormants(distorted.Output(0))
}

// buildFormants wires the bypassable formant bank: four parallel bands
// inside a nested router, each blending its gain, Q and frequency
// between the corner presets under the formant_x and formant_y morph
// position.
func (v *Voice) buildFormants(audio *graph.Output) *graph.Output {
	bypass := v.baseControl("formant_bypass", 1)
	formantX := v.smoothPolyModControl("formant_x", 0)
	formantY := v.smoothPolyModControl("formant_y", 0)

	inner := graph.NewRouter(v.globals.Config())

	passthrough := node.NewValue(0)
	passthrough.SetControlRate(true)
	inner.Add(passthrough)
	v.registerControl("formant_passthrough", passthrough)

	manager := node.NewFormantManager(FormantBandCount, audio, passthrough.Output(0))

	for band := range FormantBandCount {
		gain := v.formantBlend(band, 0, formantX, formantY, false)
		q := v.formantBlend(band, 1, formantX, formantY, true)
		frequency := v.formantBlend(band, 2, formantX, formantY, true)
		v.formantBlends[band] = [3]*graph.Output{gain, q, frequency}

		formant := node.NewFormant(audio, gain, q, frequency)
		inner.Add(formant)
		manager.PlugBand(band, formant.Output(0))
	}

	inner.Add(manager)
	inner.RegisterOutput("formant", manager.Output(0))

	container := node.NewBypass(inner, bypass.Output(0), audio)
	container.Route(manager.Output(0))
	v.router.Add(container)

	return container.Output(0)
}

// formantBlend interpolates one band parameter between its four corner
// presets. The blends run in the voice router so morphs keep moving
// while the bank is bypassed.
func (v *Voice) formantBlend(band, param int, x, y *graph.Output, controlRate bool) *graph.Output {
	blend := node.NewBilinearInterpolate(
		graph.NewControlOutput(formantTopLeft[band][param]),
		graph.NewControlOutput(formantTopRight[band][param]),
		graph.NewControlOutput(formantBottomLeft[band][param]),
		graph.NewControlOutput(formantBottomRight[band][param]),
		x, y)
	blend.SetControlRate(controlRate)
	v.router.Add(blend)

	return blend.Output(0)
}
