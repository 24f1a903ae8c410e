// Package voice assembles the node library into a complete subtractive
// synthesizer voice: dual oscillators with cross modulation and a tuned
// feedback delay, amplitude and filter envelopes, two LFOs and a step
// sequencer, a multimode filter with saturation and distortion stages,
// and a morphing formant bank.
//
// A Globals holds the nodes shared by every voice of one instrument
// (wheels, pitch bend, the free-running LFO 1, and the mono controls);
// any number of Voices build against it. Hosts drive a voice through
// its Inputs and named controls, patch modulation routings with Connect
// and Disconnect, and render audio block by block: the shared globals
// once, then every sounding voice.
package voice
