// Package node provides the built-in processor library for voice graphs:
// settable values and smoothers, arithmetic and scaling operators, a
// bounded summing junction for modulation fan-in, trigger operators for
// note articulation (legato, portamento, latching), and the concrete DSP
// sources and shapers a subtractive voice is wired from (envelopes,
// oscillators, step sequencer, multimode filter, formant bank, feedback
// delay, distortion).
//
// Every node embeds graph.Node; constructors take the source outputs the
// node consumes, so voice builders read as straight-line wiring. Numeric
// edge cases degrade to finite outputs: no node emits NaN or Inf into
// the graph.
package node
