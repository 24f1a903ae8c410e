// Package graph provides the processor graph runtime for a synthesizer
// voice: Output ports carrying per-block sample buffers and trigger
// events, an embeddable Node base with fixed input slots, and a Router
// that evaluates registered processors in dependency order once per
// audio block.
//
// Ordering is topological over plug edges; ties keep registration order,
// and a dependency cycle is a fatal configuration error. Processors that
// nest their own Router (see Container) are ordered after every outer
// processor their nested graph reads from.
//
// Execution is single threaded and block synchronous. Structural changes
// (Add, Remove, Plug) must happen between blocks; the runtime holds no
// internal lock.
package graph
