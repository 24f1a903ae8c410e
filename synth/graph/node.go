package graph

import "fmt"

// Processor is one node in a voice graph: a fixed number of input slots,
// one or more output ports, and a per-block compute step. Implementations
// embed Node for the plumbing and provide ProcessBlock.
type Processor interface {
	// ProcessBlock computes the processor's outputs for the next n frames.
	ProcessBlock(n int)

	// Source returns the output plugged into input slot i. It is never
	// nil; unplugged slots read as silence.
	Source(slot int) *Output
	// InputCount returns the number of input slots.
	InputCount() int
	// Output returns output port i.
	Output(i int) *Output
	// OutputCount returns the number of output ports.
	OutputCount() int

	// ControlRate reports whether the processor computes one sample per
	// block instead of one per frame.
	ControlRate() bool
	// Enabled reports whether the router should evaluate the processor.
	Enabled() bool

	bind(cfg Config)
}

// Container is implemented by processors that own a nested Router. The
// outer router orders a container after every outer processor the nested
// graph reads from.
type Container interface {
	Processor

	// Inner returns the nested router.
	Inner() *Router
}

// silence is the implicit source of every unplugged input slot.
var silence = NewControlOutput(0)

// Node implements the plumbing shared by all processors: input slots,
// output ports, the control-rate and enabled flags, and the engine
// configuration bound at registration. Embed it and call InitNode from
// the constructor with the constructed value itself.
type Node struct {
	inputs  []*Output
	outputs []*Output

	control bool
	enabled bool

	cfg   Config
	bound bool
}

// InitNode allocates the embedding processor's input slots and output
// ports. The self argument becomes the owner of the ports.
func (n *Node) InitNode(self Processor, inputCount, outputCount int) {
	n.inputs = make([]*Output, inputCount)
	for i := range n.inputs {
		n.inputs[i] = silence
	}

	n.outputs = make([]*Output, outputCount)
	for i := range n.outputs {
		n.outputs[i] = &Output{owner: self}
	}

	n.enabled = true
}

// Plug connects source to the given input slot, replacing any previous
// connection. A nil source leaves the slot reading silence.
func (n *Node) Plug(source *Output, slot int) {
	if slot < 0 || slot >= len(n.inputs) {
		panic(fmt.Sprintf("synth: input slot out of range [0, %d): %d", len(n.inputs), slot))
	}

	if source == nil {
		source = silence
	}

	n.inputs[slot] = source
}

// Unplug disconnects the given input slot; it reads silence afterwards.
func (n *Node) Unplug(slot int) {
	if slot < 0 || slot >= len(n.inputs) {
		panic(fmt.Sprintf("synth: input slot out of range [0, %d): %d", len(n.inputs), slot))
	}

	n.inputs[slot] = silence
}

// Plugged reports whether the given input slot has a connection.
func (n *Node) Plugged(slot int) bool {
	return n.inputs[slot] != silence
}

// Source returns the output plugged into input slot i, never nil.
func (n *Node) Source(slot int) *Output { return n.inputs[slot] }

// InputCount returns the number of input slots.
func (n *Node) InputCount() int { return len(n.inputs) }

// Output returns output port i.
func (n *Node) Output(i int) *Output { return n.outputs[i] }

// OutputCount returns the number of output ports.
func (n *Node) OutputCount() int { return len(n.outputs) }

// ControlRate reports whether the processor runs once per block.
func (n *Node) ControlRate() bool { return n.control }

// SetControlRate switches the processor to one sample per block. It must
// be called before the processor is registered with a router.
func (n *Node) SetControlRate(control bool) {
	if n.bound {
		panic("synth: control rate must be set before registration")
	}

	n.control = control
}

// Enabled reports whether the router evaluates the processor.
func (n *Node) Enabled() bool { return n.enabled }

// SetEnabled toggles evaluation of the processor by its router.
func (n *Node) SetEnabled(enabled bool) { n.enabled = enabled }

// SampleRate returns the engine sample rate bound at registration.
func (n *Node) SampleRate() float64 { return n.cfg.SampleRate }

// BlockSize returns the engine block size bound at registration.
func (n *Node) BlockSize() int { return n.cfg.BlockSize }

func (n *Node) bind(cfg Config) {
	n.cfg = cfg
	n.bound = true

	size := cfg.BlockSize
	if n.control {
		size = 1
	}

	for _, out := range n.outputs {
		if len(out.buffer) != size {
			out.buffer = make([]float64, size)
		}

		out.control = n.control
	}
}
