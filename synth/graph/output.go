package graph

// Output is one producer port of a processor: a per-block sample buffer
// plus at most one trigger event per block. Control-rate outputs hold a
// single sample per block; At broadcasts it to any frame index.
type Output struct {
	owner   Processor
	buffer  []float64
	control bool

	triggered     bool
	triggerValue  float64
	triggerOffset int
}

// NewControlOutput returns an ownerless control-rate output holding value.
// Hosts use it to drive the note, velocity, event, and aftertouch inputs
// of a voice graph; builders use it for shared constants.
func NewControlOutput(value float64) *Output {
	return &Output{
		buffer:  []float64{value},
		control: true,
	}
}

// Owner returns the processor producing this output, or nil for
// host-driven and constant outputs.
func (o *Output) Owner() Processor { return o.owner }

// Buffer returns the output's sample buffer for the current block. The
// buffer is nil until the owning processor is registered with a router.
func (o *Output) Buffer() []float64 { return o.buffer }

// ControlRate reports whether the output holds one sample per block.
func (o *Output) ControlRate() bool { return o.control }

// At reads the sample at frame i, broadcasting control-rate values.
func (o *Output) At(i int) float64 {
	if len(o.buffer) == 1 {
		return o.buffer[0]
	}

	return o.buffer[i]
}

// Set writes value at frame 0. Intended for control-rate outputs.
func (o *Output) Set(value float64) {
	o.buffer[0] = value
}

// Fill sets every sample of the buffer to value.
func (o *Output) Fill(value float64) {
	for i := range o.buffer {
		o.buffer[i] = value
	}
}

// Trigger marks a trigger event with the given value at a frame offset
// within the current block.
func (o *Output) Trigger(value float64, offset int) {
	o.triggered = true
	o.triggerValue = value
	o.triggerOffset = offset
}

// TriggerEvent marks a voice lifecycle trigger at a frame offset.
func (o *Output) TriggerEvent(event VoiceEvent, offset int) {
	o.Trigger(float64(event), offset)
}

// ClearTrigger removes any pending trigger event.
func (o *Output) ClearTrigger() {
	o.triggered = false
	o.triggerValue = 0
	o.triggerOffset = 0
}

// Triggered reports whether a trigger event is pending this block.
func (o *Output) Triggered() bool { return o.triggered }

// TriggerValue returns the pending trigger's value.
func (o *Output) TriggerValue() float64 { return o.triggerValue }

// TriggerOffset returns the frame offset of the pending trigger.
func (o *Output) TriggerOffset() int { return o.triggerOffset }
