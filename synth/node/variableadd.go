package node

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// VariableAdd sums every plugged input slot into one output. Slots are
// handed out by PlugNext and recycled through a free list, so modulation
// routings can come and go at runtime without reallocating the node or
// disturbing other connections.
type VariableAdd struct {
	graph.Node
	free []int
}

// NewVariableAdd returns a VariableAdd with the given fixed slot
// capacity.
func NewVariableAdd(capacity int) *VariableAdd {
	if capacity < 1 {
		panic(fmt.Sprintf("synth: variable add capacity must be positive: %d", capacity))
	}

	v := &VariableAdd{free: make([]int, 0, capacity)}
	v.InitNode(v, capacity, 1)

	// Popped from the end, so slots are handed out in ascending order.
	for i := capacity - 1; i >= 0; i-- {
		v.free = append(v.free, i)
	}

	return v
}

// FreeSlots returns how many input slots remain unconnected.
func (v *VariableAdd) FreeSlots() int { return len(v.free) }

// PlugNext connects source to a free slot and returns the slot index.
// It panics when every slot is taken.
func (v *VariableAdd) PlugNext(source *graph.Output) int {
	if len(v.free) == 0 {
		panic("synth: variable add has no free input slots")
	}

	slot := v.free[len(v.free)-1]
	v.free = v.free[:len(v.free)-1]
	v.Plug(source, slot)

	return slot
}

// Unplug disconnects the given slot and returns it to the free list.
func (v *VariableAdd) Unplug(slot int) {
	if !v.Plugged(slot) {
		return
	}

	v.Node.Unplug(slot)
	v.free = append(v.free, slot)
}

// UnplugSource disconnects the slot reading from source, if any.
func (v *VariableAdd) UnplugSource(source *graph.Output) {
	for slot := range v.InputCount() {
		if v.Plugged(slot) && v.Source(slot) == source {
			v.Unplug(slot)
			return
		}
	}
}

// ProcessBlock writes the sum of all plugged sources into the output.
func (v *VariableAdd) ProcessBlock(n int) {
	out := v.Output(0)
	buf := out.Buffer()

	count := frames(out, n)
	for i := range count {
		buf[i] = 0
	}

	dst, audio := audioBuffer(out, n)
	for slot := range v.InputCount() {
		if !v.Plugged(slot) {
			continue
		}

		src := v.Source(slot)
		if audio {
			if sb, ok := audioBuffer(src, n); ok {
				vecmath.AddBlockInPlace(dst, sb)
				continue
			}
		}

		for i := range count {
			buf[i] += src.At(i)
		}
	}
}
