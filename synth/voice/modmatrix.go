package voice

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-synth/synth/node"
)

// Connect routes a modulation source into a destination, scaled by the
// given amount. The scale stays live after connecting: setting it
// changes the modulation depth on the next block, and it identifies the
// routing for Disconnect.
//
// Connect panics on an unknown source or destination name, on a nil or
// already connected scale, and when the destination has no free slot.
func (v *Voice) Connect(sourceName, destName string, scale *node.Value) {
	source, ok := v.sources[sourceName]
	if !ok {
		panic(fmt.Sprintf("synth: unknown modulation source %q", sourceName))
	}

	dest, ok := v.destinations[destName]
	if !ok {
		panic(fmt.Sprintf("synth: unknown modulation destination %q", destName))
	}

	if scale == nil {
		panic("synth: modulation scale is nil")
	}
	if _, ok := v.modulations[scale]; ok {
		panic("synth: modulation scale already connected")
	}

	v.router.Add(scale)

	mod := node.NewMultiply(source, scale.Output(0))
	mod.SetControlRate(dest.ControlRate())
	v.router.Add(mod)
	dest.PlugNext(mod.Output(0))

	v.modulations[scale] = mod
}

// Disconnect removes the routing identified by scale from the given
// destination, restoring the signal path Connect created. It panics on
// an unknown destination and when the scale is not connected.
func (v *Voice) Disconnect(destName string, scale *node.Value) {
	dest, ok := v.destinations[destName]
	if !ok {
		panic(fmt.Sprintf("synth: unknown modulation destination %q", destName))
	}

	mod, ok := v.modulations[scale]
	if !ok {
		panic("synth: modulation scale is not connected")
	}

	dest.UnplugSource(mod.Output(0))
	v.router.Remove(mod)
	v.router.Remove(scale)
	delete(v.modulations, scale)
}

// ModSources returns the name of every modulation source, sorted.
func (v *Voice) ModSources() []string {
	names := make([]string, 0, len(v.sources))
	for name := range v.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// ModDestinations returns the name of every modulation destination,
// sorted.
func (v *Voice) ModDestinations() []string {
	names := make([]string, 0, len(v.destinations))
	for name := range v.destinations {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
