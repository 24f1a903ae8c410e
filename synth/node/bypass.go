package node

import "github.com/cwbudde/algo-synth/synth/graph"

// Bypass wraps a nested router behind a bypass control. While the
// control is zero the nested graph runs and one routed output is
// forwarded; while it is nonzero the audio input is copied through and
// the nested graph is skipped entirely, saving its whole cost.
type Bypass struct {
	graph.Node
	inner *graph.Router
	route *graph.Output
}

var _ graph.Container = (*Bypass)(nil)

// Input slots of Bypass.
const (
	bypassControl = iota
	bypassAudio
)

// NewBypass returns a Bypass around the given nested router, reading
// the bypass control and the dry audio source.
func NewBypass(inner *graph.Router, bypass, audio *graph.Output) *Bypass {
	if inner == nil {
		panic("synth: bypass requires a nested router")
	}

	b := &Bypass{inner: inner}
	b.InitNode(b, 2, 1)
	b.Plug(bypass, bypassControl)
	b.Plug(audio, bypassAudio)

	return b
}

// Inner returns the nested router.
func (b *Bypass) Inner() *graph.Router { return b.inner }

// Route selects the nested output forwarded while the bypass is off.
func (b *Bypass) Route(out *graph.Output) { b.route = out }

// ProcessBlock copies the dry audio or runs the nested graph.
func (b *Bypass) ProcessBlock(n int) {
	out := b.Output(0)
	buf := out.Buffer()

	if b.Source(bypassControl).At(0) != 0 {
		audio := b.Source(bypassAudio)
		for i := range frames(out, n) {
			buf[i] = audio.At(i)
		}

		return
	}

	b.inner.ProcessBlock(n)

	if b.route == nil {
		for i := range frames(out, n) {
			buf[i] = 0
		}

		return
	}

	for i := range frames(out, n) {
		buf[i] = b.route.At(i)
	}
}
