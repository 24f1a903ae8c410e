package node

import (
	"fmt"

	"github.com/cwbudde/algo-synth/synth/graph"
)

// Delay is a feedback delay with a fractional read position. The delay
// time input is in seconds; reads happen before writes, so the node can
// sit inside a feedback path with an effective minimum delay of one
// sample.
type Delay struct {
	graph.Node
	buffer   []float64
	writePos int
}

// Input slots of Delay.
const (
	delayAudio = iota
	delayTime
	delayFeedback
	delayWet
)

// NewDelay returns a Delay holding up to capacity samples, reading the
// audio source, the delay time in seconds, the feedback amount, and the
// wet mix in [0, 1].
func NewDelay(capacity int, audio, time, feedback, wet *graph.Output) *Delay {
	if capacity < 2 {
		panic(fmt.Sprintf("synth: delay capacity must be at least 2 samples: %d", capacity))
	}

	d := &Delay{buffer: make([]float64, capacity)}
	d.InitNode(d, 4, 1)
	d.Plug(audio, delayAudio)
	d.Plug(time, delayTime)
	d.Plug(feedback, delayFeedback)
	d.Plug(wet, delayWet)

	return d
}

// Reset clears the delay memory.
func (d *Delay) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}
	d.writePos = 0
}

// ProcessBlock writes the wet/dry mix of the delayed signal per frame.
func (d *Delay) ProcessBlock(n int) {
	out := d.Output(0)
	buf := out.Buffer()

	audio := d.Source(delayAudio)
	time := d.Source(delayTime)
	feedback := d.Source(delayFeedback)
	wet := d.Source(delayWet)

	sr := d.SampleRate()
	maxDelay := float64(len(d.buffer) - 1)
	for i := range frames(out, n) {
		samples := clamp(sanitize(time.At(i)*sr), 1, maxDelay)
		read := d.read(samples)

		in := audio.At(i)
		d.write(sanitize(in + feedback.At(i)*read))

		w := wet.At(i)
		buf[i] = in + w*(read-in)
	}
}

// read returns the sample delay samples behind the write position,
// linearly interpolated.
func (d *Delay) read(delay float64) float64 {
	p := int(delay)
	t := delay - float64(p)

	size := len(d.buffer)
	i0 := (d.writePos - p + size) % size
	i1 := (i0 - 1 + size) % size

	return d.buffer[i0] + t*(d.buffer[i1]-d.buffer[i0])
}

func (d *Delay) write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}
