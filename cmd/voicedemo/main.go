// Command voicedemo renders a note sequence through one synthesizer
// voice and plays it on the default audio device, or dumps the raw
// samples to a file.
//
// Usage:
//
//	voicedemo [flags] [file.mid]
//
// With a Standard MIDI File argument the demo performs the file's
// notes, pitch bends, mod wheel and channel pressure monophonically.
// Without one it plays a short built-in phrase.
//
// Examples:
//
//	voicedemo
//	voicedemo song.mid
//	voicedemo -rate 44100 -out take.f32 song.mid
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"github.com/ebitengine/oto/v3"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-synth/synth/voice"
)

// logger is the process-wide structured logger. Safe to use before
// initLogger runs; defaults to slog.Default().
var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	}))
	slog.SetDefault(logger)
}

type eventKind int

const (
	eventNoteOff eventKind = iota
	eventNoteOn
	eventPitchBend
	eventModWheel
	eventAftertouch
)

// scheduleEvent is one timed performance gesture. Note carries the raw
// MIDI key for note events; value holds velocity, wheel position or
// pressure depending on the kind.
type scheduleEvent struct {
	at    time.Duration
	kind  eventKind
	note  float64
	value float64
}

func main() {
	rate := flag.Float64("rate", 48000, "output sample rate in Hz")
	out := flag.String("out", "", "write raw little-endian float32 samples to this file instead of playing")
	tail := flag.Duration("tail", 3*time.Second, "longest release tail rendered after the last event")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: voicedemo [flags] [file.mid]\n\n")
		fmt.Fprintf(os.Stderr, "Renders a MIDI file, or a built-in phrase, through one synthesizer voice.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	initLogger(*debug)

	events := builtinSequence()
	if path := flag.Arg(0); path != "" {
		loaded, err := loadSequence(path)
		if err != nil {
			logger.Error("load midi file", "path", path, "err", err)
			os.Exit(1)
		}

		events = loaded
		logger.Info("loaded midi file", "path", path, "events", len(events))
	}

	samples := renderSequence(events, *rate, *tail)
	logger.Info("rendered", "frames", len(samples)/4, "seconds", float64(len(samples)/4)/(*rate))

	if *out != "" {
		if err := os.WriteFile(*out, samples, 0o644); err != nil {
			logger.Error("write output", "path", *out, "err", err)
			os.Exit(1)
		}

		logger.Info("wrote raw samples", "path", *out, "rate", *rate)
		return
	}

	if err := play(samples, int(*rate)); err != nil {
		logger.Error("playback", "err", err)
		os.Exit(1)
	}
}

// loadSequence reads the note and controller events of a Standard MIDI
// File into one time-sorted schedule. Simultaneous events keep releases
// ahead of presses so retriggers stay clean.
func loadSequence(path string) ([]scheduleEvent, error) {
	var events []scheduleEvent

	err := smf.ReadTracks(path).Do(func(te smf.TrackEvent) {
		at := time.Duration(te.AbsMicroSeconds) * time.Microsecond

		var channel, key, velocity uint8
		var controller, value, pressure uint8
		var relative int16
		var absolute uint16

		switch {
		case te.Message.GetNoteStart(&channel, &key, &velocity):
			events = append(events, scheduleEvent{
				at: at, kind: eventNoteOn, note: float64(key), value: float64(velocity) / 127,
			})
		case te.Message.GetNoteEnd(&channel, &key):
			events = append(events, scheduleEvent{at: at, kind: eventNoteOff, note: float64(key)})
		case te.Message.GetPitchBend(&channel, &relative, &absolute):
			events = append(events, scheduleEvent{
				at: at, kind: eventPitchBend, value: float64(relative) / 8192,
			})
		case te.Message.GetControlChange(&channel, &controller, &value) && controller == 1:
			events = append(events, scheduleEvent{
				at: at, kind: eventModWheel, value: float64(value) / 127,
			})
		case te.Message.GetAfterTouch(&channel, &pressure):
			events = append(events, scheduleEvent{
				at: at, kind: eventAftertouch, value: float64(pressure) / 127,
			})
		}
	}).Error()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}

		return events[i].kind < events[j].kind
	})

	return events, nil
}

// builtinSequence is a short phrase exercising retriggers and a bend:
// an ascending minor arpeggio, then a held root bent a whole step up.
func builtinSequence() []scheduleEvent {
	const step = 280 * time.Millisecond

	notes := []float64{48, 60, 63, 67, 70, 72, 67, 63}

	var events []scheduleEvent
	for i, key := range notes {
		on := time.Duration(i) * step
		events = append(events,
			scheduleEvent{at: on, kind: eventNoteOn, note: key, value: 0.8},
			scheduleEvent{at: on + step*3/4, kind: eventNoteOff, note: key},
		)
	}

	last := time.Duration(len(notes)) * step
	events = append(events,
		scheduleEvent{at: last, kind: eventNoteOn, note: 60, value: 0.9},
		scheduleEvent{at: last + step, kind: eventPitchBend, value: 1},
		scheduleEvent{at: last + 3*step, kind: eventNoteOff, note: 60},
	)

	return events
}

// renderSequence drives one voice through the schedule and returns the
// rendered audio as little-endian float32 bytes.
func renderSequence(events []scheduleEvent, rate float64, tail time.Duration) []byte {
	globals := voice.NewGlobals(voice.WithSampleRate(rate))
	inputs := voice.NewInputs()
	v := voice.NewVoice(globals, inputs)

	blockSize := globals.Config().BlockSize
	tailFrames := int(tail.Seconds() * rate)

	lastFrame := 0
	for _, ev := range events {
		if frame := int(ev.at.Seconds() * rate); frame > lastFrame {
			lastFrame = frame
		}
	}

	var buf bytes.Buffer
	currentKey := math.NaN()

	next := 0
	for start := 0; ; start += blockSize {
		for next < len(events) {
			frame := int(events[next].at.Seconds() * rate)
			if frame >= start+blockSize {
				break
			}

			offset := max(frame-start, 0)
			ev := events[next]
			next++

			switch ev.kind {
			case eventNoteOn:
				logger.Debug("note on", "key", ev.note, "velocity", ev.value)
				inputs.NoteOn(ev.note, ev.value, offset)
				currentKey = ev.note
			case eventNoteOff:
				if ev.note != currentKey {
					continue // stale release of a superseded key
				}

				logger.Debug("note off", "key", ev.note)
				inputs.NoteOff(offset)
				currentKey = math.NaN()
			case eventPitchBend:
				globals.SetPitchWheel(ev.value)
			case eventModWheel:
				globals.SetModWheel(ev.value)
			case eventAftertouch:
				inputs.SetAftertouch(ev.value)
			}
		}

		v.Process(blockSize)
		writeBlock(&buf, v.Output().Buffer())

		if next < len(events) {
			continue
		}
		if v.Finished() || start >= lastFrame+tailFrames {
			break
		}
	}

	return buf.Bytes()
}

func writeBlock(buf *bytes.Buffer, frames []float64) {
	var scratch [4]byte
	for _, s := range frames {
		f := float32(max(-1, min(1, s)))
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(f))
		buf.Write(scratch[:])
	}
}

// play streams the rendered samples to the default audio device and
// blocks until playback drains.
func play(samples []byte, rate int) error {
	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(bytes.NewReader(samples))
	logger.Info("playing", "rate", rate)
	player.Play()

	for player.IsPlaying() {
		time.Sleep(20 * time.Millisecond)
	}

	return player.Close()
}
