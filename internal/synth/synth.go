// Package synth implements the polyphonic voice engine. Events enter
// through a queue from any goroutine; the render goroutine drains the
// queue, updates the voice table, sums the voices through the oscillator
// bank and envelope, and runs the block through the audio chain.
package synth

import (
	"context"
	"math"

	"github.com/vk/synthgo/internal/ctxlog"
	"github.com/vk/synthgo/internal/dsp/chain"
	"github.com/vk/synthgo/internal/dsp/envelope"
	"github.com/vk/synthgo/internal/dsp/osc"
	"github.com/vk/synthgo/internal/midi"
)

// eventQueueSize bounds the event queue. Submitters never block the
// audio path: events past this depth are dropped with a warning.
const eventQueueSize = 256

// Handler applies a decoded event to the engine components. It is
// invoked on the render goroutine during queue draining.
type Handler interface {
	Handle(ctx context.Context, ev midi.Event)
}

// Config carries the engine parameters resolved from the patch.
type Config struct {
	SampleRate float64
	Gain       float64
	MaxVoices  int

	Bank  *osc.Bank
	ADSR  *envelope.ADSR
	Chain *chain.Handler
}

// Engine is the synthesizer core. Submit is safe from any goroutine;
// everything else belongs to the render goroutine.
type Engine struct {
	cfg     Config
	events  chan midi.Event
	voices  map[uint8]*voice
	seq     uint64
	handler Handler
	frames  uint64
}

// New creates an engine from a resolved configuration.
func New(cfg Config) *Engine {
	return &Engine{
		cfg:    cfg,
		events: make(chan midi.Event, eventQueueSize),
		voices: make(map[uint8]*voice),
	}
}

// SetHandler installs the event handler (the MIDI router). Must be
// called before the first RenderBlock.
func (e *Engine) SetHandler(h Handler) {
	e.handler = h
}

// Voices returns the note sink backed by the engine's voice table. The
// returned sink must only be driven from the render goroutine; external
// callers go through Submit.
func (e *Engine) Voices() midi.NoteSink {
	return voiceTable{e}
}

// Submit queues an event for the next render block. A full queue drops
// the event rather than stalling the submitter.
func (e *Engine) Submit(ctx context.Context, ev midi.Event) {
	select {
	case e.events <- ev:
	default:
		ctxlog.FromContext(ctx).Warn("Event queue full, dropping event.", "kind", ev.Kind.String())
	}
}

// NoteOn queues a note-on event.
func (e *Engine) NoteOn(ctx context.Context, note, velocity uint8) {
	e.Submit(ctx, midi.NoteOn(note, velocity))
}

// NoteOff queues a note-off event.
func (e *Engine) NoteOff(ctx context.Context, note uint8) {
	e.Submit(ctx, midi.NoteOff(note))
}

// ActiveVoices reports the voice-table size, including releasing voices.
// Render-goroutine only.
func (e *Engine) ActiveVoices() int { return len(e.voices) }

// Frames reports the total number of frames rendered.
func (e *Engine) Frames() uint64 { return e.frames }

// RenderBlock produces one block of audio into dst: drain events, sum
// voices, run the chain, master gain staging and a tanh soft clip.
func (e *Engine) RenderBlock(ctx context.Context, dst []float64) {
	e.drainEvents(ctx)

	for i := range dst {
		dst[i] = 0
	}

	sr := e.cfg.SampleRate
	for note, v := range e.voices {
		amp := e.cfg.Gain * float64(v.velocity) / 127.0
		for i := range dst {
			dst[i] += amp * v.env.Next(sr) * e.cfg.Bank.Next(&v.osc, v.freq, sr)
		}
		if v.env.Done() {
			delete(e.voices, note)
		}
	}

	e.cfg.Chain.Process(dst)

	for i := range dst {
		dst[i] = math.Tanh(dst[i])
	}
	e.frames += uint64(len(dst))
}

// drainEvents applies every queued event without blocking.
func (e *Engine) drainEvents(ctx context.Context) {
	for {
		select {
		case ev := <-e.events:
			e.handler.Handle(ctx, ev)
		default:
			return
		}
	}
}

// voiceTable adapts the engine's voice table to midi.NoteSink for the router.
type voiceTable struct {
	e *Engine
}

func (t voiceTable) NoteOn(note, velocity uint8) {
	e := t.e
	if v, held := e.voices[note]; held {
		v.velocity = velocity
		v.env.Retrigger()
		return
	}
	if len(e.voices) >= e.cfg.MaxVoices {
		e.stealOldest()
	}
	e.seq++
	e.voices[note] = &voice{
		note:     note,
		velocity: velocity,
		freq:     noteFrequency(note),
		seq:      e.seq,
		env:      envelope.NewEnvelope(e.cfg.ADSR),
	}
}

func (t voiceTable) NoteOff(note uint8) {
	if v, held := t.e.voices[note]; held {
		v.env.Gate()
	}
}

// stealOldest drops the longest-held voice to make room for a new one.
func (e *Engine) stealOldest() {
	var oldest *voice
	for _, v := range e.voices {
		if oldest == nil || v.seq < oldest.seq {
			oldest = v
		}
	}
	if oldest != nil {
		delete(e.voices, oldest.note)
	}
}
