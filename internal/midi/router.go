package midi

import (
	"context"

	"github.com/vk/synthgo/internal/ctxlog"
	"github.com/vk/synthgo/internal/dsp/chain"
	"github.com/vk/synthgo/internal/dsp/envelope"
	"github.com/vk/synthgo/internal/dsp/filter"
	"github.com/vk/synthgo/internal/dsp/fx"
	"github.com/vk/synthgo/internal/dsp/osc"
)

// Controller assignments. Mix and detune are indexed sine, saw,
// triangle, pulse in order.
const (
	CCMixBase    uint8 = 14 // 14..17
	CCAttack     uint8 = 18
	CCDecay      uint8 = 19
	CCSustain    uint8 = 20
	CCRelease    uint8 = 21
	CCCutoff     uint8 = 22
	CCResonance  uint8 = 23
	CCDetuneBase uint8 = 26 // 26..29
)

// envTimeScale maps a full-scale controller to this many seconds of
// attack, decay or release.
const envTimeScale = 2.0

// NoteSink receives normalized note events. The synth engine's voice
// table implements it.
type NoteSink interface {
	NoteOn(note, velocity uint8)
	NoteOff(note uint8)
}

// Display receives parameter refreshes after controller changes. All
// methods must be non-blocking on the caller's side.
type Display interface {
	Oscillators(levels, detunes map[string]float64)
	Envelope(attack, decay, sustain, release float64)
	Filter(cutoff, resonance float64)
}

// Router fans decoded events out to the engine components. Handle is
// only called from the render goroutine (events arrive via the engine's
// queue), so the targets need no locking.
type Router struct {
	notes   NoteSink
	bank    *osc.Bank
	adsr    *envelope.ADSR
	lowpass *filter.LowPass
	chain   *chain.Handler
	display Display

	fxControls map[uint8]string
}

// NewRouter wires a router to its targets. display may be nil.
func NewRouter(notes NoteSink, bank *osc.Bank, adsr *envelope.ADSR, lowpass *filter.LowPass, ch *chain.Handler, display Display) *Router {
	return &Router{
		notes:      notes,
		bank:       bank,
		adsr:       adsr,
		lowpass:    lowpass,
		chain:      ch,
		display:    display,
		fxControls: fx.ControlMapping(),
	}
}

// Handle routes one event. Note-on with velocity zero is normalized to
// note-off before it reaches the voice table.
func (r *Router) Handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case KindNoteOn:
		if ev.Velocity == 0 {
			r.notes.NoteOff(ev.Note)
			return
		}
		r.notes.NoteOn(ev.Note, ev.Velocity)
	case KindNoteOff:
		r.notes.NoteOff(ev.Note)
	case KindControlChange:
		r.handleControlChange(ctx, ev.Controller, ev.Value)
	}
}

func (r *Router) handleControlChange(ctx context.Context, controller, value uint8) {
	norm := float64(value) / 127.0

	switch {
	case controller >= CCMixBase && controller < CCMixBase+uint8(osc.NumShapes):
		r.bank.SetLevelCC(osc.Shape(controller-CCMixBase), value)
		r.refreshOscillators()
	case controller >= CCDetuneBase && controller < CCDetuneBase+uint8(osc.NumShapes):
		r.bank.SetDetuneCC(osc.Shape(controller-CCDetuneBase), value)
		r.refreshOscillators()
	case controller == CCAttack:
		r.adsr.SetAttack(norm * envTimeScale)
		r.refreshEnvelope()
	case controller == CCDecay:
		r.adsr.SetDecay(norm * envTimeScale)
		r.refreshEnvelope()
	case controller == CCSustain:
		r.adsr.SetSustain(norm)
		r.refreshEnvelope()
	case controller == CCRelease:
		r.adsr.SetRelease(norm * envTimeScale)
		r.refreshEnvelope()
	case controller == CCCutoff:
		r.lowpass.SetCutoffCC(value)
		r.refreshFilter()
	case controller == CCResonance:
		r.lowpass.SetResonanceCC(value)
		r.refreshFilter()
	default:
		if name, ok := r.fxControls[controller]; ok {
			if effect, isFx := r.chain.Get(name).(fx.Effect); isFx {
				effect.SetControl(value)
				return
			}
			ctxlog.FromContext(ctx).Debug("Controller targets an effect not present in the chain.", "controller", controller, "effect", name)
			return
		}
		ctxlog.FromContext(ctx).Debug("Dropping unmapped controller.", "controller", controller, "value", value)
	}
}

func (r *Router) refreshOscillators() {
	if r.display != nil {
		r.display.Oscillators(r.bank.Levels(), r.bank.Detunes())
	}
}

func (r *Router) refreshEnvelope() {
	if r.display != nil {
		r.display.Envelope(r.adsr.Attack, r.adsr.Decay, r.adsr.Sustain, r.adsr.Release)
	}
}

func (r *Router) refreshFilter() {
	if r.display != nil {
		r.display.Filter(r.lowpass.Cutoff(), r.lowpass.Resonance())
	}
}
