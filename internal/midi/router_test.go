package midi

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/synthgo/internal/ctxlog"
	"github.com/vk/synthgo/internal/dsp/chain"
	"github.com/vk/synthgo/internal/dsp/envelope"
	"github.com/vk/synthgo/internal/dsp/filter"
	"github.com/vk/synthgo/internal/dsp/fx"
	"github.com/vk/synthgo/internal/dsp/osc"
)

type noteCall struct {
	on       bool
	note     uint8
	velocity uint8
}

type fakeSink struct {
	calls []noteCall
}

func (f *fakeSink) NoteOn(note, velocity uint8) {
	f.calls = append(f.calls, noteCall{on: true, note: note, velocity: velocity})
}

func (f *fakeSink) NoteOff(note uint8) {
	f.calls = append(f.calls, noteCall{on: false, note: note})
}

type fakeDisplay struct {
	oscillators int
	envelopes   int
	filters     int
}

func (f *fakeDisplay) Oscillators(levels, detunes map[string]float64) { f.oscillators++ }
func (f *fakeDisplay) Envelope(a, d, s, r float64)                    { f.envelopes++ }
func (f *fakeDisplay) Filter(cutoff, resonance float64)               { f.filters++ }

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func newTestRouter(t *testing.T) (*Router, *fakeSink, *osc.Bank, *envelope.ADSR, *filter.LowPass, *chain.Handler, *fakeDisplay) {
	t.Helper()

	sink := &fakeSink{}
	bank := osc.NewBank()
	adsr := envelope.New()
	lowpass := filter.New(44100)
	ch := chain.NewHandler()
	display := &fakeDisplay{}
	return NewRouter(sink, bank, adsr, lowpass, ch, display), sink, bank, adsr, lowpass, ch, display
}

func TestHandleNoteEvents(t *testing.T) {
	t.Parallel()

	r, sink, _, _, _, _, _ := newTestRouter(t)
	ctx := testContext()

	r.Handle(ctx, NoteOn(60, 100))
	r.Handle(ctx, NoteOff(60))

	require.Len(t, sink.calls, 2)
	assert.Equal(t, noteCall{on: true, note: 60, velocity: 100}, sink.calls[0])
	assert.Equal(t, noteCall{on: false, note: 60}, sink.calls[1])
}

func TestHandleNoteOnVelocityZeroIsNoteOff(t *testing.T) {
	t.Parallel()

	r, sink, _, _, _, _, _ := newTestRouter(t)

	r.Handle(testContext(), NoteOn(64, 0))

	require.Len(t, sink.calls, 1)
	assert.Equal(t, noteCall{on: false, note: 64}, sink.calls[0])
}

func TestControlChangeMixAndDetune(t *testing.T) {
	t.Parallel()

	r, _, bank, _, _, _, display := newTestRouter(t)
	ctx := testContext()

	r.Handle(ctx, ControlChange(CCMixBase+1, 127)) // saw
	assert.InDelta(t, 1.0, bank.Level(osc.Saw), 1e-9)

	r.Handle(ctx, ControlChange(CCDetuneBase+2, 0)) // triangle
	assert.InDelta(t, -1.0, bank.Detune(osc.Triangle), 1e-9)

	assert.Equal(t, 2, display.oscillators)
}

func TestControlChangeEnvelope(t *testing.T) {
	t.Parallel()

	r, _, _, adsr, _, _, display := newTestRouter(t)
	ctx := testContext()

	r.Handle(ctx, ControlChange(CCAttack, 127))
	assert.InDelta(t, 2.0, adsr.Attack, 1e-9)

	r.Handle(ctx, ControlChange(CCSustain, 64))
	assert.InDelta(t, 64.0/127.0, adsr.Sustain, 1e-9)

	r.Handle(ctx, ControlChange(CCRelease, 0))
	assert.Equal(t, 0.0, adsr.Release)

	assert.Equal(t, 3, display.envelopes)
}

func TestControlChangeFilter(t *testing.T) {
	t.Parallel()

	r, _, _, _, lowpass, _, display := newTestRouter(t)
	ctx := testContext()

	r.Handle(ctx, ControlChange(CCCutoff, 127))
	assert.InDelta(t, 12700.0, lowpass.Cutoff(), 1e-6)

	r.Handle(ctx, ControlChange(CCResonance, 127))
	assert.InDelta(t, 1.0, lowpass.Resonance(), 1e-9)

	assert.Equal(t, 2, display.filters)
}

func TestControlChangeEffectMaster(t *testing.T) {
	t.Parallel()

	r, _, _, _, _, ch, _ := newTestRouter(t)
	ctx := testContext()

	eff, err := fx.New("delay", 1000, map[string]float64{"time": 0.01})
	require.NoError(t, err)
	ch.Add(eff)

	// CC 104 is the delay master; full scale pushes feedback to 0.9.
	r.Handle(ctx, ControlChange(104, 127))

	block := make([]float64, 20)
	block[0] = 1.0
	eff.Process(block)
	assert.InDelta(t, 0.9, block[10], 1e-12)
}

func TestControlChangeEffectNotInChain(t *testing.T) {
	t.Parallel()

	r, _, _, _, _, _, _ := newTestRouter(t)

	// Must not panic when the mapped effect is absent.
	r.Handle(testContext(), ControlChange(102, 64))
}

func TestUnmappedControllerIsDropped(t *testing.T) {
	t.Parallel()

	r, sink, bank, _, _, _, display := newTestRouter(t)

	r.Handle(testContext(), ControlChange(1, 64)) // mod wheel, unmapped

	assert.Empty(t, sink.calls)
	assert.Equal(t, 1.0, bank.Level(osc.Sine))
	assert.Zero(t, display.oscillators)
}

func TestNilDisplayIsTolerated(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	r := NewRouter(sink, osc.NewBank(), envelope.New(), filter.New(44100), chain.NewHandler(), nil)

	r.Handle(testContext(), ControlChange(CCAttack, 64))
	r.Handle(testContext(), ControlChange(CCCutoff, 64))
}
