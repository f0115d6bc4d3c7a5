package synth

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/synthgo/internal/ctxlog"
	"github.com/vk/synthgo/internal/dsp/chain"
	"github.com/vk/synthgo/internal/dsp/envelope"
	"github.com/vk/synthgo/internal/dsp/osc"
	"github.com/vk/synthgo/internal/midi"
)

// sinkHandler routes note events straight into the voice table, like the
// full router does, without the controller plumbing.
type sinkHandler struct {
	sink midi.NoteSink
}

func (h sinkHandler) Handle(_ context.Context, ev midi.Event) {
	switch ev.Kind {
	case midi.KindNoteOn:
		h.sink.NoteOn(ev.Note, ev.Velocity)
	case midi.KindNoteOff:
		h.sink.NoteOff(ev.Note)
	}
}

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func newTestEngine(maxVoices int) *Engine {
	adsr := envelope.New()
	adsr.SetAttack(0.001)
	adsr.SetRelease(0.001)
	e := New(Config{
		SampleRate: 44100,
		Gain:       0.3,
		MaxVoices:  maxVoices,
		Bank:       osc.NewBank(),
		ADSR:       adsr,
		Chain:      chain.NewHandler(),
	})
	e.SetHandler(sinkHandler{sink: e.Voices()})
	return e
}

func TestRenderBlockSilentWithoutVoices(t *testing.T) {
	t.Parallel()

	e := newTestEngine(16)
	dst := make([]float64, 256)
	e.RenderBlock(testContext(), dst)

	for _, v := range dst {
		assert.Zero(t, v)
	}
	assert.Equal(t, uint64(256), e.Frames())
}

func TestNoteOnProducesAudio(t *testing.T) {
	t.Parallel()

	e := newTestEngine(16)
	ctx := testContext()

	e.NoteOn(ctx, 69, 100)
	dst := make([]float64, 512)
	e.RenderBlock(ctx, dst)

	assert.Equal(t, 1, e.ActiveVoices())
	var peak float64
	for _, v := range dst {
		peak = math.Max(peak, math.Abs(v))
		require.LessOrEqual(t, math.Abs(v), 1.0)
	}
	assert.Greater(t, peak, 0.01)
}

func TestNoteOffReleasesAndReapsVoice(t *testing.T) {
	t.Parallel()

	e := newTestEngine(16)
	ctx := testContext()

	e.NoteOn(ctx, 60, 100)
	dst := make([]float64, 256)
	e.RenderBlock(ctx, dst)
	require.Equal(t, 1, e.ActiveVoices())

	e.NoteOff(ctx, 60)
	// The 1ms release fits inside one block; the voice is reaped once the
	// envelope completes.
	e.RenderBlock(ctx, dst)
	assert.Zero(t, e.ActiveVoices())

	e.RenderBlock(ctx, dst)
	for _, v := range dst {
		assert.Zero(t, v)
	}
}

func TestRetriggerKeepsSingleVoicePerNote(t *testing.T) {
	t.Parallel()

	e := newTestEngine(16)
	ctx := testContext()

	e.NoteOn(ctx, 60, 100)
	e.NoteOn(ctx, 60, 80)
	dst := make([]float64, 64)
	e.RenderBlock(ctx, dst)

	assert.Equal(t, 1, e.ActiveVoices())
}

func TestVoiceStealingAtCapacity(t *testing.T) {
	t.Parallel()

	e := newTestEngine(2)
	ctx := testContext()

	e.NoteOn(ctx, 60, 100)
	e.NoteOn(ctx, 64, 100)
	e.NoteOn(ctx, 67, 100)
	dst := make([]float64, 64)
	e.RenderBlock(ctx, dst)

	assert.Equal(t, 2, e.ActiveVoices())

	// The oldest note was stolen; releasing it is now a no-op.
	e.NoteOff(ctx, 60)
	e.NoteOff(ctx, 64)
	e.NoteOff(ctx, 67)
	e.RenderBlock(ctx, dst)
	e.RenderBlock(ctx, dst)
	assert.Zero(t, e.ActiveVoices())
}

func TestSubmitDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	e := newTestEngine(16)
	ctx := testContext()

	// Flood well past the queue depth; Submit must never block.
	for i := 0; i < eventQueueSize*2; i++ {
		e.Submit(ctx, midi.NoteOn(uint8(i%128), 100))
	}

	dst := make([]float64, 64)
	e.RenderBlock(ctx, dst)
	assert.LessOrEqual(t, e.ActiveVoices(), 16)
}

func TestRenderBlockSoftClips(t *testing.T) {
	t.Parallel()

	adsr := envelope.New()
	adsr.SetAttack(0)
	e := New(Config{
		SampleRate: 44100,
		Gain:       10, // absurd gain to force the limiter
		MaxVoices:  16,
		Bank:       osc.NewBank(),
		ADSR:       adsr,
		Chain:      chain.NewHandler(),
	})
	e.SetHandler(sinkHandler{sink: e.Voices()})
	ctx := testContext()

	e.NoteOn(ctx, 69, 127)
	dst := make([]float64, 512)
	e.RenderBlock(ctx, dst)

	for _, v := range dst {
		require.Less(t, math.Abs(v), 1.0)
	}
}

func TestNoteFrequency(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 440.0, noteFrequency(69), 1e-9)
	assert.InDelta(t, 880.0, noteFrequency(81), 1e-9)
	assert.InDelta(t, 261.6256, noteFrequency(60), 1e-3)
}
