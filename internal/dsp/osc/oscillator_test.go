package osc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeFromName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"sine", "saw", "triangle", "pulse"} {
		shape, err := ShapeFromName(name)
		require.NoError(t, err)
		assert.Equal(t, name, shape.String())
	}

	_, err := ShapeFromName("square")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown oscillator shape")
}

func TestNewBankDefaults(t *testing.T) {
	t.Parallel()

	b := NewBank()
	assert.Equal(t, 1.0, b.Level(Sine))
	assert.Equal(t, 0.0, b.Level(Saw))
	assert.Equal(t, 0.0, b.Level(Triangle))
	assert.Equal(t, 0.0, b.Level(Pulse))
}

func TestBankCCMapping(t *testing.T) {
	t.Parallel()

	b := NewBank()

	b.SetLevelCC(Saw, 127)
	assert.InDelta(t, 1.0, b.Level(Saw), 1e-9)
	b.SetLevelCC(Saw, 0)
	assert.Equal(t, 0.0, b.Level(Saw))

	b.SetDetuneCC(Triangle, 127)
	assert.InDelta(t, 1.0, b.Detune(Triangle), 1e-9)
	b.SetDetuneCC(Triangle, 0)
	assert.InDelta(t, -1.0, b.Detune(Triangle), 1e-9)

	// Out-of-range direct sets clamp.
	b.SetLevel(Sine, 2.0)
	assert.Equal(t, 1.0, b.Level(Sine))
	b.SetDetune(Sine, -3.0)
	assert.Equal(t, -1.0, b.Detune(Sine))
}

func TestNextPureSine(t *testing.T) {
	t.Parallel()

	b := NewBank()
	st := &State{}

	// One full cycle at 1 Hz over a 2048 Hz sample rate walks the whole
	// table; output must stay in [-1,1] and cross zero.
	var crossed bool
	prev := 0.0
	for i := 0; i < 2048; i++ {
		v := b.Next(st, 1.0, 2048.0)
		assert.LessOrEqual(t, math.Abs(v), 1.0)
		if prev > 0 && v < 0 {
			crossed = true
		}
		prev = v
	}
	assert.True(t, crossed, "expected a zero crossing within one cycle")
}

func TestNextInactiveWavesAreSilent(t *testing.T) {
	t.Parallel()

	b := NewBank()
	b.SetLevel(Sine, 0)
	st := &State{}

	for i := 0; i < 100; i++ {
		assert.Zero(t, b.Next(st, 440.0, 44100.0))
	}
}

func TestNextLevelScalesLinearly(t *testing.T) {
	t.Parallel()

	full := NewBank()
	half := NewBank()
	half.SetLevel(Sine, 0.5)

	stFull := &State{}
	stHalf := &State{}
	for i := 0; i < 512; i++ {
		vf := full.Next(stFull, 440.0, 44100.0)
		vh := half.Next(stHalf, 440.0, 44100.0)
		assert.InDelta(t, vf*0.5, vh, 1e-9)
	}
}

func TestPulseIsBipolarSquare(t *testing.T) {
	t.Parallel()

	b := NewBank()
	b.SetLevel(Sine, 0)
	b.SetLevel(Pulse, 1)
	st := &State{}

	seen := map[float64]bool{}
	for i := 0; i < 2048; i++ {
		seen[b.Next(st, 1.0, 2048.0)] = true
	}
	assert.True(t, seen[1.0], "expected high phase")
	assert.True(t, seen[-1.0], "expected low phase")
	assert.Len(t, seen, 2)
}

func TestLevelsAndDetunesSnapshot(t *testing.T) {
	t.Parallel()

	b := NewBank()
	b.SetDetune(Saw, 0.25)

	levels := b.Levels()
	detunes := b.Detunes()
	require.Len(t, levels, NumShapes)
	require.Len(t, detunes, NumShapes)
	assert.Equal(t, 1.0, levels["sine"])
	assert.Equal(t, 0.25, detunes["saw"])
}
