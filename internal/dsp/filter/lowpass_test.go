package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessFollowsDifferenceEquation(t *testing.T) {
	t.Parallel()

	f := New(44100)
	alpha := 1000.0 / (1000.0 + 44100.0)

	block := []float64{1, 1, 1}
	f.Process(block)

	assert.InDelta(t, alpha, block[0], 1e-12)
	assert.InDelta(t, alpha+(1-alpha)*alpha, block[1], 1e-12)
	assert.Greater(t, block[2], block[1])
}

func TestProcessStateCarriesAcrossBlocks(t *testing.T) {
	t.Parallel()

	f := New(44100)

	first := []float64{1, 1, 1, 1}
	f.Process(first)
	second := []float64{1, 1, 1, 1}
	f.Process(second)

	// A fresh filter would restart the ramp; carried state continues it.
	assert.Greater(t, second[0], first[3])
}

func TestStepInputConvergesToDC(t *testing.T) {
	t.Parallel()

	f := New(44100)
	f.SetCutoff(5000)

	var last float64
	for i := 0; i < 200; i++ {
		block := make([]float64, 256)
		for j := range block {
			block[j] = 1.0
		}
		f.Process(block)
		last = block[len(block)-1]
	}
	assert.InDelta(t, 1.0, last, 0.01)
}

func TestCutoffCCMappingIsExponential(t *testing.T) {
	t.Parallel()

	f := New(44100)

	f.SetCutoffCC(0)
	assert.InDelta(t, 20.0, f.Cutoff(), 1e-9)

	f.SetCutoffCC(127)
	assert.InDelta(t, 12700.0, f.Cutoff(), 1e-6)

	// Midpoint lands at the geometric mean, not the arithmetic one.
	f.SetCutoffCC(64)
	require.Greater(t, f.Cutoff(), 20.0)
	require.Less(t, f.Cutoff(), 6360.0)
}

func TestSetCutoffClamps(t *testing.T) {
	t.Parallel()

	f := New(44100)
	f.SetCutoff(1)
	assert.Equal(t, 20.0, f.Cutoff())
	f.SetCutoff(1e6)
	assert.Equal(t, 12700.0, f.Cutoff())
}

func TestResonanceCC(t *testing.T) {
	t.Parallel()

	f := New(44100)
	f.SetResonanceCC(127)
	assert.InDelta(t, 1.0, f.Resonance(), 1e-9)
	f.SetResonanceCC(0)
	assert.Equal(t, 0.0, f.Resonance())
	f.SetResonance(2)
	assert.Equal(t, 1.0, f.Resonance())
}

func TestName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "filter", New(44100).Name())
}
