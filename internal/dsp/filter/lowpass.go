// Package filter implements the engine's one-pole low-pass filter with
// the classic difference equation y[i] = a*x[i] + (1-a)*y[i-1] where
// a = fc / (fc + sampleRate).
package filter

import "math"

// Cutoff bounds for the exponential controller mapping.
const (
	minCutoffHz = 20.0
	maxCutoffHz = 12700.0
)

// LowPass is a stateful one-pole low-pass filter. Resonance is tracked
// and surfaced for display but does not enter the difference equation.
type LowPass struct {
	cutoff     float64
	resonance  float64
	sampleRate float64
	prev       float64
}

// New returns a low-pass filter with a 1 kHz cutoff and 0.5 resonance.
func New(sampleRate float64) *LowPass {
	return &LowPass{
		cutoff:     1000.0,
		resonance:  0.5,
		sampleRate: sampleRate,
	}
}

// Name implements the chain module interface.
func (f *LowPass) Name() string { return "filter" }

// SetCutoff sets the cutoff frequency in Hz, clamped to the audible mapping range.
func (f *LowPass) SetCutoff(hz float64) {
	f.cutoff = math.Min(math.Max(hz, minCutoffHz), maxCutoffHz)
}

// SetCutoffCC maps a 0..127 controller value exponentially across
// 20 Hz .. 12.7 kHz, so equal controller steps feel like equal pitch steps.
func (f *LowPass) SetCutoffCC(value uint8) {
	f.cutoff = minCutoffHz * math.Pow(maxCutoffHz/minCutoffHz, float64(value)/127.0)
}

// SetResonance sets the resonance, clamped to [0,1].
func (f *LowPass) SetResonance(q float64) {
	f.resonance = math.Min(math.Max(q, 0), 1)
}

// SetResonanceCC applies a 0..127 controller value as resonance.
func (f *LowPass) SetResonanceCC(value uint8) {
	f.SetResonance(float64(value) / 127.0)
}

// Cutoff returns the current cutoff frequency in Hz.
func (f *LowPass) Cutoff() float64 { return f.cutoff }

// Resonance returns the current resonance.
func (f *LowPass) Resonance() float64 { return f.resonance }

// Process filters the block in place. State carries across blocks.
func (f *LowPass) Process(block []float64) {
	alpha := f.cutoff / (f.cutoff + f.sampleRate)
	for i, x := range block {
		f.prev = alpha*x + (1-alpha)*f.prev
		block[i] = f.prev
	}
}
