// Package patch loads, merges and validates HCL patch files into the
// resolved configuration the engine is built from. A patch describes the
// synth globals, the oscillator mix, the envelope, the filter and the
// ordered effects chain.
package patch

import (
	"fmt"

	"github.com/vk/synthgo/internal/dsp/fx"
	"github.com/vk/synthgo/internal/dsp/osc"
)

// Patch is the fully resolved configuration. Zero files or zero blocks
// resolve to the engine defaults; loading never fails on emptiness.
type Patch struct {
	SampleRate int
	BlockSize  int
	Gain       float64
	MaxVoices  int

	Oscillators []Oscillator
	Envelope    Envelope
	Filter      Filter
	Effects     []Effect
}

// Oscillator is one waveform entry in the mix.
type Oscillator struct {
	Shape  string
	Level  float64
	Detune float64 // semitones
}

// Envelope holds the ADSR parameters in seconds (sustain is a level).
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// Filter holds the low-pass parameters.
type Filter struct {
	Cutoff    float64
	Resonance float64
}

// Effect is one ordered chain entry. Params are effect-specific and
// validated by the effect factory.
type Effect struct {
	Type   string
	Params map[string]float64
}

// Default returns the engine power-on patch: a single sine voice, the
// stock envelope and filter, no effects.
func Default() *Patch {
	return &Patch{
		SampleRate: 44100,
		BlockSize:  256,
		Gain:       0.3,
		MaxVoices:  16,
		Envelope:   Envelope{Attack: 0.1, Decay: 0.1, Sustain: 0.7, Release: 0.1},
		Filter:     Filter{Cutoff: 1000, Resonance: 0.5},
	}
}

// Validate checks the resolved patch. Errors name the offending block so
// users can find it in their files.
func (p *Patch) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("synth block: sample_rate must be positive, got %d", p.SampleRate)
	}
	if p.BlockSize <= 0 {
		return fmt.Errorf("synth block: block_size must be positive, got %d", p.BlockSize)
	}
	if p.Gain < 0 || p.Gain > 1 {
		return fmt.Errorf("synth block: gain must be in [0,1], got %g", p.Gain)
	}
	if p.MaxVoices <= 0 {
		return fmt.Errorf("synth block: max_voices must be positive, got %d", p.MaxVoices)
	}

	for _, o := range p.Oscillators {
		if _, err := osc.ShapeFromName(o.Shape); err != nil {
			return fmt.Errorf("oscillator block: %w", err)
		}
		if o.Level < 0 || o.Level > 1 {
			return fmt.Errorf("oscillator %q: level must be in [0,1], got %g", o.Shape, o.Level)
		}
		if o.Detune < -1 || o.Detune > 1 {
			return fmt.Errorf("oscillator %q: detune must be in [-1,1] semitones, got %g", o.Shape, o.Detune)
		}
	}

	e := p.Envelope
	if e.Attack < 0 || e.Decay < 0 || e.Release < 0 {
		return fmt.Errorf("envelope block: times must be >= 0")
	}
	if e.Sustain < 0 || e.Sustain > 1 {
		return fmt.Errorf("envelope block: sustain must be in [0,1], got %g", e.Sustain)
	}

	if p.Filter.Cutoff <= 0 {
		return fmt.Errorf("filter block: cutoff must be positive, got %g", p.Filter.Cutoff)
	}
	if p.Filter.Resonance < 0 || p.Filter.Resonance > 1 {
		return fmt.Errorf("filter block: resonance must be in [0,1], got %g", p.Filter.Resonance)
	}

	for _, ef := range p.Effects {
		if !fx.Exists(ef.Type) {
			return fmt.Errorf("effect block: unknown effect type %q (known: %v)", ef.Type, fx.Names())
		}
	}

	return nil
}
