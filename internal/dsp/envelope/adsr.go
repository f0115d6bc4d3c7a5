// Package envelope implements the ADSR amplitude envelope applied to
// every voice: linear attack to full level, decay to the sustain level,
// hold, and on gate-off a linear release to silence.
package envelope

// ADSR holds the shared envelope parameters. Times are in seconds,
// sustain is a level in [0,1].
type ADSR struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

// New returns the engine's power-on envelope defaults.
func New() *ADSR {
	return &ADSR{Attack: 0.1, Decay: 0.1, Sustain: 0.7, Release: 0.1}
}

// SetAttack sets the attack time, floored at zero.
func (a *ADSR) SetAttack(seconds float64) { a.Attack = max(seconds, 0) }

// SetDecay sets the decay time, floored at zero.
func (a *ADSR) SetDecay(seconds float64) { a.Decay = max(seconds, 0) }

// SetSustain sets the sustain level, clamped to [0,1].
func (a *ADSR) SetSustain(level float64) { a.Sustain = min(max(level, 0), 1) }

// SetRelease sets the release time, floored at zero.
func (a *ADSR) SetRelease(seconds float64) { a.Release = max(seconds, 0) }

// Stage identifies where an envelope instance is in its lifecycle.
type Stage int

const (
	StageAttack Stage = iota
	StageDecay
	StageSustain
	StageRelease
	StageDone
)

// Envelope is the per-voice envelope state. It reads its parameters from
// the shared ADSR live, so controller changes affect held voices too.
type Envelope struct {
	params      *ADSR
	stage       Stage
	level       float64
	releaseStep float64
}

// NewEnvelope returns an envelope at the start of its attack stage.
func NewEnvelope(params *ADSR) *Envelope {
	return &Envelope{params: params, stage: StageAttack}
}

// Retrigger restarts the envelope from its current level, as when a held
// note is struck again.
func (e *Envelope) Retrigger() {
	e.stage = StageAttack
}

// Gate releases the envelope: the level ramps from its current value to
// zero over the release time.
func (e *Envelope) Gate() {
	if e.stage == StageRelease || e.stage == StageDone {
		return
	}
	rel := e.params.Release
	if rel <= 0 || e.level <= 0 {
		e.level = 0
		e.stage = StageDone
		return
	}
	e.stage = StageRelease
	e.releaseStep = e.level / rel
}

// Stage reports the current envelope stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Done reports whether the release has completed and the voice can be reaped.
func (e *Envelope) Done() bool { return e.stage == StageDone }

// Next advances the envelope by one sample and returns the amplitude in [0,1].
func (e *Envelope) Next(sampleRate float64) float64 {
	switch e.stage {
	case StageAttack:
		if e.params.Attack <= 0 {
			e.level = 1
			e.stage = StageDecay
			break
		}
		e.level += 1 / (e.params.Attack * sampleRate)
		if e.level >= 1 {
			e.level = 1
			e.stage = StageDecay
		}
	case StageDecay:
		sustain := e.params.Sustain
		if e.params.Decay <= 0 {
			e.level = sustain
			e.stage = StageSustain
			break
		}
		e.level -= (1 - sustain) / (e.params.Decay * sampleRate)
		if e.level <= sustain {
			e.level = sustain
			e.stage = StageSustain
		}
	case StageSustain:
		e.level = e.params.Sustain
	case StageRelease:
		e.level -= e.releaseStep / sampleRate
		if e.level <= 0 {
			e.level = 0
			e.stage = StageDone
		}
	case StageDone:
		e.level = 0
	}
	return e.level
}
