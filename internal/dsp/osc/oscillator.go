// Package osc implements the wavetable oscillator bank: four basic
// waveforms with per-waveform mix level and detune, summed per sample.
package osc

import (
	"fmt"
	"math"
	"sync"
)

// Shape identifies one of the basic waveforms.
type Shape int

const (
	Sine Shape = iota
	Saw
	Triangle
	Pulse

	numShapes
)

// NumShapes is the number of supported waveforms.
const NumShapes = int(numShapes)

var shapeNames = [numShapes]string{"sine", "saw", "triangle", "pulse"}

func (s Shape) String() string {
	if s < 0 || s >= numShapes {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ShapeFromName resolves a waveform name as it appears in patch files.
func ShapeFromName(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("unknown oscillator shape %q", name)
}

// Shapes returns all supported shapes in display order.
func Shapes() []Shape {
	return []Shape{Sine, Saw, Triangle, Pulse}
}

// tableSize is the number of samples in one cached waveform cycle.
const tableSize = 2048

var (
	tablesOnce sync.Once
	tables     [numShapes][]float64
)

// waveTable returns one cached cycle of the given waveform. Tables are
// generated once and shared; generation is identical for every bank.
func waveTable(s Shape) []float64 {
	tablesOnce.Do(func() {
		for sh := Shape(0); sh < numShapes; sh++ {
			tbl := make([]float64, tableSize)
			for i := range tbl {
				t := float64(i) / tableSize
				switch sh {
				case Sine:
					tbl[i] = math.Sin(2 * math.Pi * t)
				case Saw:
					tbl[i] = 2 * (t - math.Floor(t+0.5))
				case Triangle:
					tbl[i] = 2*math.Abs(2*(t-math.Floor(t+0.5))) - 1
				case Pulse:
					if t < 0.5 {
						tbl[i] = 1.0
					} else {
						tbl[i] = -1.0
					}
				}
			}
			tables[sh] = tbl
		}
	})
	return tables[s]
}

// Bank holds the mix level and detune for each waveform. It is owned by
// the render goroutine; all mutation happens on the event path.
type Bank struct {
	levels  [numShapes]float64
	detunes [numShapes]float64 // semitones, -1..+1
}

// NewBank returns a bank with a single sine at full level, matching the
// engine's power-on default.
func NewBank() *Bank {
	b := &Bank{}
	b.levels[Sine] = 1.0
	return b
}

// SetLevel sets the mix level for a waveform, clamped to [0,1].
func (b *Bank) SetLevel(s Shape, level float64) {
	b.levels[s] = clamp(level, 0, 1)
}

// SetDetune sets the detune for a waveform in semitones, clamped to [-1,1].
func (b *Bank) SetDetune(s Shape, semitones float64) {
	b.detunes[s] = clamp(semitones, -1, 1)
}

// SetLevelCC applies a 0..127 controller value as a mix level.
func (b *Bank) SetLevelCC(s Shape, value uint8) {
	b.SetLevel(s, float64(value)/127.0)
}

// SetDetuneCC applies a 0..127 controller value as a detune of -1..+1 semitones.
func (b *Bank) SetDetuneCC(s Shape, value uint8) {
	b.SetDetune(s, float64(value)/127.0*2.0-1.0)
}

// Level returns the current mix level for a waveform.
func (b *Bank) Level(s Shape) float64 { return b.levels[s] }

// Detune returns the current detune for a waveform in semitones.
func (b *Bank) Detune(s Shape) float64 { return b.detunes[s] }

// Levels returns a name-keyed copy of the mix levels for display.
func (b *Bank) Levels() map[string]float64 {
	out := make(map[string]float64, numShapes)
	for s := Shape(0); s < numShapes; s++ {
		out[s.String()] = b.levels[s]
	}
	return out
}

// Detunes returns a name-keyed copy of the detune values for display.
func (b *Bank) Detunes() map[string]float64 {
	out := make(map[string]float64, numShapes)
	for s := Shape(0); s < numShapes; s++ {
		out[s.String()] = b.detunes[s]
	}
	return out
}

// State carries the per-voice phase accumulators, one per waveform so
// detuned waveforms drift against each other.
type State struct {
	phases [numShapes]float64 // in cycles, 0..1
}

// Next advances the voice state by one sample at the given fundamental
// frequency and returns the mixed output of all active waveforms.
func (b *Bank) Next(st *State, freq, sampleRate float64) float64 {
	var out float64
	for s := Shape(0); s < numShapes; s++ {
		level := b.levels[s]
		if level <= 0 {
			continue
		}
		detuned := freq * math.Pow(2, b.detunes[s]/12.0)
		st.phases[s] += detuned / sampleRate
		if st.phases[s] >= 1 {
			st.phases[s] -= math.Floor(st.phases[s])
		}
		tbl := waveTable(s)
		out += level * tbl[int(st.phases[s]*tableSize)%tableSize]
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
