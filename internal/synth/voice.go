package synth

import (
	"math"

	"github.com/vk/synthgo/internal/dsp/envelope"
	"github.com/vk/synthgo/internal/dsp/osc"
)

// voice is one sounding note. It lives in the engine's voice table and
// is only touched from the render goroutine.
type voice struct {
	note     uint8
	velocity uint8
	freq     float64
	seq      uint64

	osc osc.State
	env *envelope.Envelope
}

// noteFrequency converts a MIDI note number to Hz in equal temperament
// with A4 (note 69) at 440 Hz.
func noteFrequency(note uint8) float64 {
	return 440.0 * math.Pow(2, (float64(note)-69)/12.0)
}
