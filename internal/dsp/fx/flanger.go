package fx

import "math"

// Flanger sweeps a short modulated delay against the dry signal.
type Flanger struct {
	rate     float64 // LFO rate in Hz
	depth    float64
	feedback float64

	sampleRate float64
	phase      float64 // LFO phase in seconds
	buffer     []float64
	pos        int
}

func init() {
	Register("flanger", func(sampleRate float64, params map[string]float64) (Effect, error) {
		if err := checkParams("flanger", params, "rate", "depth", "feedback"); err != nil {
			return nil, err
		}
		return &Flanger{
			rate:       param(params, "rate", 0.2),
			depth:      param(params, "depth", 0.7),
			feedback:   param(params, "feedback", 0.5),
			sampleRate: sampleRate,
			buffer:     make([]float64, int(sampleRate/10)), // 100ms sweep range
		}, nil
	})
}

// Name implements chain.Module.
func (f *Flanger) Name() string { return "flanger" }

// SetControl maps the master controller onto the sweep depth.
func (f *Flanger) SetControl(value uint8) {
	f.depth = float64(value) / 127.0
}

// Process applies the swept delay in place.
func (f *Flanger) Process(block []float64) {
	n := len(f.buffer)
	for i, x := range block {
		modDelay := int(f.depth * (math.Sin(2*math.Pi*f.rate*f.phase) + 1) * 100)
		if modDelay >= n {
			modDelay = n - 1
		}
		readPos := f.pos - modDelay
		if readPos < 0 {
			readPos += n
		}
		block[i] = x + f.buffer[readPos]*f.feedback
		f.buffer[f.pos] = x
		f.pos = (f.pos + 1) % n
		f.phase += 1.0 / f.sampleRate
	}
}
