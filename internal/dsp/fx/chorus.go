package fx

import "math"

// chorusVoices is the number of detuned delay taps.
const chorusVoices = 3

// Chorus layers detuned copies of the signal using per-voice LFOs with
// slightly different rates and depths.
type Chorus struct {
	rates  [chorusVoices]float64
	depths [chorusVoices]float64
	wet    float64

	sampleRate float64
	phases     [chorusVoices]float64
	buffers    [chorusVoices][]float64
	positions  [chorusVoices]int
}

func init() {
	Register("chorus", func(sampleRate float64, params map[string]float64) (Effect, error) {
		if err := checkParams("chorus", params, "wet"); err != nil {
			return nil, err
		}
		c := &Chorus{
			rates:      [chorusVoices]float64{0.5, 0.7, 0.9},
			depths:     [chorusVoices]float64{0.6, 0.8, 0.7},
			wet:        param(params, "wet", 0.3),
			sampleRate: sampleRate,
		}
		for v := range c.buffers {
			c.buffers[v] = make([]float64, int(sampleRate/10))
		}
		return c, nil
	})
}

// Name implements chain.Module.
func (c *Chorus) Name() string { return "chorus" }

// SetControl maps the master controller onto the wet mix.
func (c *Chorus) SetControl(value uint8) {
	c.wet = float64(value) / 127.0
}

// Process layers the detuned taps over the dry signal in place, then
// normalizes so stacking voices cannot clip the chain.
func (c *Chorus) Process(block []float64) {
	out := make([]float64, len(block))
	copy(out, block)

	for v := 0; v < chorusVoices; v++ {
		buf := c.buffers[v]
		n := len(buf)
		pos := c.positions[v]
		for i, x := range block {
			modDelay := int(c.depths[v] * (math.Sin(2*math.Pi*c.rates[v]*c.phases[v]) + 1) * 50)
			if modDelay >= n {
				modDelay = n - 1
			}
			readPos := pos - modDelay
			if readPos < 0 {
				readPos += n
			}
			out[i] += buf[readPos] * c.wet
			buf[pos] = x
			pos = (pos + 1) % n
			c.phases[v] += 1.0 / c.sampleRate
		}
		c.positions[v] = pos
	}

	for i := range block {
		block[i] = out[i] / (chorusVoices + 1)
	}
}
