package fx

import "math"

// Distortion is a tanh waveshaper followed by a two-tap tone filter.
type Distortion struct {
	drive float64
	tone  float64
	prev  float64
}

func init() {
	Register("distortion", func(sampleRate float64, params map[string]float64) (Effect, error) {
		if err := checkParams("distortion", params, "drive", "tone"); err != nil {
			return nil, err
		}
		return &Distortion{
			drive: param(params, "drive", 2.0),
			tone:  param(params, "tone", 0.5),
		}, nil
	})
}

// Name implements chain.Module.
func (d *Distortion) Name() string { return "distortion" }

// SetControl maps the master controller onto the drive, 1x..10x.
func (d *Distortion) SetControl(value uint8) {
	d.drive = 1.0 + float64(value)/127.0*9.0
}

// Process shapes the block in place. The tone stage is a first-order
// smoother mixing each sample with its predecessor.
func (d *Distortion) Process(block []float64) {
	for i, x := range block {
		driven := math.Tanh(x * d.drive)
		block[i] = d.tone*driven + (1-d.tone)*d.prev
		d.prev = driven
	}
}
