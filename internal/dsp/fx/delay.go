package fx

// maxDelaySeconds bounds the delay buffer.
const maxDelaySeconds = 2.0

// Delay is a single-tap feedback delay over a circular buffer.
type Delay struct {
	delayTime float64
	feedback  float64

	buffer       []float64
	writePos     int
	delaySamples int
}

func init() {
	Register("delay", func(sampleRate float64, params map[string]float64) (Effect, error) {
		if err := checkParams("delay", params, "time", "feedback"); err != nil {
			return nil, err
		}
		d := &Delay{
			delayTime: param(params, "time", 0.3),
			feedback:  param(params, "feedback", 0.4),
			buffer:    make([]float64, int(maxDelaySeconds*sampleRate)),
		}
		if d.delayTime < 0 {
			d.delayTime = 0
		}
		if d.delayTime > maxDelaySeconds {
			d.delayTime = maxDelaySeconds
		}
		d.delaySamples = int(d.delayTime * sampleRate)
		if d.delaySamples >= len(d.buffer) {
			d.delaySamples = len(d.buffer) - 1
		}
		return d, nil
	})
}

// Name implements chain.Module.
func (d *Delay) Name() string { return "delay" }

// SetControl maps the master controller onto the feedback, capped below
// unity so the tail always dies out.
func (d *Delay) SetControl(value uint8) {
	d.feedback = float64(value) / 127.0 * 0.9
}

// Process mixes the delayed tap into the block in place. Only the dry
// signal is written back into the buffer, so repeats fade by feedback.
func (d *Delay) Process(block []float64) {
	n := len(d.buffer)
	for i, x := range block {
		readPos := d.writePos - d.delaySamples
		if readPos < 0 {
			readPos += n
		}
		block[i] = x + d.buffer[readPos]*d.feedback
		d.buffer[d.writePos] = x
		d.writePos = (d.writePos + 1) % n
	}
}
