package fx

// Prime-length delay lines keep the comb resonances from stacking up on
// shared frequencies.
var reverbDelayLengths = []int{1553, 1559, 1567, 1571, 1579, 1583, 1597, 1601}

// Reverb is a bank of parallel feedback comb filters with geometrically
// decaying tap gains.
type Reverb struct {
	roomSize float64
	damping  float64
	decay    float64

	lines   [][]float64
	indexes []int
}

func init() {
	Register("reverb", func(sampleRate float64, params map[string]float64) (Effect, error) {
		if err := checkParams("reverb", params, "room_size", "damping", "decay"); err != nil {
			return nil, err
		}
		r := &Reverb{
			roomSize: param(params, "room_size", 0.5),
			damping:  param(params, "damping", 0.5),
			decay:    param(params, "decay", 0.5),
		}
		r.lines = make([][]float64, len(reverbDelayLengths))
		r.indexes = make([]int, len(reverbDelayLengths))
		for i, n := range reverbDelayLengths {
			r.lines[i] = make([]float64, n)
		}
		return r, nil
	})
}

// Name implements chain.Module.
func (r *Reverb) Name() string { return "reverb" }

// SetControl maps the master controller onto the decay amount.
func (r *Reverb) SetControl(value uint8) {
	r.decay = float64(value) / 127.0
}

// Process mixes the comb bank under the dry signal, in place.
func (r *Reverb) Process(block []float64) {
	for i, x := range block {
		var wet float64
		gain := 1.0
		for l, line := range r.lines {
			idx := r.indexes[l]
			tap := line[idx]
			wet += tap * gain
			gain *= 0.8
			line[idx] = x + tap*r.decay
			r.indexes[l] = (idx + 1) % len(line)
		}
		block[i] = x + wet*r.damping
	}
}
