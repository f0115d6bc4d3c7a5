// Package display renders terminal bar meters for the synth parameters:
// oscillator mix and detune, the envelope stages, and the filter. It is
// the engine's live control feedback, so writes are rate limited and
// never block the audio path.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
)

// barWidth is the number of cells in a meter bar.
const barWidth = 20

// Meters writes the parameter panels to a single writer.
type Meters struct {
	// MinInterval suppresses refreshes of the same panel arriving
	// faster than this. Tests set it to zero.
	MinInterval time.Duration

	w  io.Writer
	mu sync.Mutex

	lastOsc    time.Time
	lastEnv    time.Time
	lastFilter time.Time
}

// New returns meters writing to w with a 100ms per-panel refresh floor.
func New(w io.Writer) *Meters {
	return &Meters{w: w, MinInterval: 100 * time.Millisecond}
}

// Oscillators renders the mix level and detune of each waveform.
func (m *Meters) Oscillators(levels, detunes map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.due(&m.lastOsc) {
		return
	}

	fmt.Fprintf(m.w, "\n%s\n", color.Bold.Sprint("=== Oscillator Values ==="))
	names := make([]string, 0, len(levels))
	for name := range levels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(m.w, "%-8s %s %.2f  detune %+.2f\n",
			name, bar(levels[name]), levels[name], detunes[name])
	}
	fmt.Fprintln(m.w, strings.Repeat("-", 50))
}

// Envelope renders the four ADSR stages. Times are shown against the
// 2-second controller range, sustain as a plain level.
func (m *Meters) Envelope(attack, decay, sustain, release float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.due(&m.lastEnv) {
		return
	}

	fmt.Fprintf(m.w, "\n%s\n", color.Bold.Sprint("=== ADSR Values ==="))
	fmt.Fprintf(m.w, "%-8s %s %.2fs\n", "Attack", bar(attack/2), attack)
	fmt.Fprintf(m.w, "%-8s %s %.2fs\n", "Decay", bar(decay/2), decay)
	fmt.Fprintf(m.w, "%-8s %s %.2f\n", "Sustain", bar(sustain), sustain)
	fmt.Fprintf(m.w, "%-8s %s %.2fs\n", "Release", bar(release/2), release)
	fmt.Fprintln(m.w, strings.Repeat("-", 50))
}

// Filter renders the low-pass parameters. Cutoff is scaled against the
// top of the controller mapping range.
func (m *Meters) Filter(cutoff, resonance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.due(&m.lastFilter) {
		return
	}

	fmt.Fprintf(m.w, "\n%s\n", color.Bold.Sprint("=== Low Pass Filter Values ==="))
	fmt.Fprintf(m.w, "%-10s %s %.0f Hz\n", "Cutoff", bar(cutoff/12700), cutoff)
	fmt.Fprintf(m.w, "%-10s %s %.2f\n", "Resonance", bar(resonance), resonance)
	fmt.Fprintln(m.w, strings.Repeat("-", 50))
}

// due reports whether a panel refresh is allowed and stamps it if so.
func (m *Meters) due(last *time.Time) bool {
	if m.MinInterval > 0 && time.Since(*last) < m.MinInterval {
		return false
	}
	*last = time.Now()
	return true
}

// bar renders a 20-cell meter for a value in [0,1].
func bar(value float64) string {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	fill := int(value * barWidth)
	return "[" + color.Green.Sprint(strings.Repeat("█", fill)) + strings.Repeat(" ", barWidth-fill) + "]"
}
