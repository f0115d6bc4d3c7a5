// Package fx implements the effect modules of the audio chain: reverb,
// distortion, delay, flanger and chorus. Effects are constructed through
// a named registry so patches and controller maps refer to them by type.
package fx

import (
	"fmt"
	"sort"

	"github.com/vk/synthgo/internal/dsp/chain"
)

// Effect is a chain module with a single master control reachable from a
// MIDI controller (CC 102..106).
type Effect interface {
	chain.Module
	SetControl(value uint8)
}

// Factory builds an effect instance for the given sample rate. Params
// come from the patch file; unknown keys are an error.
type Factory func(sampleRate float64, params map[string]float64) (Effect, error)

var registry = map[string]Factory{}

// Register adds an effect factory under a unique name. Duplicate
// registration is a programmer error.
func Register(name string, f Factory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("effect %q already registered", name))
	}
	registry[name] = f
}

// Exists reports whether an effect type is registered.
func Exists(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns the registered effect types, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs an effect by type name.
func New(name string, sampleRate float64, params map[string]float64) (Effect, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown effect type %q", name)
	}
	return f(sampleRate, params)
}

// ControlMapping returns the controller-number-to-effect mapping for the
// effect master controls.
func ControlMapping() map[uint8]string {
	return map[uint8]string{
		102: "reverb",
		103: "distortion",
		104: "delay",
		105: "flanger",
		106: "chorus",
	}
}

// checkParams rejects parameter keys the effect does not define.
func checkParams(effect string, params map[string]float64, allowed ...string) error {
	for key := range params {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("effect %q: unknown parameter %q", effect, key)
		}
	}
	return nil
}

func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}
