package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/synthgo/internal/ctxlog"
	"github.com/vk/synthgo/internal/display"
	"github.com/vk/synthgo/internal/dsp/chain"
	"github.com/vk/synthgo/internal/dsp/envelope"
	"github.com/vk/synthgo/internal/dsp/filter"
	"github.com/vk/synthgo/internal/dsp/fx"
	"github.com/vk/synthgo/internal/dsp/osc"
	"github.com/vk/synthgo/internal/midi"
	"github.com/vk/synthgo/internal/patch"
	"github.com/vk/synthgo/internal/synth"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	patch  *patch.Patch

	engine  *synth.Engine
	bank    *osc.Bank
	adsr    *envelope.ADSR
	lowpass *filter.LowPass
	chain   *chain.Handler
	meters  *display.Meters
	router  *midi.Router
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger, the patch loaded
// and the engine assembled. Patch errors are fatal startup errors and panic;
// the entrypoint recovers them into a clean exit message.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	p, err := patch.Load(ctx, cfg.PatchPath)
	if err != nil {
		panic(fmt.Errorf("failed to load patch: %w", err))
	}
	logger.Debug("Patch loaded and validated.")

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		patch:  p,
	}
	a.assemble()
	logger.Debug("Engine assembled from patch.")

	return a
}

// assemble builds the engine components from the resolved patch.
func (a *App) assemble() {
	p := a.patch
	sampleRate := float64(p.SampleRate)

	a.bank = osc.NewBank()
	// The patch declares the whole mix; clear the power-on sine first.
	for _, s := range osc.Shapes() {
		a.bank.SetLevel(s, 0)
	}
	for _, o := range p.Oscillators {
		shape, err := osc.ShapeFromName(o.Shape)
		if err != nil {
			// Validate already rejected unknown shapes.
			panic(err)
		}
		a.bank.SetLevel(shape, o.Level)
		a.bank.SetDetune(shape, o.Detune)
	}

	a.adsr = &envelope.ADSR{
		Attack:  p.Envelope.Attack,
		Decay:   p.Envelope.Decay,
		Sustain: p.Envelope.Sustain,
		Release: p.Envelope.Release,
	}

	a.lowpass = filter.New(sampleRate)
	a.lowpass.SetCutoff(p.Filter.Cutoff)
	a.lowpass.SetResonance(p.Filter.Resonance)

	a.chain = chain.NewHandler()
	a.chain.Add(a.lowpass)
	for _, ef := range p.Effects {
		effect, err := fx.New(ef.Type, sampleRate, ef.Params)
		if err != nil {
			panic(fmt.Errorf("failed to build effect chain: %w", err))
		}
		a.chain.Add(effect)
	}
	a.logger.Debug("Audio chain built.", "modules", a.chain.Names())

	a.engine = synth.New(synth.Config{
		SampleRate: sampleRate,
		Gain:       p.Gain,
		MaxVoices:  p.MaxVoices,
		Bank:       a.bank,
		ADSR:       a.adsr,
		Chain:      a.chain,
	})

	a.meters = display.New(a.outW)
	a.router = midi.NewRouter(a.engine.Voices(), a.bank, a.adsr, a.lowpass, a.chain, a.meters)
	a.engine.SetHandler(a.router)
}

// Engine returns the synth engine. This is primarily for testing.
func (a *App) Engine() *synth.Engine {
	return a.engine
}

// Chain returns the audio chain. This is primarily for testing.
func (a *App) Chain() *chain.Handler {
	return a.chain
}

// Patch returns the resolved patch. This is primarily for testing.
func (a *App) Patch() *patch.Patch {
	return a.patch
}
