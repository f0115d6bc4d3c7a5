package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/synthgo/internal/audioout"
	"github.com/vk/synthgo/internal/ctxlog"
	"github.com/vk/synthgo/internal/midi"
	"github.com/vk/synthgo/internal/remote"
)

// Run executes the render loop until the context is canceled, the
// configured duration elapses, or an event source fails.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		go a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	sink, err := audioout.Open(ctx, audioout.Config{
		Kind:       a.config.Output,
		Path:       a.config.OutFile,
		SampleRate: a.patch.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			a.logger.Error("Failed to close audio output.", "error", cerr)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sourceErrs := a.startSources(runCtx)

	a.logger.Info("🎹 Render loop starting.",
		"sample_rate", a.patch.SampleRate,
		"block_size", a.patch.BlockSize,
		"output", a.config.Output,
		"chain", a.chain.Names())

	var frameLimit uint64
	if a.config.Duration > 0 {
		frameLimit = uint64(a.config.Duration.Seconds() * float64(a.patch.SampleRate))
	}

	block := make([]float64, a.patch.BlockSize)
	for {
		select {
		case <-runCtx.Done():
			a.logger.Info("🏁 Render stopped.", "frames", a.engine.Frames())
			return nil
		case err := <-sourceErrs:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("event source failed: %w", err)
			}
		default:
		}

		a.engine.RenderBlock(runCtx, block)
		if err := sink.WriteBlock(block); err != nil {
			return fmt.Errorf("audio output failed: %w", err)
		}

		if frameLimit > 0 && a.engine.Frames() >= frameLimit {
			a.logger.Info("🏁 Render finished.", "frames", a.engine.Frames())
			return nil
		}
	}
}

// startSources launches the configured event sources. Each source posts
// its terminal error (or nil on clean EOF) to the returned channel.
func (a *App) startSources(ctx context.Context) <-chan error {
	errs := make(chan error, 2)
	emit := func(ev midi.Event) {
		a.engine.Submit(ctx, ev)
	}

	if path := a.config.MIDIIn; path != "" {
		f, err := os.Open(path)
		if err != nil {
			errs <- fmt.Errorf("failed to open MIDI input: %w", err)
			return errs
		}
		a.logger.Info("🎛️  Reading MIDI events.", "path", path)
		reader := midi.NewStreamReader(f)
		go func() {
			defer f.Close()
			errs <- reader.Run(ctx, emit)
		}()
	}

	if url := a.config.RemoteURL; url != "" {
		source := remote.New(remote.Config{
			URL:                url,
			Namespace:          a.config.RemoteNamespace,
			InsecureSkipVerify: a.config.RemoteInsecureSkip,
		})
		go func() {
			errs <- source.Run(ctx, emit)
		}()
	}

	return errs
}
