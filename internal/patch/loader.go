package patch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/synthgo/internal/ctxlog"
	"github.com/vk/synthgo/internal/fsutil"
)

// Load resolves a patch path (a single .hcl file or a directory tree of
// them), merges every file onto the defaults, and validates the result.
// A path that resolves to zero files yields the default patch.
func Load(ctx context.Context, path string) (*Patch, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading patch.", "path", path)

	files, err := ResolvePatchPath(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve patch path '%s': %w", path, err)
	}

	p := Default()
	if len(files) == 0 {
		logger.Warn("No .hcl patch files found, using engine defaults.", "path", path)
		p.Oscillators = defaultOscillators()
		return p, nil
	}

	logger.Info("Found patch files to process.", "count", len(files), "path", path)
	for _, file := range files {
		cfg, err := decodeFile(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("failed to load patch file '%s': %w", file, err)
		}
		if err := merge(p, cfg); err != nil {
			return nil, fmt.Errorf("failed to merge patch file '%s': %w", file, err)
		}
	}

	if len(p.Oscillators) == 0 {
		logger.Debug("Patch declares no oscillators, defaulting to a single sine.")
		p.Oscillators = defaultOscillators()
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Patch loaded and merged.",
		"oscillators", len(p.Oscillators), "effects", len(p.Effects),
		"sample_rate", p.SampleRate, "block_size", p.BlockSize)
	return p, nil
}

// ResolvePatchPath takes a path and returns a slice of all .hcl files found.
// A file path must itself end in .hcl; a directory is walked recursively.
func ResolvePatchPath(ctx context.Context, path string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving patch path.", "path", path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("patch path not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if info.IsDir() {
		logger.Debug("Path is a directory, scanning for HCL files.", "directory", path)
		return fsutil.FindFilesByExtension(path, ".hcl")
	}

	if filepath.Ext(path) != ".hcl" {
		return nil, fmt.Errorf("specified file is not an .hcl file: %s", path)
	}
	return []string{path}, nil
}

// merge layers one decoded file onto the patch: scalar fields override
// when present, oscillator and effect blocks append in file order.
func merge(p *Patch, cfg *fileConfig) error {
	if s := cfg.Synth; s != nil {
		if s.SampleRate != nil {
			p.SampleRate = *s.SampleRate
		}
		if s.BlockSize != nil {
			p.BlockSize = *s.BlockSize
		}
		if s.Gain != nil {
			p.Gain = *s.Gain
		}
		if s.MaxVoices != nil {
			p.MaxVoices = *s.MaxVoices
		}
	}

	for _, o := range cfg.Oscillators {
		oscillator := Oscillator{Shape: o.Shape, Level: 1.0}
		if o.Level != nil {
			oscillator.Level = *o.Level
		}
		if o.Detune != nil {
			oscillator.Detune = *o.Detune
		}
		p.Oscillators = append(p.Oscillators, oscillator)
	}

	if e := cfg.Envelope; e != nil {
		if e.Attack != nil {
			p.Envelope.Attack = *e.Attack
		}
		if e.Decay != nil {
			p.Envelope.Decay = *e.Decay
		}
		if e.Sustain != nil {
			p.Envelope.Sustain = *e.Sustain
		}
		if e.Release != nil {
			p.Envelope.Release = *e.Release
		}
	}

	if f := cfg.Filter; f != nil {
		if f.Cutoff != nil {
			p.Filter.Cutoff = *f.Cutoff
		}
		if f.Resonance != nil {
			p.Filter.Resonance = *f.Resonance
		}
	}

	for _, ef := range cfg.Effects {
		params, err := decodeParams(ef.Params)
		if err != nil {
			return fmt.Errorf("effect %q: %w", ef.Type, err)
		}
		p.Effects = append(p.Effects, Effect{Type: ef.Type, Params: params})
	}

	return nil
}

func defaultOscillators() []Oscillator {
	return []Oscillator{{Shape: "sine", Level: 1.0}}
}
