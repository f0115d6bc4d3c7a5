package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/vk/synthgo/internal/audioout"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PatchPath string // hcl patch file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	Output   string // live, wav or null
	OutFile  string // wav capture path
	Duration time.Duration

	MIDIIn             string // raw MIDI byte stream path
	RemoteURL          string // socket.io control surface
	RemoteNamespace    string
	RemoteInsecureSkip bool
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PatchPath == "" {
		return nil, errors.New("PatchPath is a required configuration field and cannot be empty")
	}

	switch cfg.Output {
	case audioout.KindLive, audioout.KindWAV, audioout.KindNull:
	default:
		return nil, fmt.Errorf("invalid output kind %q", cfg.Output)
	}

	if cfg.Output == audioout.KindWAV && cfg.OutFile == "" {
		return nil, errors.New("wav output requires an output file path")
	}

	if cfg.Duration < 0 {
		return nil, errors.New("duration cannot be negative")
	}

	return &cfg, nil
}
