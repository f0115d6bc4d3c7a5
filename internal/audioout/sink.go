// Package audioout provides the audio sinks the render loop writes to:
// live playback, WAV capture, and a null sink for headless runs.
package audioout

import (
	"context"
	"fmt"
)

// Sink consumes rendered blocks of mono float64 samples in [-1,1].
// WriteBlock may block to pace the producer (the live sink does).
type Sink interface {
	WriteBlock(block []float64) error
	Close() error
}

// Sink kinds accepted by Open and the --output flag.
const (
	KindLive = "live"
	KindWAV  = "wav"
	KindNull = "null"
)

// Config selects and parameterizes a sink.
type Config struct {
	Kind       string
	Path       string // wav output path
	SampleRate int
}

// Open constructs the configured sink.
func Open(ctx context.Context, cfg Config) (Sink, error) {
	switch cfg.Kind {
	case KindLive:
		return openLive(ctx, cfg.SampleRate)
	case KindWAV:
		return openWAV(ctx, cfg.Path, cfg.SampleRate)
	case KindNull:
		return &NullSink{}, nil
	}
	return nil, fmt.Errorf("unknown output kind %q (want %s, %s or %s)", cfg.Kind, KindLive, KindWAV, KindNull)
}
