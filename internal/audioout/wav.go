package audioout

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/vk/synthgo/internal/ctxlog"
)

// wavBitDepth is the capture bit depth.
const wavBitDepth = 16

// WAVSink captures the render to a 16-bit mono WAV file.
type WAVSink struct {
	file    *os.File
	encoder *wav.Encoder
	format  *audio.Format
}

func openWAV(ctx context.Context, path string, sampleRate int) (*WAVSink, error) {
	if path == "" {
		return nil, fmt.Errorf("wav output requires a file path")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create wav file: %w", err)
	}

	ctxlog.FromContext(ctx).Info("Capturing render to WAV file.", "path", path, "sample_rate", sampleRate)
	return &WAVSink{
		file:    f,
		encoder: wav.NewEncoder(f, sampleRate, wavBitDepth, 1, 1),
		format:  &audio.Format{NumChannels: 1, SampleRate: sampleRate},
	}, nil
}

// WriteBlock implements Sink, clamping samples into the 16-bit range.
func (s *WAVSink) WriteBlock(block []float64) error {
	data := make([]int, len(block))
	for i, v := range block {
		v = math.Max(-1, math.Min(1, v))
		data[i] = int(v * math.MaxInt16)
	}
	return s.encoder.Write(&audio.IntBuffer{
		Format:         s.format,
		Data:           data,
		SourceBitDepth: wavBitDepth,
	})
}

// Close finalizes the WAV header and closes the file.
func (s *WAVSink) Close() error {
	if err := s.encoder.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
