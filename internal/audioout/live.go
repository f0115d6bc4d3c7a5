package audioout

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ebitengine/oto/v3"

	"github.com/vk/synthgo/internal/ctxlog"
)

// LiveSink plays the render through the system audio device. Samples go
// through an io.Pipe into the player, so WriteBlock blocks when the
// device buffer is full; that backpressure paces the render loop to
// realtime.
type LiveSink struct {
	player *oto.Player
	pw     *io.PipeWriter
}

func openLive(ctx context.Context, sampleRate int) (*LiveSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	pr, pw := io.Pipe()
	player := otoCtx.NewPlayer(pr)
	player.Play()

	ctxlog.FromContext(ctx).Info("🔊 Audio device opened.", "sample_rate", sampleRate)
	return &LiveSink{player: player, pw: pw}, nil
}

// WriteBlock implements Sink, encoding the block as float32 LE PCM.
func (s *LiveSink) WriteBlock(block []float64) error {
	buf := make([]byte, 4*len(block))
	for i, v := range block {
		v = math.Max(-1, math.Min(1, v))
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(v)))
	}
	_, err := s.pw.Write(buf)
	return err
}

// Close stops playback and releases the device.
func (s *LiveSink) Close() error {
	s.pw.Close()
	return s.player.Close()
}
