package audioout

// NullSink discards audio and counts frames. It paces nothing, so
// headless renders run as fast as the engine can produce blocks.
type NullSink struct {
	frames int64
}

// WriteBlock implements Sink.
func (s *NullSink) WriteBlock(block []float64) error {
	s.frames += int64(len(block))
	return nil
}

// Frames reports the total frames discarded.
func (s *NullSink) Frames() int64 { return s.frames }

// Close implements Sink.
func (s *NullSink) Close() error { return nil }
