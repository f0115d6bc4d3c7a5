package midi

import (
	"bufio"
	"context"
	"errors"
	"io"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/vk/synthgo/internal/ctxlog"
)

// StreamReader decodes raw channel-voice messages from a byte stream
// (a file, FIFO, or anything a MIDI bridge writes to) and hands decoded
// events to a callback. Running status is honored; system and realtime
// bytes are skipped.
type StreamReader struct {
	r *bufio.Reader
}

// NewStreamReader wraps a raw MIDI byte stream.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: bufio.NewReader(r)}
}

// Run reads until EOF or context cancellation, invoking emit for every
// decoded note or controller event. Decoding uses the standard message
// accessors, so malformed frames are dropped rather than misread.
func (s *StreamReader) Run(ctx context.Context, emit func(Event)) error {
	logger := ctxlog.FromContext(ctx)
	var status byte

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		b, err := s.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("MIDI stream reached EOF.")
				return nil
			}
			return err
		}

		switch {
		case b >= 0xF8:
			// Realtime bytes may interleave anywhere; ignore them.
			continue
		case b >= 0xF0:
			// System common cancels running status and carries no events we route.
			status = 0
			continue
		case b >= 0x80:
			status = b
			continue
		}

		// b is a data byte; without a current status it is noise.
		if status == 0 {
			logger.Debug("Dropping stray MIDI data byte.", "byte", b)
			continue
		}

		ev, ok, err := s.decode(status, b)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// A truncated trailing message, as when a FIFO writer
				// closes mid-frame. Drop it and treat as clean EOF.
				logger.Debug("MIDI stream ended mid-message.")
				return nil
			}
			return err
		}
		if ok {
			emit(ev)
		}
	}
}

// readDataByte returns the next data byte, skipping interleaved realtime
// bytes. A status byte in data position aborts the current message; the
// byte is unread so the main loop reprocesses it as the new status.
func (s *StreamReader) readDataByte() (byte, bool, error) {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			return 0, false, err
		}
		if b >= 0xF8 {
			continue
		}
		if b >= 0x80 {
			if err := s.r.UnreadByte(); err != nil {
				return 0, false, err
			}
			return 0, false, nil
		}
		return b, true, nil
	}
}

// decode consumes the remaining data byte(s) for the message that starts
// with the given first data byte under the current running status.
func (s *StreamReader) decode(status, data1 byte) (Event, bool, error) {
	kind := status & 0xF0

	switch kind {
	case 0x80, 0x90, 0xB0:
		data2, ok, err := s.readDataByte()
		if err != nil || !ok {
			return Event{}, false, err
		}
		msg := gomidi.Message([]byte{status, data1, data2})

		var channel, key, velocity, controller, value uint8
		switch {
		case msg.GetNoteOn(&channel, &key, &velocity):
			return NoteOn(key, velocity), true, nil
		case msg.GetNoteOff(&channel, &key, &velocity):
			return NoteOff(key), true, nil
		case msg.GetControlChange(&channel, &controller, &value):
			return ControlChange(controller, value), true, nil
		}
		return Event{}, false, nil
	case 0xC0, 0xD0:
		// Program change and channel pressure carry one data byte,
		// already consumed; nothing to route.
		return Event{}, false, nil
	case 0xA0, 0xE0:
		// Poly pressure and pitch bend carry two data bytes; consume
		// and drop.
		if _, _, err := s.readDataByte(); err != nil {
			return Event{}, false, err
		}
		return Event{}, false, nil
	}
	return Event{}, false, nil
}
