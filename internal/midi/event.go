// Package midi defines the engine's internal event vocabulary, the
// controller routing table, and decoding of raw MIDI byte streams.
package midi

import "fmt"

// Kind discriminates the channel-voice events the engine reacts to.
type Kind int

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindControlChange
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note_on"
	case KindNoteOff:
		return "note_off"
	case KindControlChange:
		return "control_change"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is a decoded channel-voice message. Only the fields relevant to
// the Kind are populated.
type Event struct {
	Kind       Kind
	Note       uint8
	Velocity   uint8
	Controller uint8
	Value      uint8
}

// NoteOn builds a note-on event. Velocity zero is note-off per standard
// MIDI semantics; callers may pass it through, the router normalizes it.
func NoteOn(note, velocity uint8) Event {
	return Event{Kind: KindNoteOn, Note: note, Velocity: velocity}
}

// NoteOff builds a note-off event.
func NoteOff(note uint8) Event {
	return Event{Kind: KindNoteOff, Note: note}
}

// ControlChange builds a control-change event.
func ControlChange(controller, value uint8) Event {
	return Event{Kind: KindControlChange, Controller: controller, Value: value}
}
