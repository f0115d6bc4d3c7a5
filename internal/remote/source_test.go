package remote

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/synthgo/internal/ctxlog"
	"github.com/vk/synthgo/internal/midi"
)

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func TestEventFromPayload(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		event string
		data  []any
		want  midi.Event
	}{
		{
			name:  "note on",
			event: "note_on",
			data:  []any{map[string]any{"note": float64(60), "velocity": float64(100)}},
			want:  midi.NoteOn(60, 100),
		},
		{
			name:  "note off",
			event: "note_off",
			data:  []any{map[string]any{"note": float64(64)}},
			want:  midi.NoteOff(64),
		},
		{
			name:  "control change",
			event: "control_change",
			data:  []any{map[string]any{"controller": float64(22), "value": float64(127)}},
			want:  midi.ControlChange(22, 127),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := eventFromPayload(tc.event, tc.data)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEventFromPayloadErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		event   string
		data    []any
		wantErr string
	}{
		{
			name:    "missing payload",
			event:   "note_on",
			data:    nil,
			wantErr: "missing payload",
		},
		{
			name:    "payload is not an object",
			event:   "note_on",
			data:    []any{"c4"},
			wantErr: "want an object",
		},
		{
			name:    "missing field",
			event:   "note_on",
			data:    []any{map[string]any{"note": float64(60)}},
			wantErr: `missing field "velocity"`,
		},
		{
			name:    "non-numeric field",
			event:   "note_off",
			data:    []any{map[string]any{"note": "sixty"}},
			wantErr: "want number",
		},
		{
			name:    "out of MIDI range",
			event:   "control_change",
			data:    []any{map[string]any{"controller": float64(22), "value": float64(300)}},
			wantErr: "out of MIDI range",
		},
		{
			name:    "unknown event",
			event:   "pitch_bend",
			data:    []any{map[string]any{}},
			wantErr: "unknown event",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := eventFromPayload(tc.event, tc.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRunRejectsUnparsableURL(t *testing.T) {
	t.Parallel()

	src := New(Config{URL: "http://bad url with spaces", Namespace: "/"})
	err := src.Run(testContext(), func(midi.Event) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse URL")
}
