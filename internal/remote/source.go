// Package remote subscribes to a socket.io control surface and feeds
// its note and controller events into the engine. It is the network
// stand-in for a hardware MIDI controller.
package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/synthgo/internal/ctxlog"
	"github.com/vk/synthgo/internal/midi"
)

// Config selects the control surface endpoint.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// Source is a socket.io client subscribed to note_on, note_off and
// control_change events.
type Source struct {
	cfg Config
}

// New returns an unconnected source.
func New(cfg Config) *Source {
	return &Source{cfg: cfg}
}

// Run connects and forwards events until the context is canceled or the
// connection fails. emit is called from the socket callback goroutine;
// the engine queue behind it is safe for that.
func (s *Source) Run(ctx context.Context, emit func(midi.Event)) error {
	logger := ctxlog.FromContext(ctx).With("source", "remote", "url", s.cfg.URL, "namespace", s.cfg.Namespace)
	logger.Debug("Control surface source started")
	defer logger.Debug("Control surface source finished")

	parsedURL, err := url.Parse(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if s.cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(s.cfg.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	connErr := make(chan error, 1)

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("🎛️  Control surface connected", "sid", io.Id())
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				connErr <- err
				return
			}
			connErr <- fmt.Errorf("connect_error: %v", errs[0])
			return
		}
		connErr <- fmt.Errorf("connect_error")
	})

	for _, name := range []string{"note_on", "note_off", "control_change"} {
		eventName := name
		io.On(types.EventName(eventName), func(data ...any) {
			ev, err := eventFromPayload(eventName, data)
			if err != nil {
				logger.Warn("Dropping malformed control surface event.", "event", eventName, "error", err)
				return
			}
			emit(ev)
		})
	}

	io.Connect()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-connErr:
		return fmt.Errorf("control surface connection failed: %w", err)
	}
}

// eventFromPayload decodes a socket.io event payload into an engine
// event. Payloads are JSON objects, so numbers arrive as float64.
func eventFromPayload(name string, data []any) (midi.Event, error) {
	if len(data) == 0 {
		return midi.Event{}, fmt.Errorf("missing payload")
	}
	payload, ok := data[0].(map[string]any)
	if !ok {
		return midi.Event{}, fmt.Errorf("payload is %T, want an object", data[0])
	}

	switch name {
	case "note_on":
		note, err := payloadByte(payload, "note")
		if err != nil {
			return midi.Event{}, err
		}
		velocity, err := payloadByte(payload, "velocity")
		if err != nil {
			return midi.Event{}, err
		}
		return midi.NoteOn(note, velocity), nil
	case "note_off":
		note, err := payloadByte(payload, "note")
		if err != nil {
			return midi.Event{}, err
		}
		return midi.NoteOff(note), nil
	case "control_change":
		controller, err := payloadByte(payload, "controller")
		if err != nil {
			return midi.Event{}, err
		}
		value, err := payloadByte(payload, "value")
		if err != nil {
			return midi.Event{}, err
		}
		return midi.ControlChange(controller, value), nil
	}
	return midi.Event{}, fmt.Errorf("unknown event %q", name)
}

func payloadByte(payload map[string]any, key string) (uint8, error) {
	raw, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q is %T, want number", key, raw)
	}
	if f < 0 || f > 127 {
		return 0, fmt.Errorf("field %q out of MIDI range: %g", key, f)
	}
	return uint8(f), nil
}
