package wasmnet

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/tarndt/wasmnet/internal/broadcast"
)

//Conn is a WebSocket connection. It owns the platform socket and the event fan-out; read events with
// Events and write with Send. Conn is safe for concurrent use.
type Conn struct {
	id        string
	url       string
	log       *slog.Logger
	events    *broadcast.Channel[Event]
	transport Transport

	mu          sync.Mutex
	state       State
	opened      bool
	subprotocol string
	closeStatus Closed
	openCh      chan struct{}
	done        chan struct{}
}

//New starts connecting to address and returns immediately in the Connecting state. Progress is reported
// through the events of the connection; see Events.
func New(address string, opts *Options) (*Conn, error) {
	o := opts.withDefaults()
	wsURL, err := normalizeURL(address)
	if err != nil {
		return nil, err
	}

	c := &Conn{
		id:     uuid.NewString(),
		url:    wsURL,
		events: broadcast.New[Event](o.StreamCapacity),
		state:  StateConnecting,
		openCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	c.log = o.Logger.With("conn_id", c.id, "url", wsURL)

	transport, err := o.Dialer(wsURL, o.Protocols, (*translator)(c))
	if err != nil {
		return nil, fmt.Errorf("WebSocket: Could not create socket for %q; Details: %w", wsURL, transportError(err))
	}
	c.transport = transport
	c.log.Debug("WebSocket: Connecting", "protocols", o.Protocols)
	return c, nil
}

//Dial is New followed by waiting for the connection to open. If ctx ends first the connection is closed
// and ctx.Err() returned; if the connection closes first ErrWebsocketClosed is returned.
func Dial(ctx context.Context, address string, opts *Options) (*Conn, error) {
	c, err := New(address, opts)
	if err != nil {
		return nil, err
	}

	select {
	case <-c.openCh:
		return c, nil

	case <-c.done:
		status, _ := c.CloseStatus()
		return nil, fmt.Errorf("%w; Details: %s before opening", ErrWebsocketClosed, status)

	case <-ctx.Done():
		c.Close(StatusNormalClosure, "")
		return nil, ctx.Err()
	}
}

//Send writes one message of the given kind. It fails with ErrNotConnected unless the connection is open.
func (c *Conn) Send(kind MessageKind, payload []byte) error {
	if kind != MessageText && kind != MessageBinary {
		return fmt.Errorf("WebSocket: Invalid message kind %d", uint8(kind))
	}

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state != StateOpen {
		return fmt.Errorf("%w; Details: connection is %s", ErrNotConnected, state)
	}

	if err := c.transport.Send(kind, payload); err != nil {
		return fmt.Errorf("WebSocket: Send failed; Details: %w", transportError(err))
	}
	return nil
}

//SendText sends a text message
func (c *Conn) SendText(text string) error {
	return c.Send(MessageText, []byte(text))
}

//SendBinary sends a binary message
func (c *Conn) SendBinary(payload []byte) error {
	return c.Send(MessageBinary, payload)
}

//Close starts the closing handshake and returns without waiting for it; completion is the Closed event.
// Calling Close on a connection that is already closing or closed does nothing.
func (c *Conn) Close(code StatusCode, reason string) error {
	if err := validClose(code, reason); err != nil {
		return err
	}

	c.mu.Lock()
	if c.state == StateClosing || c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	from := c.state
	c.state = StateClosing
	c.mu.Unlock()

	c.log.Debug("WebSocket: Closing", "from", from, "code", code, "reason", reason)
	if err := c.transport.Close(code, reason); err != nil {
		return fmt.Errorf("WebSocket: Close failed; Details: %w", transportError(err))
	}
	return nil
}

//Events returns a new Stream that observes every event from now on. It may be called at any time and
// any number of times; a Stream obtained after the connection closed yields only the Closed event.
func (c *Conn) Events() *Stream {
	return newStream(c.events.Subscribe())
}

//State is the current lifecycle state
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

//ID uniquely identifies the connection in logs
func (c *Conn) ID() string { return c.id }

//URL is the normalized address the connection was created with
func (c *Conn) URL() string { return c.url }

//Subprotocol is the protocol the server selected, empty until open
func (c *Conn) Subprotocol() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subprotocol
}

//Done is closed once the Closed event has been produced
func (c *Conn) Done() <-chan struct{} { return c.done }

//CloseStatus returns the Closed event, if the connection has closed
func (c *Conn) CloseStatus() (Closed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeStatus, c.state == StateClosed
}

//normalizeURL validates address the way the WebSocket constructor does, rewriting http(s) to ws(s)
func normalizeURL(address string) (string, error) {
	u, err := url.Parse(address)
	if err != nil {
		return "", fmt.Errorf("%w: %q; Details: %w", ErrInvalidURL, address, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("%w: %q; Details: scheme must be ws or wss", ErrInvalidURL, address)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q; Details: missing host", ErrInvalidURL, address)
	}
	if u.Fragment != "" {
		return "", fmt.Errorf("%w: %q; Details: fragments are not allowed", ErrInvalidURL, address)
	}
	return u.String(), nil
}
