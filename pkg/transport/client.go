// Package transport implements the dual-channel connection to a single
// GROS robot endpoint: a request/response control plane over HTTP and a
// persistent WebSocket streaming channel for time-sensitive motion
// commands.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fftai/gros-client-go/internal/httpc"
)

// CallSpec describes a single control-plane request.
type CallSpec struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Client owns one control-plane HTTP client and one streaming channel to a
// robot endpoint. All robot facades are built on its two primitives:
// Call for request/response operations and Send for fire-and-forget
// streaming commands.
type Client struct {
	cfg  *Config
	id   string
	log  *slog.Logger
	http *http.Client
	clk  clock.Clock
	bus  *bus

	mu        sync.Mutex
	ws        *websocket.Conn
	state     State
	retries   int
	exhausted bool
	closed    bool
}

// NewClient creates a client for the configured endpoint. The streaming
// channel is not dialed until Connect is called.
func NewClient(opts ...Option) *Client {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	id := uuid.NewString()[:8]
	return &Client{
		cfg:   cfg,
		id:    id,
		log:   cfg.Logger.With("component", "transport", "conn", id),
		http:  httpc.NewClient(cfg.CallTimeout),
		clk:   cfg.Clock,
		bus:   newBus(),
		state: StateConnecting,
	}
}

// ID returns the connection instance identifier used in logs.
func (c *Client) ID() string {
	return c.id
}

// Clock returns the clock driving this client's timers, so collaborators
// like the joint dispatcher share the same (possibly mocked) time source.
func (c *Client) Clock() clock.Clock {
	return c.clk
}

// State returns the current streaming channel state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel of lifecycle and inbound-message events.
// Lifecycle events are delivered at most once per state transition.
func (c *Client) Subscribe() <-chan Event {
	return c.bus.subscribe()
}

// Unsubscribe removes a channel returned by Subscribe and closes it.
func (c *Client) Unsubscribe(ch <-chan Event) {
	c.bus.unsubscribe(ch)
}

// Connect dials the streaming channel. On success the channel moves to
// StateOpen and an open event is published; on failure it moves to
// StateErrored.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, c.cfg.WSURL(), nil)
	if err != nil {
		c.mu.Lock()
		c.transitionLocked(StateErrored, err)
		c.mu.Unlock()
		return fmt.Errorf("transport: dial %s: %w", c.cfg.WSURL(), err)
	}

	c.mu.Lock()
	c.ws = ws
	c.retries = 0
	c.exhausted = false
	c.transitionLocked(StateOpen, nil)
	c.mu.Unlock()

	c.log.Info("streaming channel open", "url", c.cfg.WSURL())
	go c.readPump(ws)
	return nil
}

// Close shuts down the streaming channel. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var err error
	if c.ws != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = c.ws.Close()
	}
	c.transitionLocked(StateClosed, nil)
	return err
}

// Call issues a control-plane request/response call. It fails on timeout,
// connection refusal, a non-success HTTP status, or a response envelope
// carrying a non-zero code; it never retries.
func (c *Client) Call(ctx context.Context, spec CallSpec) (*Response, error) {
	u := c.cfg.BaseURL() + spec.Path
	if len(spec.Query) > 0 {
		u += "?" + spec.Query.Encode()
	}

	var body io.Reader
	if spec.Body != nil {
		data, err := json.Marshal(spec.Body)
		if err != nil {
			return nil, fmt.Errorf("transport: marshal %s body: %w", spec.Path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("transport: build %s %s: %w", spec.Method, spec.Path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transport: %s %s: %w", spec.Method, spec.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &CallError{
			StatusCode: resp.StatusCode,
			Method:     spec.Method,
			Path:       spec.Path,
			Body:       string(bytes.TrimSpace(raw)),
		}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("transport: decode %s response: %w", spec.Path, err)
	}
	if out.Code != 0 {
		return nil, &CallError{
			StatusCode: resp.StatusCode,
			Code:       out.Code,
			Message:    out.Msg,
			Method:     spec.Method,
			Path:       spec.Path,
		}
	}
	return &out, nil
}

// Send transmits the envelope over the streaming channel, best effort.
// If the channel is open the envelope is written immediately and the retry
// counter resets. If it is not open, a retry fires after the configured
// delay; once the consecutive-failure budget is spent the send is
// abandoned, an error event is published, and further sends fail fast with
// ErrSendExhausted until the channel reopens. Delivery is never
// guaranteed, and sends blocked across a channel-down period do not keep
// their relative order.
func (c *Client) Send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendLocked(env)
}

func (c *Client) sendLocked(env Envelope) error {
	if c.closed {
		return ErrClosed
	}

	if c.state == StateOpen && c.ws != nil {
		if err := c.ws.WriteJSON(env); err != nil {
			c.transitionLocked(StateErrored, err)
			return fmt.Errorf("transport: send %s: %w", env.Command, err)
		}
		c.retries = 0
		c.exhausted = false
		return nil
	}

	if c.exhausted {
		return ErrSendExhausted
	}

	c.retries++
	if c.retries > c.cfg.MaxRetries {
		c.exhausted = true
		c.log.Error("streaming send abandoned, channel stayed down",
			"command", env.Command, "attempts", c.retries-1)
		c.bus.publish(Event{Kind: EventError, Err: ErrSendExhausted})
		return ErrSendExhausted
	}

	c.log.Debug("streaming channel not open, retrying send",
		"command", env.Command, "attempt", c.retries, "state", c.state.String())
	c.clk.AfterFunc(c.cfg.RetryDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// Errors in the deferred attempt surface through the event bus.
		_ = c.sendLocked(env)
	})
	return nil
}

// readPump drains inbound messages until the connection drops, publishing
// each one as a message event and the final transition as close or error.
func (c *Client) readPump(ws *websocket.Conn) {
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.closed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.transitionLocked(StateClosed, nil)
			} else {
				c.transitionLocked(StateErrored, err)
			}
			c.mu.Unlock()
			return
		}
		c.bus.publish(Event{Kind: EventMessage, Data: msg})
	}
}

// transitionLocked moves the channel state and publishes the matching
// lifecycle event, at most once per transition. Caller holds mu.
func (c *Client) transitionLocked(to State, cause error) {
	if c.state == to {
		return
	}
	c.state = to
	switch to {
	case StateOpen:
		c.bus.publish(Event{Kind: EventOpen})
	case StateClosed:
		c.bus.publish(Event{Kind: EventClose})
	case StateErrored:
		c.log.Warn("streaming channel errored", "err", cause)
		c.bus.publish(Event{Kind: EventError, Err: cause})
	}
}

// IsTimeout reports whether a Call failure was a timeout rather than a
// refused or failed connection.
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
