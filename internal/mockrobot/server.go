// Package mockrobot runs an in-process GROS robot endpoint: the control
// routes and the /ws streaming channel, with recorded inbound commands.
// Package tests run against it instead of a physical robot, and
// cmd/mockrobot serves it standalone for local development.
package mockrobot

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/fftai/gros-client-go/pkg/motor"
	"github.com/fftai/gros-client-go/pkg/transport"
)

// Server is a mock robot endpoint.
type Server struct {
	app        *fiber.App
	ln         net.Listener
	limits     []motor.JointLimit
	limitDelay time.Duration

	mu       sync.Mutex
	received []transport.Envelope
	sessions map[string]*websocket.Conn
}

// Option configures the server.
type Option func(*Server)

// WithLimits sets the joint limit table served on the control plane.
func WithLimits(limits []motor.JointLimit) Option {
	return func(s *Server) { s.limits = limits }
}

// WithLimitDelay delays the limit-list response, simulating a slow robot
// so readiness-gate behavior can be exercised.
func WithLimitDelay(d time.Duration) Option {
	return func(s *Server) { s.limitDelay = d }
}

// New creates a mock robot server. Call Start to begin listening.
func New(opts ...Option) *Server {
	s := &Server{
		sessions: make(map[string]*websocket.Conn),
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	s.app = app

	app.Get(motor.LimitPath, func(c *fiber.Ctx) error {
		if s.limitDelay > 0 {
			time.Sleep(s.limitDelay)
		}
		return s.ok(c, s.limits)
	})
	app.Get("/robot/motor/pvc", func(c *fiber.Ctx) error {
		return s.ok(c, fiber.Map{
			"no":          c.Query("no"),
			"orientation": c.Query("orientation"),
			"position":    0.0,
			"velocity":    0.0,
			"current":     0.0,
		})
	})
	for _, path := range []string{
		"/robot/start", "/robot/stop", "/robot/stand", "/robot/mode",
		"/robot/upper_body", "/robot/hand/enable", "/robot/hand/disable",
	} {
		app.Post(path, func(c *fiber.Ctx) error {
			return s.ok(c, nil)
		})
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleStream))

	return s
}

func (s *Server) ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"code": 0, "msg": "ok", "data": data})
}

// handleStream records every inbound envelope until the peer disconnects.
func (s *Server) handleStream(conn *websocket.Conn) {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = conn
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var env transport.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		s.mu.Lock()
		s.received = append(s.received, env)
		s.mu.Unlock()
	}
}

// Start begins listening on a random loopback port.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	s.ln = ln
	go func() {
		_ = s.app.Listener(ln)
	}()
	return nil
}

// StartAt begins listening on a fixed address, for standalone use.
func (s *Server) StartAt(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	return s.app.Listener(ln)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Host returns the bound host.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the bound port.
func (s *Server) Port() int {
	_, portStr, _ := net.SplitHostPort(s.ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return port
}

// Received returns a snapshot of the streamed envelopes seen so far.
func (s *Server) Received() []transport.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transport.Envelope, len(s.received))
	copy(out, s.received)
	return out
}

// Push broadcasts a payload to every connected streaming session, the way
// the robot pushes state updates.
func (s *Server) Push(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.sessions {
		_ = conn.WriteJSON(v)
	}
}

// SessionCount returns the number of connected streaming sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
