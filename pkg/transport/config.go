package transport

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/fftai/gros-client-go/internal/log"
)

// Default connection parameters. These match the robot firmware's
// expectations and should rarely need overriding.
const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 8001
	DefaultCallTimeout = 5000 * time.Millisecond
	DefaultRetryDelay  = 1000 * time.Millisecond
	DefaultMaxRetries  = 5

	defaultHandshakeTimeout = 10 * time.Second
)

// Config holds connection configuration for a single robot endpoint.
type Config struct {
	// Endpoint
	SSL  bool   // use https/wss
	Host string // robot address
	Port int    // control and streaming port

	// Control plane
	CallTimeout time.Duration // per request/response call

	// Streaming channel
	RetryDelay       time.Duration // delay between blocked-send retries
	MaxRetries       int           // consecutive failed attempts before abandoning
	HandshakeTimeout time.Duration

	// Observability
	Logger *slog.Logger

	// Clock drives retry timers. Swapped for a mock in tests.
	Clock clock.Clock
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:             DefaultHost,
		Port:             DefaultPort,
		CallTimeout:      DefaultCallTimeout,
		RetryDelay:       DefaultRetryDelay,
		MaxRetries:       DefaultMaxRetries,
		HandshakeTimeout: defaultHandshakeTimeout,
		Logger:           log.L(),
		Clock:            clock.New(),
	}
}

// Apply applies the given options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// BaseURL returns the control-plane base URL (scheme://host:port).
func (c *Config) BaseURL() string {
	scheme := "http"
	if c.SSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// WSURL returns the streaming channel URL (scheme://host:port/ws).
func (c *Config) WSURL() string {
	scheme := "ws"
	if c.SSL {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/ws", scheme, c.Host, c.Port)
}

// Option is a functional option for configuring a Client.
type Option func(*Config)

// WithSSL enables TLS on both the control plane and the streaming channel.
func WithSSL(ssl bool) Option {
	return func(c *Config) { c.SSL = ssl }
}

// WithHost sets the robot address.
func WithHost(host string) Option {
	return func(c *Config) { c.Host = host }
}

// WithPort sets the robot port.
func WithPort(port int) Option {
	return func(c *Config) { c.Port = port }
}

// WithCallTimeout sets the control-plane request timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Config) { c.CallTimeout = d }
}

// WithRetryDelay sets the delay between blocked streaming-send retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Config) { c.RetryDelay = d }
}

// WithMaxRetries sets how many consecutive failed streaming attempts are
// tolerated before the send is abandoned.
func WithMaxRetries(n int) Option {
	return func(c *Config) { c.MaxRetries = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithClock sets the clock used for retry timers.
func WithClock(clk clock.Clock) Option {
	return func(c *Config) { c.Clock = clk }
}
