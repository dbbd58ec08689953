package motor

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/fftai/gros-client-go/internal/log"
	"github.com/fftai/gros-client-go/pkg/transport"
)

// Dispatcher defaults.
const (
	// DefaultGateInterval is how long a dispatch waits between readiness
	// checks while the limit cache is still empty.
	DefaultGateInterval = 500 * time.Millisecond

	// DefaultGateMaxRetries of 0 means the readiness gate retries
	// indefinitely, matching the robot firmware's expectation that limits
	// eventually arrive. A cache whose initial fetch failed never
	// populates, so callers wanting a bound must set one explicitly.
	DefaultGateMaxRetries = 0
)

// MoveJointCommand is the streaming command name for joint batches.
const MoveJointCommand = "move_joint"

// JointTarget is a desired motion command for one joint. Only these three
// fields ever leave the client.
type JointTarget struct {
	No          string  `json:"no"`
	Orientation string  `json:"orientation"`
	Angle       float64 `json:"angle"`
}

// moveJointData is the data payload of a move_joint envelope.
type moveJointData struct {
	Command []JointTarget `json:"command"`
}

// Sender is the slice of the transport client the dispatcher needs.
type Sender interface {
	Send(env transport.Envelope) error
}

// Dispatcher clamps joint command batches against the limit cache and
// forwards them over the streaming channel. No command leaves the client
// with an angle outside the robot-reported range for that joint.
type Dispatcher struct {
	cache  *LimitCache
	sender Sender
	clk    clock.Clock

	gateInterval   time.Duration
	gateMaxRetries int
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithGateInterval sets the readiness-gate polling interval.
func WithGateInterval(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) { dp.gateInterval = d }
}

// WithGateMaxRetries bounds the readiness gate. 0 retries indefinitely.
func WithGateMaxRetries(n int) DispatcherOption {
	return func(dp *Dispatcher) { dp.gateMaxRetries = n }
}

// WithDispatchClock sets the clock driving the readiness-gate timer.
func WithDispatchClock(clk clock.Clock) DispatcherOption {
	return func(dp *Dispatcher) { dp.clk = clk }
}

// NewDispatcher creates a dispatcher over the given cache and sender.
func NewDispatcher(cache *LimitCache, sender Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		cache:          cache,
		sender:         sender,
		clk:            clock.New(),
		gateInterval:   DefaultGateInterval,
		gateMaxRetries: DefaultGateMaxRetries,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch clamps and forwards a batch of joint targets.
//
// While the limit cache is empty the whole original batch is rescheduled
// after the gate interval; nothing is sent and nothing fails. Once limits
// are present, each target is joined independently against its limit
// record: matched targets are clamped into range, unmatched targets are
// silently dropped. A non-empty result goes out as a single move_joint
// envelope; a fully unmatched batch sends nothing and is not an error.
//
// Dispatch returns immediately. A send error on the direct path is
// returned to the caller; errors on a rescheduled attempt surface through
// the transport event bus.
func (d *Dispatcher) Dispatch(targets []JointTarget) error {
	if len(targets) == 0 {
		return nil
	}
	// Keep only the wire fields, whatever the caller handed over.
	batch := make([]JointTarget, len(targets))
	for i, t := range targets {
		batch[i] = JointTarget{No: t.No, Orientation: t.Orientation, Angle: t.Angle}
	}
	return d.dispatch(batch, 0)
}

func (d *Dispatcher) dispatch(batch []JointTarget, attempt int) error {
	if !d.cache.Ready() {
		if d.gateMaxRetries > 0 && attempt >= d.gateMaxRetries {
			log.Warn("joint dispatch dropped, limit cache never populated",
				"targets", len(batch), "attempts", attempt)
			return nil
		}
		d.clk.AfterFunc(d.gateInterval, func() {
			_ = d.dispatch(batch, attempt+1)
		})
		return nil
	}

	out := make([]JointTarget, 0, len(batch))
	for _, t := range batch {
		lim, ok := d.cache.Find(t.No, t.Orientation)
		if !ok {
			log.Debug("joint has no limit record, dropped from batch",
				"no", t.No, "orientation", t.Orientation)
			continue
		}
		out = append(out, JointTarget{
			No:          t.No,
			Orientation: t.Orientation,
			Angle:       transport.Cover("angle", t.Angle, lim.MinAngle, lim.MaxAngle),
		})
	}

	if len(out) == 0 {
		return nil
	}
	return d.sender.Send(transport.Envelope{
		Command: MoveJointCommand,
		Data:    moveJointData{Command: out},
	})
}
