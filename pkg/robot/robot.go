// Package robot provides the per-device-class facades for GROS robots.
// Each facade is a thin method set over the two transport primitives:
// request/response calls for control-plane operations and fire-and-forget
// streaming sends for time-sensitive motion commands. Joint-level motion
// goes through the motor dispatcher so every angle is clamped against the
// robot-reported limit table before it leaves the client.
package robot

import (
	"context"

	"github.com/fftai/gros-client-go/pkg/motor"
	"github.com/fftai/gros-client-go/pkg/transport"
)

// Streaming command names shared by the facades.
const (
	cmdStates = "states"
)

// Robot is the base facade shared by every device class. It owns exactly
// one transport client, one joint limit cache, and one dispatcher.
type Robot struct {
	t          *transport.Client
	limits     *motor.LimitCache
	dispatcher *motor.Dispatcher
}

// New creates a robot connection for the configured endpoint and starts
// the one-time background fetch of the joint limit table. The streaming
// channel is dialed by Connect.
func New(opts ...transport.Option) *Robot {
	t := transport.NewClient(opts...)
	limits := motor.NewLimitCache()
	r := &Robot{
		t:          t,
		limits:     limits,
		dispatcher: motor.NewDispatcher(limits, t, motor.WithDispatchClock(t.Clock())),
	}

	// Best effort: a failed fetch leaves the cache empty and is only
	// logged. Joint dispatches then wait at the readiness gate.
	go limits.Populate(context.Background(), t)

	return r
}

// Connect dials the streaming channel.
func (r *Robot) Connect(ctx context.Context) error {
	return r.t.Connect(ctx)
}

// Close shuts the connection down.
func (r *Robot) Close() error {
	return r.t.Close()
}

// State returns the streaming channel state.
func (r *Robot) State() transport.State {
	return r.t.State()
}

// Events returns lifecycle and robot-pushed message events. How pushed
// state payloads are parsed is up to the consumer.
func (r *Robot) Events() <-chan transport.Event {
	return r.t.Subscribe()
}

// Unsubscribe removes a channel returned by Events and closes it.
func (r *Robot) Unsubscribe(ch <-chan transport.Event) {
	r.t.Unsubscribe(ch)
}

// Transport exposes the underlying client for callers composing their own
// control-plane operations.
func (r *Robot) Transport() *transport.Client {
	return r.t
}

// Start switches the robot into its operational state.
func (r *Robot) Start(ctx context.Context) (*transport.Response, error) {
	return r.t.Call(ctx, transport.CallSpec{Method: "POST", Path: "/robot/start"})
}

// Stop halts the robot. This cuts motion output at the firmware level and
// takes priority over any queued streaming command.
func (r *Robot) Stop(ctx context.Context) (*transport.Response, error) {
	return r.t.Call(ctx, transport.CallSpec{Method: "POST", Path: "/robot/stop"})
}

// EnableDebugState asks the robot to push state snapshots every frequence
// seconds; they arrive as message events.
func (r *Robot) EnableDebugState(frequence int) error {
	return r.t.Send(transport.Envelope{
		Command: cmdStates,
		Data:    map[string]int{"frequence": frequence},
	})
}

// DisableDebugState stops the state push.
func (r *Robot) DisableDebugState() error {
	return r.t.Send(transport.Envelope{
		Command: cmdStates,
		Data:    map[string]int{"frequence": 0},
	})
}

// MoveJoints submits a batch of joint targets to the dispatcher. Targets
// are held until the limit table is available, clamped into their reported
// ranges, and forwarded as one move_joint command. Targets for unknown
// joints are dropped.
func (r *Robot) MoveJoints(targets []motor.JointTarget) error {
	return r.dispatcher.Dispatch(targets)
}

// GetJointLimits fetches the joint limit table directly, bypassing the
// cache.
func (r *Robot) GetJointLimits(ctx context.Context) ([]motor.JointLimit, error) {
	resp, err := r.t.Call(ctx, transport.CallSpec{Method: "GET", Path: motor.LimitPath})
	if err != nil {
		return nil, err
	}
	var limits []motor.JointLimit
	if err := resp.ParseData(&limits); err != nil {
		return nil, err
	}
	return limits, nil
}

// Limits exposes the connection's limit cache, mainly for tests and
// diagnostics.
func (r *Robot) Limits() *motor.LimitCache {
	return r.limits
}
