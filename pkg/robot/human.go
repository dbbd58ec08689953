package robot

import (
	"context"

	"github.com/fftai/gros-client-go/pkg/transport"
)

// Motion bounds for the humanoid. Walking uses a normalized speed; head
// angles are degrees as reported by the firmware.
const (
	WalkMaxAngle = 45.0
	WalkMaxSpeed = 0.8

	HeadMaxRoll  = 17.1887
	HeadMaxPitch = 17.1887
	HeadMaxYaw   = 17.1887

	SquatMin = -0.32
	SquatMax = 0.0
	WaistMax = 0.17
)

// Streaming command names used by the humanoid facade.
const (
	cmdMove      = "move"
	cmdHead      = "head"
	cmdLowerBody = "lower_body"
)

// Human is the facade for the humanoid robot variant.
type Human struct {
	*Robot
}

// NewHuman creates a humanoid connection.
func NewHuman(opts ...transport.Option) *Human {
	return &Human{Robot: New(opts...)}
}

// Stand moves the robot into its neutral standing posture.
func (h *Human) Stand(ctx context.Context) (*transport.Response, error) {
	return h.t.Call(ctx, transport.CallSpec{Method: "POST", Path: "/robot/stand"})
}

// SetMode sets the motion mode.
func (h *Human) SetMode(ctx context.Context, mode string) (*transport.Response, error) {
	return h.t.Call(ctx, transport.CallSpec{
		Method: "POST",
		Path:   "/robot/mode",
		Body:   map[string]string{"mode": mode},
	})
}

// UpperBody triggers a preset arm action. The set of action names is
// defined by the robot firmware, not by this client.
func (h *Human) UpperBody(ctx context.Context, armAction string) (*transport.Response, error) {
	return h.t.Call(ctx, transport.CallSpec{
		Method: "POST",
		Path:   "/robot/upper_body",
		Body:   map[string]string{"arm_action": armAction},
	})
}

// Walk makes the robot walk with the given turning angle and forward
// speed. Both values are clamped into their firmware limits.
func (h *Human) Walk(angle, speed float64) error {
	return h.t.Send(transport.Envelope{
		Command: cmdMove,
		Data: map[string]float64{
			"angle": transport.Cover("angle", angle, -WalkMaxAngle, WalkMaxAngle),
			"speed": transport.Cover("speed", speed, -WalkMaxSpeed, WalkMaxSpeed),
		},
	})
}

// Head orients the robot's head. Roll, pitch, and yaw are clamped into
// their firmware limits.
func (h *Human) Head(roll, pitch, yaw float64) error {
	return h.t.Send(transport.Envelope{
		Command: cmdHead,
		Data: map[string]float64{
			"roll":  transport.Cover("roll", roll, -HeadMaxRoll, HeadMaxRoll),
			"pitch": transport.Cover("pitch", pitch, -HeadMaxPitch, HeadMaxPitch),
			"yaw":   transport.Cover("yaw", yaw, -HeadMaxYaw, HeadMaxYaw),
		},
	})
}

// LowerBody adjusts squat depth (meters, downward negative) and waist
// rotation, both clamped.
func (h *Human) LowerBody(squat, waist float64) error {
	return h.t.Send(transport.Envelope{
		Command: cmdLowerBody,
		Data: map[string]float64{
			"squat": transport.Cover("squat", squat, SquatMin, SquatMax),
			"waist": transport.Cover("waist", waist, -WaistMax, WaistMax),
		},
	})
}
