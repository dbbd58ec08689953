package robot

import (
	"context"
	"net/url"

	"github.com/fftai/gros-client-go/pkg/motor"
	"github.com/fftai/gros-client-go/pkg/transport"
)

const cmdCheckMotorForFlag = "check_motor_for_flag"

// MotorPVC is one motor's position/velocity/current snapshot.
type MotorPVC struct {
	No          string  `json:"no"`
	Orientation string  `json:"orientation"`
	Position    float64 `json:"position"`
	Velocity    float64 `json:"velocity"`
	Current     float64 `json:"current"`
}

// Hand is the facade for the single end-effector variant. Finger motion
// goes through MoveJoints like any other joint batch.
type Hand struct {
	*Robot
}

// NewHand creates an end-effector connection.
func NewHand(opts ...transport.Option) *Hand {
	return &Hand{Robot: New(opts...)}
}

// EnableHand powers the hand motors on.
func (h *Hand) EnableHand(ctx context.Context) (*transport.Response, error) {
	return h.t.Call(ctx, transport.CallSpec{Method: "POST", Path: "/robot/hand/enable"})
}

// DisableHand powers the hand motors off.
func (h *Hand) DisableHand(ctx context.Context) (*transport.Response, error) {
	return h.t.Call(ctx, transport.CallSpec{Method: "POST", Path: "/robot/hand/disable"})
}

// GetMotorPVC queries one motor's position, velocity, and current.
func (h *Hand) GetMotorPVC(ctx context.Context, no, orientation string) (*MotorPVC, error) {
	q := url.Values{}
	q.Set("no", no)
	q.Set("orientation", orientation)

	resp, err := h.t.Call(ctx, transport.CallSpec{
		Method: "GET",
		Path:   "/robot/motor/pvc",
		Query:  q,
	})
	if err != nil {
		return nil, err
	}
	var pvc MotorPVC
	if err := resp.ParseData(&pvc); err != nil {
		return nil, err
	}
	return &pvc, nil
}

// MoveMotors drives the hand's finger motors. It is the hand-flavored
// name for MoveJoints.
func (h *Hand) MoveMotors(targets []motor.JointTarget) error {
	return h.MoveJoints(targets)
}

// CheckMotorForFlag asks the firmware to verify the motor's flag state.
// The result arrives as a pushed message event.
func (h *Hand) CheckMotorForFlag(no, orientation string) error {
	return h.t.Send(transport.Envelope{
		Command: cmdCheckMotorForFlag,
		Data:    map[string]string{"no": no, "orientation": orientation},
	})
}
