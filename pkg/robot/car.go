package robot

import (
	"context"

	"github.com/fftai/gros-client-go/pkg/transport"
)

// Motion bounds for the wheeled variant.
const (
	CarMaxAngle = 45.0
	CarMaxSpeed = 0.8
)

// Car is the facade for the wheeled robot variant.
type Car struct {
	*Robot
}

// NewCar creates a wheeled robot connection.
func NewCar(opts ...transport.Option) *Car {
	return &Car{Robot: New(opts...)}
}

// SetMode sets the drive mode.
func (c *Car) SetMode(ctx context.Context, mode string) (*transport.Response, error) {
	return c.t.Call(ctx, transport.CallSpec{
		Method: "POST",
		Path:   "/robot/mode",
		Body:   map[string]string{"mode": mode},
	})
}

// Move drives the robot with the given steering angle and normalized
// speed, both clamped into firmware limits.
func (c *Car) Move(angle, speed float64) error {
	return c.t.Send(transport.Envelope{
		Command: cmdMove,
		Data: map[string]float64{
			"angle": transport.Cover("angle", angle, -CarMaxAngle, CarMaxAngle),
			"speed": transport.Cover("speed", speed, -CarMaxSpeed, CarMaxSpeed),
		},
	})
}
