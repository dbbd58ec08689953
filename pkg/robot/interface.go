// Interface segregation for consumers that only need a slice of a facade.
// Depend on the smallest interface that covers the calls you make.

package robot

import "github.com/fftai/gros-client-go/pkg/motor"

// Walker provides ground locomotion control.
type Walker interface {
	Walk(angle, speed float64) error
}

// HeadController provides head orientation control.
type HeadController interface {
	Head(roll, pitch, yaw float64) error
}

// JointController provides clamped joint-batch control.
type JointController interface {
	MoveJoints(targets []motor.JointTarget) error
}

// Driver provides wheeled locomotion control.
type Driver interface {
	Move(angle, speed float64) error
}

// Compile-time facade checks.
var (
	_ Walker          = (*Human)(nil)
	_ HeadController  = (*Human)(nil)
	_ JointController = (*Robot)(nil)
	_ Driver          = (*Car)(nil)
)
