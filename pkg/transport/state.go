package transport

// State is the lifecycle state of the streaming channel.
type State int

const (
	// StateConnecting is the initial state before the handshake completes.
	StateConnecting State = iota
	// StateOpen means the channel is established and sends go out directly.
	StateOpen
	// StateClosed means the channel was closed by either side.
	StateClosed
	// StateErrored means the handshake failed or a protocol error occurred.
	StateErrored
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}
