package transport

import "sync"

// EventKind identifies a streaming channel lifecycle signal.
type EventKind int

const (
	// EventOpen fires once per successful handshake.
	EventOpen EventKind = iota
	// EventClose fires once when the channel closes.
	EventClose
	// EventError fires on handshake failure, protocol error, or an
	// abandoned streaming send.
	EventError
	// EventMessage fires for every raw inbound message from the robot.
	EventMessage
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventError:
		return "error"
	case EventMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Event is a lifecycle or inbound-message notification.
type Event struct {
	Kind EventKind
	Data []byte // raw message payload, set for EventMessage
	Err  error  // set for EventError
}

// bus fans events out to subscribers over buffered channels. A subscriber
// that stops draining loses events rather than blocking the channel's
// read loop.
type bus struct {
	mu   sync.Mutex
	subs []chan Event
}

func newBus() *bus {
	return &bus{}
}

// subscribe registers a new subscriber.
func (b *bus) subscribe() <-chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// unsubscribe removes a subscriber and closes its channel. Unknown
// channels are ignored.
func (b *bus) unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if (<-chan Event)(sub) == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// publish delivers the event to every subscriber without blocking.
func (b *bus) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is not keeping up - drop rather than stall the
			// read loop.
		}
	}
}
