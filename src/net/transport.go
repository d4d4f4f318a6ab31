package net

// EventType tags the transport events the core consumes.
type EventType int

const (
	// Connected signals that a peer became reachable.
	Connected EventType = iota

	// Disconnected signals that a peer stopped being reachable.
	Disconnected

	// Received carries an inbound message.
	Received
)

// Event is one item of the transport's single ordered event stream.
type Event struct {
	Type EventType

	// From is the remote peer's address.
	From string

	// Message is set for Received events.
	Message *Message
}

// Transport provides an interface for network transports to allow a node to
// communicate with other nodes.
type Transport interface {

	// Listen starts the transport listening.
	Listen()

	// Consumer returns the channel the core consumes transport events from.
	Consumer() <-chan Event

	// LocalAddr returns our local address.
	LocalAddr() string

	// AdvertiseAddr returns the address where other peers can reach us.
	AdvertiseAddr() string

	// Send delivers a message to the peer at target.
	Send(target string, msg *Message) error

	// Close permanently closes the transport, stopping any associated
	// goroutines and freeing other resources.
	Close() error
}
