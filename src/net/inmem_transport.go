package net

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"
)

// NewInmemAddr returns a new in-memory addr with a randomly generated UUID as
// the ID.
func NewInmemAddr() string {
	return generateUUID()
}

// generateUUID is used to generate a random UUID.
func generateUUID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Errorf("failed to read random bytes: %v", err))
	}

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%12x",
		buf[0:4],
		buf[4:6],
		buf[6:8],
		buf[8:10],
		buf[10:16])
}

// InmemTransport implements the Transport interface, to allow the core to be
// tested in-memory without going over a network.
type InmemTransport struct {
	sync.RWMutex
	consumerCh chan Event
	localAddr  string
	peers      map[string]*InmemTransport
	timeout    time.Duration
}

// NewInmemTransport is used to initialize a new transport and generates a
// random local address if none is specified.
func NewInmemTransport(addr string) (string, *InmemTransport) {
	if addr == "" {
		addr = NewInmemAddr()
	}
	trans := &InmemTransport{
		consumerCh: make(chan Event, 16),
		localAddr:  addr,
		peers:      make(map[string]*InmemTransport),
		timeout:    50 * time.Millisecond,
	}
	return addr, trans
}

// Consumer implements the Transport interface.
func (i *InmemTransport) Consumer() <-chan Event {
	return i.consumerCh
}

// LocalAddr implements the Transport interface.
func (i *InmemTransport) LocalAddr() string {
	return i.localAddr
}

// AdvertiseAddr implements the Transport interface.
func (i *InmemTransport) AdvertiseAddr() string {
	return i.localAddr
}

// Send implements the Transport interface. The message is round-tripped
// through its wire encoding so in-memory tests exercise the same codec path
// as a real network.
func (i *InmemTransport) Send(target string, msg *Message) error {
	i.RLock()
	peer, ok := i.peers[target]
	i.RUnlock()

	if !ok {
		return fmt.Errorf("failed to connect to peer: %v", target)
	}

	raw, err := msg.Marshal()
	if err != nil {
		return err
	}

	delivered := new(Message)
	if err := delivered.Unmarshal(raw); err != nil {
		return err
	}

	select {
	case peer.consumerCh <- Event{Type: Received, From: i.localAddr, Message: delivered}:
		return nil
	case <-time.After(i.timeout):
		return fmt.Errorf("send to %v timed out", target)
	}
}

// Connect is used to connect this transport to another transport for a given
// peer name. This allows for local routing. A Connected event is queued for
// the consumer.
func (i *InmemTransport) Connect(peer string, t Transport) {
	trans := t.(*InmemTransport)
	i.Lock()
	i.peers[peer] = trans
	i.Unlock()

	i.consumerCh <- Event{Type: Connected, From: peer}
}

// Disconnect is used to remove the ability to route to a given peer. A
// Disconnected event is queued for the consumer.
func (i *InmemTransport) Disconnect(peer string) {
	i.Lock()
	delete(i.peers, peer)
	i.Unlock()

	i.consumerCh <- Event{Type: Disconnected, From: peer}
}

// DisconnectAll is used to remove all routes to peers.
func (i *InmemTransport) DisconnectAll() {
	i.Lock()
	defer i.Unlock()
	i.peers = make(map[string]*InmemTransport)
}

// Close is used to permanently disable the transport.
func (i *InmemTransport) Close() error {
	i.DisconnectAll()
	return nil
}

// Listen is an empty function as there is no need to defer initialisation of
// the InMem service.
func (i *InmemTransport) Listen() {
}
