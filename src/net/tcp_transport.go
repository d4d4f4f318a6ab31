package net

import (
	"encoding/binary"
	"fmt"
	"io"
	gonet "net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxFrameSize bounds a single wire frame. Anything larger is treated as a
// protocol violation and the connection is dropped.
const MaxFrameSize = 8 * 1024 * 1024

// TCPTransport implements the Transport interface over plain TCP. Frames are
// length-prefixed encoded messages. Outbound connections are pooled per
// target and redialed on failure.
type TCPTransport struct {
	consumerCh chan Event

	listener      gonet.Listener
	advertiseAddr string

	poolLock sync.Mutex
	pool     map[string]gonet.Conn

	timeout time.Duration
	logger  *logrus.Entry

	shutdownLock sync.Mutex
	shutdown     bool
	shutdownCh   chan struct{}
}

// NewTCPTransport binds to bindAddr and returns a listening transport. If
// advertiseAddr is empty, the bound address is advertised.
func NewTCPTransport(bindAddr string, advertiseAddr string, timeout time.Duration, logger *logrus.Entry) (*TCPTransport, error) {
	listener, err := gonet.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}

	if advertiseAddr == "" {
		advertiseAddr = listener.Addr().String()
	}

	return &TCPTransport{
		consumerCh:    make(chan Event, 16),
		listener:      listener,
		advertiseAddr: advertiseAddr,
		pool:          make(map[string]gonet.Conn),
		timeout:       timeout,
		logger:        logger.WithField("component", "tcp-transport"),
	}, nil
}

// Listen implements the Transport interface. It starts the accept loop.
func (t *TCPTransport) Listen() {
	t.shutdownCh = make(chan struct{})
	go t.listen()
}

func (t *TCPTransport) listen() {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.shutdownCh:
				return
			default:
				t.logger.WithError(err).Error("Accept failed")
				return
			}
		}
		go t.handleConn(conn)
	}
}

func (t *TCPTransport) handleConn(conn gonet.Conn) {
	defer conn.Close()

	from := conn.RemoteAddr().String()
	t.consumerCh <- Event{Type: Connected, From: from}

	for {
		msg, err := readFrame(conn)
		if err != nil {
			if err != io.EOF {
				t.logger.WithError(err).WithField("peer", from).Debug("Connection dropped")
			}
			t.consumerCh <- Event{Type: Disconnected, From: from}
			return
		}
		t.consumerCh <- Event{Type: Received, From: from, Message: msg}
	}
}

// Consumer implements the Transport interface.
func (t *TCPTransport) Consumer() <-chan Event {
	return t.consumerCh
}

// LocalAddr implements the Transport interface.
func (t *TCPTransport) LocalAddr() string {
	return t.listener.Addr().String()
}

// AdvertiseAddr implements the Transport interface.
func (t *TCPTransport) AdvertiseAddr() string {
	return t.advertiseAddr
}

// Send implements the Transport interface. The pooled connection to target is
// reused across calls; a write failure discards it so the next call redials.
func (t *TCPTransport) Send(target string, msg *Message) error {
	conn, err := t.getConn(target)
	if err != nil {
		return err
	}

	if t.timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(t.timeout))
	}

	if err := writeFrame(conn, msg); err != nil {
		t.dropConn(target)
		return err
	}

	return nil
}

func (t *TCPTransport) getConn(target string) (gonet.Conn, error) {
	t.poolLock.Lock()
	defer t.poolLock.Unlock()

	if conn, ok := t.pool[target]; ok {
		return conn, nil
	}

	conn, err := gonet.DialTimeout("tcp", target, t.timeout)
	if err != nil {
		return nil, err
	}

	t.pool[target] = conn

	return conn, nil
}

func (t *TCPTransport) dropConn(target string) {
	t.poolLock.Lock()
	defer t.poolLock.Unlock()

	if conn, ok := t.pool[target]; ok {
		conn.Close()
		delete(t.pool, target)
	}
}

// Close implements the Transport interface.
func (t *TCPTransport) Close() error {
	t.shutdownLock.Lock()
	defer t.shutdownLock.Unlock()

	if t.shutdown {
		return nil
	}
	t.shutdown = true

	if t.shutdownCh != nil {
		close(t.shutdownCh)
	}

	t.poolLock.Lock()
	for target, conn := range t.pool {
		conn.Close()
		delete(t.pool, target)
	}
	t.poolLock.Unlock()

	return t.listener.Close()
}

func writeFrame(w io.Writer, msg *Message) error {
	raw, err := msg.Marshal()
	if err != nil {
		return err
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(raw)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

func readFrame(r io.Reader) (*Message, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}

	raw := make([]byte, size)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, err
	}

	msg := new(Message)
	if err := msg.Unmarshal(raw); err != nil {
		return nil, err
	}

	return msg, nil
}
