package net

import (
	"reflect"
	"testing"
	"time"

	"github.com/xornet-io/xornet/src/common"
)

func TestTCPTransportSendReceive(t *testing.T) {
	logger := common.NewTestEntry(t)

	recv, err := NewTCPTransport("127.0.0.1:0", "", time.Second, logger)
	if err != nil {
		t.Fatal(err)
	}
	recv.Listen()
	defer recv.Close()

	send, err := NewTCPTransport("127.0.0.1:0", "", time.Second, logger)
	if err != nil {
		t.Fatal(err)
	}
	send.Listen()
	defer send.Close()

	sent := testMessage(t)
	if err := send.Send(recv.LocalAddr(), sent); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-recv.Consumer():
			if ev.Type == Connected {
				continue
			}
			if ev.Type != Received {
				t.Fatalf("expected a Received event, got %v", ev.Type)
			}
			if !reflect.DeepEqual(ev.Message, sent) {
				t.Fatal("message should survive the wire")
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for the message")
		}
	}
}

func TestTCPTransportAdvertiseAddr(t *testing.T) {
	logger := common.NewTestEntry(t)

	trans, err := NewTCPTransport("127.0.0.1:0", "example.com:1337", time.Second, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer trans.Close()

	if trans.AdvertiseAddr() != "example.com:1337" {
		t.Fatalf("advertise address should be overridable, got %s", trans.AdvertiseAddr())
	}
	if trans.LocalAddr() == "example.com:1337" {
		t.Fatal("local address should be the bound one")
	}
}
