package net

import (
	"reflect"
	"testing"

	"github.com/xornet-io/xornet/src/chain"
	"github.com/xornet-io/xornet/src/crypto/keys"
	"github.com/xornet-io/xornet/src/routing"
	"github.com/xornet-io/xornet/src/xorname"
)

func testMessage(t *testing.T) *Message {
	t.Helper()

	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}
	pub := keys.FromPublicKey(&key.PublicKey)

	var target xorname.Name
	target[0] = 0x80

	return &Message{
		Src:     routing.NodeAt(xorname.FromPublicKey(pub)),
		Dst:     routing.NodeAt(target),
		Kind:    PayloadMessage,
		Payload: []byte("something routed"),
		Proof:   []chain.Entry{{Key: pub}},
	}
}

func TestInmemSendReceive(t *testing.T) {
	addr1, trans1 := NewInmemTransport("")
	addr2, trans2 := NewInmemTransport("")
	defer trans1.Close()
	defer trans2.Close()

	trans1.Connect(addr2, trans2)
	trans2.Connect(addr1, trans1)

	// both sides observe the connection
	ev := <-trans1.Consumer()
	if ev.Type != Connected || ev.From != addr2 {
		t.Fatalf("trans1 should see Connected(%s), got %v", addr2, ev)
	}
	ev = <-trans2.Consumer()
	if ev.Type != Connected || ev.From != addr1 {
		t.Fatalf("trans2 should see Connected(%s), got %v", addr1, ev)
	}

	sent := testMessage(t)
	if err := trans1.Send(addr2, sent); err != nil {
		t.Fatal(err)
	}

	ev = <-trans2.Consumer()
	if ev.Type != Received {
		t.Fatalf("expected a Received event, got %v", ev.Type)
	}
	if ev.From != addr1 {
		t.Fatalf("message should come from %s, not %s", addr1, ev.From)
	}
	if !reflect.DeepEqual(ev.Message, sent) {
		t.Fatalf("message should survive the wire encoding: %v != %v", ev.Message, sent)
	}

	trans1.Disconnect(addr2)
	ev = <-trans1.Consumer()
	if ev.Type != Disconnected || ev.From != addr2 {
		t.Fatalf("trans1 should see Disconnected(%s), got %v", addr2, ev)
	}

	if err := trans1.Send(addr2, sent); err == nil {
		t.Fatal("sending to a disconnected peer should fail")
	}
}

func TestInmemSendUnknownPeer(t *testing.T) {
	_, trans := NewInmemTransport("")
	defer trans.Close()

	if err := trans.Send("nobody", testMessage(t)); err == nil {
		t.Fatal("sending to an unknown peer should fail")
	}
}

func TestMessageHashChangesWithContent(t *testing.T) {
	msg := testMessage(t)

	h1, err := msg.Hash()
	if err != nil {
		t.Fatal(err)
	}

	msg.Payload = []byte("something else")
	h2, err := msg.Hash()
	if err != nil {
		t.Fatal(err)
	}

	if reflect.DeepEqual(h1, h2) {
		t.Fatal("different payloads should hash differently")
	}
}
