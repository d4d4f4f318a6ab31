package net

import (
	"bytes"

	"github.com/ugorji/go/codec"
	"github.com/xornet-io/xornet/src/chain"
	"github.com/xornet-io/xornet/src/crypto"
	"github.com/xornet-io/xornet/src/routing"
)

// MessageKind discriminates the routed envelopes.
type MessageKind int

const (
	// PayloadMessage carries opaque application bytes.
	PayloadMessage MessageKind = iota

	// SectionUpdateMessage carries a section's wire form so peers can refresh
	// their knowledge after a split or churn.
	SectionUpdateMessage

	// RelocateMessage tells a member it has been reassigned to another
	// section.
	RelocateMessage

	// ProposalMessage carries a membership event and the signature shares
	// collected for it so far.
	ProposalMessage
)

// Message is the routed envelope exchanged between nodes. Proof carries the
// sender section's chain entries so the receiver can verify the sender's
// authority against any key it already trusts.
type Message struct {
	Src     routing.SrcLocation
	Dst     routing.DstLocation
	Kind    MessageKind
	Payload []byte
	Proof   []chain.Entry
}

// Marshal returns the canonical JSON encoding of the message.
func (m *Message) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(m); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal decodes a message produced by Marshal.
func (m *Message) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(m)
}

// Hash ...
func (m *Message) Hash() ([]byte, error) {
	hashBytes, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(hashBytes), nil
}
