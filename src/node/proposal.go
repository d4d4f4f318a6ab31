package node

import (
	"bytes"

	"github.com/ugorji/go/codec"
	"github.com/xornet-io/xornet/src/threshold"
)

// Proposal is a membership event on its way to quorum: the event itself plus
// the signature shares its sender had collected so far. Elders exchange
// proposals until one of them accumulates a quorum of distinct valid shares
// and applies the event.
type Proposal struct {
	Event  MembershipEvent
	Shares []threshold.Share
}

// Marshal returns the canonical JSON encoding of the proposal.
func (p *Proposal) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(p); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalProposal decodes a proposal produced by Marshal.
func UnmarshalProposal(data []byte) (*Proposal, error) {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	p := new(Proposal)
	if err := dec.Decode(p); err != nil {
		return nil, err
	}

	return p, nil
}
