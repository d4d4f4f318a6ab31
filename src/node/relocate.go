package node

import (
	"bytes"

	"github.com/ugorji/go/codec"
	"github.com/xornet-io/xornet/src/crypto"
	"github.com/xornet-io/xornet/src/crypto/keys"
	"github.com/xornet-io/xornet/src/threshold"
)

// Relocation is the wire form of a cross-section membership change: the event
// plus the origin authority's signature over its digest. The receiving node
// checks the signature against the tail key of the carrying message's proof
// chain, so only an authority descending from the genesis key can move
// members around.
type Relocation struct {
	Event     MembershipEvent
	Signature string
}

// NewRelocation signs a membership event with the origin section's current
// authority.
func NewRelocation(ev MembershipEvent, authority threshold.Signer) (*Relocation, error) {
	raw, err := ev.Marshal()
	if err != nil {
		return nil, err
	}

	sig, err := authority.Sign(crypto.SHA256(raw))
	if err != nil {
		return nil, err
	}

	return &Relocation{Event: ev, Signature: sig}, nil
}

// Verify checks the relocation's signature over the event digest against the
// given authority public key.
func (r *Relocation) Verify(authorityKey []byte) bool {
	raw, err := r.Event.Marshal()
	if err != nil {
		return false
	}

	pub := keys.ToPublicKey(authorityKey)
	if pub == nil || pub.X == nil {
		return false
	}

	sigR, sigS, err := keys.DecodeSignature(r.Signature)
	if err != nil {
		return false
	}

	return keys.Verify(pub, crypto.SHA256(raw), sigR, sigS)
}

// Marshal returns the canonical JSON encoding of the relocation.
func (r *Relocation) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(r); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalRelocation decodes a relocation produced by Marshal.
func UnmarshalRelocation(data []byte) (*Relocation, error) {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	r := new(Relocation)
	if err := dec.Decode(r); err != nil {
		return nil, err
	}

	return r, nil
}
