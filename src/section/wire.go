package section

import (
	"bytes"

	"github.com/ugorji/go/codec"
	"github.com/xornet-io/xornet/src/chain"
	"github.com/xornet-io/xornet/src/crypto"
	"github.com/xornet-io/xornet/src/members"
	"github.com/xornet-io/xornet/src/xorname"
)

// Wire is the serializable form of a Section: the proof chain flattened to
// its entries, the elders to a plain list.
type Wire struct {
	Prefix  xorname.Prefix
	Members []*members.Member
	Epoch   int
	Chain   []chain.Entry
}

// Wire returns the section's serializable form.
func (s *Section) Wire() *Wire {
	return &Wire{
		Prefix:  s.Prefix,
		Members: s.Elders.Members,
		Epoch:   s.Epoch,
		Chain:   s.Chain.Entries(),
	}
}

// FromWire rebuilds a Section, re-verifying every chain link. Sections
// received from peers or loaded from snapshots always come through here.
func FromWire(w *Wire) (*Section, error) {
	proofChain, err := chain.FromEntries(w.Chain)
	if err != nil {
		return nil, err
	}

	return New(w.Prefix, members.NewMemberSet(w.Members), proofChain), nil
}

// Marshal returns the canonical JSON encoding of the wire form.
func (w *Wire) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(w); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalWire decodes a wire form produced by Marshal.
func UnmarshalWire(data []byte) (*Wire, error) {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	w := new(Wire)
	if err := dec.Decode(w); err != nil {
		return nil, err
	}

	return w, nil
}

// Hash ...
func (w *Wire) Hash() ([]byte, error) {
	hashBytes, err := w.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(hashBytes), nil
}
