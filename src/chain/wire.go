package chain

import (
	"bytes"

	"github.com/ugorji/go/codec"
	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/crypto"
)

// FromEntries rebuilds a chain from a genesis-first slice of entries,
// re-verifying every link. It is used when a chain arrives over the wire or
// from a snapshot; entries produced by a trusted local chain always pass.
func FromEntries(entries []Entry) (*ProofChain, error) {
	if len(entries) == 0 {
		return nil, common.NewCoreErr(common.UntrustedChain, "empty chain")
	}

	c := NewProofChain(entries[0].Key)

	for _, entry := range entries[1:] {
		extended, err := c.Extend(entry.Key, entry.Signature)
		if err != nil {
			return nil, common.NewCoreErr(common.UntrustedChain,
				"chain contains an invalid link")
		}
		c = extended
	}

	return c, nil
}

// Marshal returns the canonical JSON encoding of the chain's entries, genesis
// first.
func (c *ProofChain) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(c.Entries()); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal decodes a chain produced by Marshal, re-verifying every link.
func Unmarshal(data []byte) (*ProofChain, error) {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	var entries []Entry
	if err := dec.Decode(&entries); err != nil {
		return nil, err
	}

	return FromEntries(entries)
}

// Hash ...
func (c *ProofChain) Hash() ([]byte, error) {
	hashBytes, err := c.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(hashBytes), nil
}
