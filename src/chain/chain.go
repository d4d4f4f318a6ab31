package chain

import (
	"bytes"

	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/crypto"
	"github.com/xornet-io/xornet/src/crypto/keys"
)

// Entry holds one generation of section authority: a public key and a
// signature over that key produced under the previous entry's key. The first
// entry of a chain is the network's genesis key and carries no signature.
type Entry struct {
	Key       []byte
	Signature string
}

// ProofChain is one node of the chain, pointing back at its parent. The zero
// value is not usable; start from NewProofChain.
type ProofChain struct {
	entry  Entry
	parent *ProofChain
	length int
}

// NewProofChain creates a chain containing only the genesis key.
func NewProofChain(genesisKey []byte) *ProofChain {
	return &ProofChain{
		entry:  Entry{Key: genesisKey},
		length: 1,
	}
}

// Entry returns the tail entry.
func (c *ProofChain) Entry() Entry {
	return c.entry
}

// Parent returns the chain without its tail entry, or nil at the genesis.
func (c *ProofChain) Parent() *ProofChain {
	return c.parent
}

// Len returns the number of entries.
func (c *ProofChain) Len() int {
	return c.length
}

// LastKey returns the current authority public key.
func (c *ProofChain) LastKey() []byte {
	return c.entry.Key
}

// GenesisKey returns the first key of the chain.
func (c *ProofChain) GenesisKey() []byte {
	node := c
	for node.parent != nil {
		node = node.parent
	}
	return node.entry.Key
}

// Entries returns the chain's entries, genesis first.
func (c *ProofChain) Entries() []Entry {
	res := make([]Entry, c.length)
	for node := c; node != nil; node = node.parent {
		res[node.length-1] = node.entry
	}
	return res
}

// Extend returns a new chain with an entry for newKey appended. The signature
// must be over SHA256(newKey) and verify against the current last key; if it
// does not, Extend fails with an InvalidSignature error. The receiver is
// never modified.
func (c *ProofChain) Extend(newKey []byte, signature string) (*ProofChain, error) {
	if !verifyLink(c.entry.Key, newKey, signature) {
		return nil, common.NewCoreErr(common.InvalidSignature,
			"chain extension not signed by current authority")
	}

	return &ProofChain{
		entry:  Entry{Key: newKey, Signature: signature},
		parent: c,
		length: c.length + 1,
	}, nil
}

// VerifyAgainst checks that the chain's tail is reachable from trustedKey by
// valid forward signatures. It fails with an UntrustedChain error when
// trustedKey does not appear in the chain, or when any link between it and
// the tail does not verify.
func (c *ProofChain) VerifyAgainst(trustedKey []byte) error {
	// Collect the entries from the tail back to the trusted key.
	var pending []Entry
	node := c
	for {
		if bytes.Equal(node.entry.Key, trustedKey) {
			break
		}
		pending = append(pending, node.entry)
		if node.parent == nil {
			return common.NewCoreErr(common.UntrustedChain,
				"trusted key not found in chain")
		}
		node = node.parent
	}

	// Walk forward from the trusted key, re-verifying every signature.
	prevKey := trustedKey
	for i := len(pending) - 1; i >= 0; i-- {
		if !verifyLink(prevKey, pending[i].Key, pending[i].Signature) {
			return common.NewCoreErr(common.UntrustedChain,
				"broken link above trusted key")
		}
		prevKey = pending[i].Key
	}

	return nil
}

// LinkDigest returns the digest which the previous authority signs to vouch
// for newKey.
func LinkDigest(newKey []byte) []byte {
	return crypto.SHA256(newKey)
}

func verifyLink(prevKey, newKey []byte, signature string) bool {
	pub := keys.ToPublicKey(prevKey)
	if pub == nil || pub.X == nil {
		return false
	}

	r, s, err := keys.DecodeSignature(signature)
	if err != nil || r == nil || s == nil {
		return false
	}

	return keys.Verify(pub, LinkDigest(newKey), r, s)
}
