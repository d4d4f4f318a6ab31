package node

import (
	"crypto/ecdsa"

	"github.com/xornet-io/xornet/src/crypto/keys"
	"github.com/xornet-io/xornet/src/members"
	"github.com/xornet-io/xornet/src/threshold"
	"github.com/xornet-io/xornet/src/xorname"
)

// Identity holds the key material identifying a node on the network. The
// node's name is derived from the public key and cannot be chosen.
type Identity struct {
	Key     *ecdsa.PrivateKey
	Moniker string

	id       uint32
	name     *xorname.Name
	pubBytes []byte
	pubHex   string
}

// NewIdentity is a factory method for an Identity
func NewIdentity(key *ecdsa.PrivateKey, moniker string) *Identity {
	return &Identity{
		Key:     key,
		Moniker: moniker,
	}
}

// ID returns an ID for the node
func (i *Identity) ID() uint32 {
	if i.id == 0 {
		i.id = keys.PublicKeyID(&i.Key.PublicKey)
	}
	return i.id
}

// Name returns the node's name in the XOR space
func (i *Identity) Name() xorname.Name {
	if i.name == nil {
		name := xorname.FromPublicKey(i.PublicKeyBytes())
		i.name = &name
	}
	return *i.name
}

// PublicKeyBytes returns the node's public key as a byte array
func (i *Identity) PublicKeyBytes() []byte {
	if len(i.pubBytes) == 0 {
		i.pubBytes = keys.FromPublicKey(&i.Key.PublicKey)
	}
	return i.pubBytes
}

// PublicKeyHex returns the node's public key as a hex string
func (i *Identity) PublicKeyHex() string {
	if len(i.pubHex) == 0 {
		i.pubHex = keys.PublicKeyHex(&i.Key.PublicKey)
	}
	return i.pubHex
}

// SignShare produces this node's signature share over a digest, for the
// section's quorum accumulation.
func (i *Identity) SignShare(digest []byte) (threshold.Share, error) {
	return threshold.NewShare(i.Key, digest)
}

// Member returns the member record advertising this identity at netAddr.
func (i *Identity) Member(netAddr string) *members.Member {
	return members.NewMember(i.PublicKeyHex(), netAddr, i.Moniker)
}
