package members

import (
	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/xorname"
)

// Member is a network participant: a place in the name space, public signing
// material, and a reachable address.
type Member struct {
	Name      xorname.Name
	NetAddr   string
	PubKeyHex string
	Moniker   string

	id uint32
}

// NewMember creates a Member whose Name is derived from its public key.
func NewMember(pubKeyHex, netAddr, moniker string) *Member {
	member := &Member{
		NetAddr:   netAddr,
		PubKeyHex: pubKeyHex,
		Moniker:   moniker,
	}

	member.Name = xorname.FromPublicKey(member.PubKeyBytes())

	return member
}

// WithName returns a copy of the member placed at a different Name. It is how
// relocation moves a member under another section's prefix without changing
// its keys.
func (m *Member) WithName(name xorname.Name) *Member {
	return &Member{
		Name:      name,
		NetAddr:   m.NetAddr,
		PubKeyHex: m.PubKeyHex,
		Moniker:   m.Moniker,
	}
}

// ID returns a compact identifier of the member, for logs and wire messages.
func (m *Member) ID() uint32 {
	if m.id == 0 {
		m.id = common.Hash32(m.PubKeyBytes())
	}
	return m.id
}

// PubKeyBytes returns the member's public key in uncompressed form.
func (m *Member) PubKeyBytes() []byte {
	res, _ := common.DecodeFromString(m.PubKeyHex)
	return res
}

// PubKeyString returns the canonical string representation of the member's
// public key.
func (m *Member) PubKeyString() string {
	return m.PubKeyHex
}
