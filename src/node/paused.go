package node

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ugorji/go/codec"
	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/crypto/keys"
	"github.com/xornet-io/xornet/src/section"
	"github.com/xornet-io/xornet/src/threshold"
)

// PausedStateVersion is bumped whenever the snapshot layout changes in a way
// an older binary cannot interpret.
const PausedStateVersion = 1

// PausedState is the snapshot of a paused node: section knowledge, the
// current epoch's authority key, and the membership events received but not
// yet applied. It is sufficient to reconstruct a running node without network
// re-bootstrap; only transport connections have to be re-established.
type PausedState struct {
	Version int

	// AuthorityKey is the hex dump of the local section's current epoch
	// private key, empty when this node does not hold it.
	AuthorityKey string

	Local   *section.Wire
	Remotes []*section.Wire

	Pending []MembershipEvent
}

// Marshal returns the canonical JSON encoding of the snapshot.
func (p *PausedState) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(p); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalPausedState decodes a snapshot and checks its version. A version
// mismatch fails with an IncompatibleState error; the encoded snapshot is
// never partially applied.
func UnmarshalPausedState(data []byte) (*PausedState, error) {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	p := new(PausedState)
	if err := dec.Decode(p); err != nil {
		return nil, err
	}

	if p.Version != PausedStateVersion {
		return nil, common.NewCoreErr(common.IncompatibleState,
			fmt.Sprintf("snapshot version %d, this binary speaks %d", p.Version, PausedStateVersion))
	}

	return p, nil
}

// Authority rebuilds the epoch signer from the snapshot, or nil when the
// paused node did not hold the authority key.
func (p *PausedState) Authority() (threshold.Signer, error) {
	if p.AuthorityKey == "" {
		return nil, nil
	}

	raw, err := hex.DecodeString(p.AuthorityKey)
	if err != nil {
		return nil, err
	}

	key, err := keys.ParsePrivateKey(raw)
	if err != nil {
		return nil, err
	}

	return threshold.NewQuorumSignerFromKey(key), nil
}

func dumpAuthority(authority threshold.Signer) string {
	if q, ok := authority.(*threshold.QuorumSigner); ok {
		return hex.EncodeToString(keys.DumpPrivateKey(q.Key()))
	}
	return ""
}
