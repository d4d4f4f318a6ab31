package threshold

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/crypto/keys"
)

// Signer is the signing capability for one section epoch.
type Signer interface {
	// PublicKeyBytes returns the epoch's public key in uncompressed form.
	PublicKeyBytes() []byte

	// Sign produces the epoch signature over a digest. Implementations may
	// require prior quorum approval; QuorumSigner.Combine is the gated path.
	Sign(digest []byte) (string, error)
}

// QuorumSigner holds one epoch's authority key and signs on behalf of the
// elder quorum. It is the default Signer implementation.
type QuorumSigner struct {
	key *ecdsa.PrivateKey
}

// NewQuorumSigner creates a QuorumSigner with a fresh epoch key.
func NewQuorumSigner() (*QuorumSigner, error) {
	key, err := keys.GenerateECDSAKey()
	if err != nil {
		return nil, err
	}
	return &QuorumSigner{key: key}, nil
}

// NewQuorumSignerFromKey wraps an existing epoch key.
func NewQuorumSignerFromKey(key *ecdsa.PrivateKey) *QuorumSigner {
	return &QuorumSigner{key: key}
}

// Key exposes the epoch private key so a paused node can snapshot it.
func (q *QuorumSigner) Key() *ecdsa.PrivateKey {
	return q.key
}

// PublicKeyBytes implements Signer.
func (q *QuorumSigner) PublicKeyBytes() []byte {
	return keys.FromPublicKey(&q.key.PublicKey)
}

// Sign implements Signer.
func (q *QuorumSigner) Sign(digest []byte) (string, error) {
	r, s, err := keys.Sign(q.key, digest)
	if err != nil {
		return "", err
	}
	return keys.EncodeSignature(r, s), nil
}

// Combine checks that at least quorum distinct valid shares vouch for the
// digest, then emits the epoch signature over it. It fails with an
// InvalidSignature error when the valid shares fall short of the quorum.
func (q *QuorumSigner) Combine(digest []byte, shares []Share, quorum int) (string, error) {
	valid := map[string]bool{}
	for _, share := range shares {
		if valid[share.PubKeyHex] {
			continue
		}
		if share.Valid(digest) {
			valid[share.PubKeyHex] = true
		}
	}

	if len(valid) < quorum {
		return "", common.NewCoreErr(common.InvalidSignature,
			fmt.Sprintf("%d valid shares, quorum is %d", len(valid), quorum))
	}

	return q.Sign(digest)
}

func decodePubKey(pubKeyHex string) ([]byte, error) {
	if len(pubKeyHex) < 2 {
		return nil, fmt.Errorf("public key string too short")
	}
	return common.DecodeFromString(pubKeyHex)
}
