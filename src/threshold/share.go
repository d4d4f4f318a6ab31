package threshold

import (
	"crypto/ecdsa"

	"github.com/xornet-io/xornet/src/crypto/keys"
)

// Share is one elder's signature over a digest. A quorum of distinct valid
// shares is required before the section authority signs anything.
type Share struct {
	PubKeyHex string
	Signature string
}

// NewShare signs the digest with an elder's private key.
func NewShare(priv *ecdsa.PrivateKey, digest []byte) (Share, error) {
	r, s, err := keys.Sign(priv, digest)
	if err != nil {
		return Share{}, err
	}

	return Share{
		PubKeyHex: keys.PublicKeyHex(&priv.PublicKey),
		Signature: keys.EncodeSignature(r, s),
	}, nil
}

// Valid verifies the share's signature over the digest against the share's
// own public key.
func (s Share) Valid(digest []byte) bool {
	return Verify(s.Signature, digest, s.PubKeyHex)
}

// Verify checks an encoded signature over a digest against a hex-encoded
// public key.
func Verify(signature string, digest []byte, pubKeyHex string) bool {
	pubBytes, err := decodePubKey(pubKeyHex)
	if err != nil {
		return false
	}

	pub := keys.ToPublicKey(pubBytes)
	if pub == nil || pub.X == nil {
		return false
	}

	r, sv, err := keys.DecodeSignature(signature)
	if err != nil || r == nil || sv == nil {
		return false
	}

	return keys.Verify(pub, digest, r, sv)
}
