package chain

import (
	"crypto/ecdsa"
	"reflect"
	"testing"

	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/crypto/keys"
)

func signLink(t *testing.T, signer *ecdsa.PrivateKey, newKey []byte) string {
	t.Helper()
	r, s, err := keys.Sign(signer, LinkDigest(newKey))
	if err != nil {
		t.Fatal(err)
	}
	return keys.EncodeSignature(r, s)
}

// buildChain creates a chain of n entries and returns it along with the
// private key of every generation, genesis first.
func buildChain(t *testing.T, n int) (*ProofChain, []*ecdsa.PrivateKey) {
	t.Helper()

	genesis, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}

	privs := []*ecdsa.PrivateKey{genesis}
	c := NewProofChain(keys.FromPublicKey(&genesis.PublicKey))

	for i := 1; i < n; i++ {
		next, err := keys.GenerateECDSAKey()
		if err != nil {
			t.Fatal(err)
		}
		nextPub := keys.FromPublicKey(&next.PublicKey)

		c, err = c.Extend(nextPub, signLink(t, privs[i-1], nextPub))
		if err != nil {
			t.Fatal(err)
		}

		privs = append(privs, next)
	}

	return c, privs
}

func TestExtendAndVerifyFromGenesis(t *testing.T) {
	c, _ := buildChain(t, 5)

	if c.Len() != 5 {
		t.Fatalf("chain length should be 5, not %d", c.Len())
	}

	if err := c.VerifyAgainst(c.GenesisKey()); err != nil {
		t.Fatalf("chain should verify against its own genesis: %v", err)
	}
}

func TestVerifyAgainstIntermediateKey(t *testing.T) {
	c, _ := buildChain(t, 5)

	for _, entry := range c.Entries() {
		if err := c.VerifyAgainst(entry.Key); err != nil {
			t.Fatalf("chain should verify against any of its own keys: %v", err)
		}
	}
}

func TestVerifyAgainstUnknownKey(t *testing.T) {
	c, _ := buildChain(t, 3)

	stranger, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}

	err = c.VerifyAgainst(keys.FromPublicKey(&stranger.PublicKey))
	if !common.IsCore(err, common.UntrustedChain) {
		t.Fatalf("verifying against an unknown key should fail with UntrustedChain, got %v", err)
	}
}

func TestExtendWithForgedSignature(t *testing.T) {
	c, _ := buildChain(t, 2)

	forger, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}
	next, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}
	nextPub := keys.FromPublicKey(&next.PublicKey)

	// Signed by the forger instead of the chain's current authority.
	_, err = c.Extend(nextPub, signLink(t, forger, nextPub))
	if !common.IsCore(err, common.InvalidSignature) {
		t.Fatalf("forged extension should fail with InvalidSignature, got %v", err)
	}

	_, err = c.Extend(nextPub, "not|asignature")
	if !common.IsCore(err, common.InvalidSignature) {
		t.Fatalf("garbage signature should fail with InvalidSignature, got %v", err)
	}
}

func TestExtendIsPersistent(t *testing.T) {
	c, privs := buildChain(t, 2)

	before := c.Entries()

	next, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}
	nextPub := keys.FromPublicKey(&next.PublicKey)

	extended, err := c.Extend(nextPub, signLink(t, privs[len(privs)-1], nextPub))
	if err != nil {
		t.Fatal(err)
	}

	// The old reference is untouched.
	if !reflect.DeepEqual(before, c.Entries()) {
		t.Fatal("Extend should not mutate the original chain")
	}
	if extended.Len() != c.Len()+1 {
		t.Fatalf("extended chain should have %d entries, not %d", c.Len()+1, extended.Len())
	}
	if extended.Parent() != c {
		t.Fatal("extended chain should share structure with its parent")
	}

	// A key appended by Extend is immediately usable as a trust anchor.
	if err := extended.VerifyAgainst(nextPub); err != nil {
		t.Fatalf("tail key should be a valid trust anchor: %v", err)
	}
}

func TestMarshalRoundTripReverifies(t *testing.T) {
	c, _ := buildChain(t, 4)

	data, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(c.Entries(), decoded.Entries()) {
		t.Fatal("decoded chain should equal the original")
	}

	// Corrupt a middle entry; decoding must reject the chain.
	entries := c.Entries()
	entries[2].Signature = entries[1].Signature
	if _, err := FromEntries(entries); !common.IsCore(err, common.UntrustedChain) {
		t.Fatalf("tampered chain should fail with UntrustedChain, got %v", err)
	}
}
