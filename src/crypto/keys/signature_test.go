package keys

import "testing"

func TestSignatureRoundTrip(t *testing.T) {
	key, err := GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}

	digest := []byte("01234567890123456789012345678901")

	r, s, err := Sign(key, digest)
	if err != nil {
		t.Fatal(err)
	}

	encoded := EncodeSignature(r, s)
	r2, s2, err := DecodeSignature(encoded)
	if err != nil {
		t.Fatal(err)
	}

	if !Verify(&key.PublicKey, digest, r2, s2) {
		t.Fatal("decoded signature should verify")
	}
}

func TestDecodeSignatureRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"abc",
		"abc|def|ghi",
		"not base36!|123",
		"123|not base36!",
	}

	for _, sig := range bad {
		if r, s, err := DecodeSignature(sig); err == nil {
			t.Fatalf("DecodeSignature(%q) should fail, got %v %v", sig, r, s)
		}
	}
}
