package crypto

import "crypto/sha256"

// SHA256 ...
func SHA256(hashBytes []byte) []byte {
	hasher := sha256.New()
	hasher.Write(hashBytes)
	hash := hasher.Sum(nil)
	return hash
}

// SimpleHashFromTwoHashes hashes the concatenation of two hashes. It is used
// to fold a list of hashes into one.
func SimpleHashFromTwoHashes(left, right []byte) []byte {
	hasher := sha256.New()
	hasher.Write(left)
	hasher.Write(right)
	return hasher.Sum(nil)
}
