package xorname

import (
	"bytes"
	"fmt"
	"math/bits"

	"github.com/xornet-io/xornet/src/common"
	"golang.org/x/crypto/sha3"
)

const (
	// NameLen is the size of a Name in bytes.
	NameLen = 32

	// NameBits is the size of a Name in bits. It bounds the length of a
	// Prefix and the number of hops of any route.
	NameBits = 8 * NameLen
)

// Name is a fixed-width identifier placing a node in the routing space. Names
// are totally ordered lexicographically; routing proximity uses the XOR
// metric instead, which is a different ordering.
type Name [NameLen]byte

// NewName creates a Name from a 32-byte slice.
func NewName(b []byte) (Name, error) {
	var n Name
	if len(b) != NameLen {
		return n, fmt.Errorf("invalid name length: got %d, want %d", len(b), NameLen)
	}
	copy(n[:], b)
	return n, nil
}

// FromPublicKey derives a Name from the uncompressed form of a public key. It
// is the default placement of a member in the name space; relocation assigns
// a different Name explicitly.
func FromPublicKey(pub []byte) Name {
	return Name(sha3.Sum256(pub))
}

// Bytes returns the name as a byte slice.
func (n Name) Bytes() []byte {
	res := make([]byte, NameLen)
	copy(res, n[:])
	return res
}

// String returns the hex representation of the Name.
func (n Name) String() string {
	return common.EncodeToString(n[:])
}

// Cmp compares two names lexicographically. This is the total order used for
// tie-breaks; it is never used to measure routing proximity.
func (n Name) Cmp(o Name) int {
	return bytes.Compare(n[:], o[:])
}

// Bit returns the bit of the name at position i, counting from the most
// significant bit of the first byte.
func (n Name) Bit(i uint) uint8 {
	return (n[i/8] >> (7 - i%8)) & 1
}

// Distance returns the bitwise XOR of two names. The result is only ever
// compared against other distances; it is not a Name.
func Distance(a, b Name) Name {
	var d Name
	for i := 0; i < NameLen; i++ {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// CloserTo returns true if a is strictly closer to target than b, by the XOR
// metric.
func CloserTo(target, a, b Name) bool {
	for i := 0; i < NameLen; i++ {
		da := a[i] ^ target[i]
		db := b[i] ^ target[i]
		if da != db {
			return da < db
		}
	}
	return false
}

// CommonPrefixLen returns the length of the longest run of leading bits shared
// by two names. It decides the minimal prefix that must split to separate the
// two names into different partitions.
func CommonPrefixLen(a, b Name) uint {
	for i := 0; i < NameLen; i++ {
		if x := a[i] ^ b[i]; x != 0 {
			return uint(8*i + bits.LeadingZeros8(x))
		}
	}
	return NameBits
}
