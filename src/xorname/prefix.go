package xorname

import "fmt"

// Prefix denotes the partition of the name space formed by all names whose
// leading bits equal the prefix's bits. A zero-length Prefix matches every
// name. Two prefixes are either disjoint, equal, or nested; partial overlap
// is impossible by construction.
//
// Fields are exported for serialization; use NewPrefix to keep Bits canonical
// (all bits beyond BitCount zeroed).
type Prefix struct {
	Bits     Name
	BitCount uint
}

// NewPrefix creates a Prefix of the given length from the leading bits of
// name.
func NewPrefix(name Name, bitCount uint) Prefix {
	if bitCount > NameBits {
		bitCount = NameBits
	}
	return Prefix{
		Bits:     truncate(name, bitCount),
		BitCount: bitCount,
	}
}

// ParsePrefix creates a Prefix from a string of '0' and '1' characters. The
// empty string denotes the whole name space.
func ParsePrefix(s string) (Prefix, error) {
	var name Name
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			name[i/8] |= 1 << (7 - uint(i)%8)
		default:
			return Prefix{}, fmt.Errorf("invalid prefix character %q at position %d", c, i)
		}
	}
	return NewPrefix(name, uint(len(s))), nil
}

// Len returns the number of bits in the prefix.
func (p Prefix) Len() uint {
	return p.BitCount
}

// Matches returns whether name's leading bits equal the prefix's bits.
func (p Prefix) Matches(name Name) bool {
	return CommonPrefixLen(p.Bits, name) >= p.BitCount
}

// Equal returns whether two prefixes denote the same partition.
func (p Prefix) Equal(q Prefix) bool {
	return p.BitCount == q.BitCount && p.Bits == q.Bits
}

// IsAncestorOf returns whether q's partition is contained in p's. A prefix is
// an ancestor of itself.
func (p Prefix) IsAncestorOf(q Prefix) bool {
	return p.BitCount <= q.BitCount && p.Matches(q.Bits)
}

// IsCompatibleWith returns whether the two prefixes are equal or nested.
func (p Prefix) IsCompatibleWith(q Prefix) bool {
	return p.IsAncestorOf(q) || q.IsAncestorOf(p)
}

// IsDisjointFrom returns whether the two partitions share no name.
func (p Prefix) IsDisjointFrom(q Prefix) bool {
	return !p.IsCompatibleWith(q)
}

// Extended returns the prefix lengthened by one bit of the given value. A
// full-length prefix cannot grow and is returned unchanged.
func (p Prefix) Extended(bit uint8) Prefix {
	if p.BitCount >= NameBits {
		return p
	}

	name := p.Bits
	if bit != 0 {
		name[p.BitCount/8] |= 1 << (7 - p.BitCount%8)
	}
	return NewPrefix(name, p.BitCount+1)
}

// Split returns the two children obtained by fixing one more bit. The same
// parent always yields the same children.
func (p Prefix) Split() (Prefix, Prefix) {
	return p.Extended(0), p.Extended(1)
}

// LowerBound returns the smallest name matching the prefix. It is the anchor
// against which elder candidates are ordered.
func (p Prefix) LowerBound() Name {
	return p.Bits
}

// UpperBound returns the largest name matching the prefix.
func (p Prefix) UpperBound() Name {
	name := p.Bits
	for i := p.BitCount; i < NameBits; i++ {
		name[i/8] |= 1 << (7 - i%8)
	}
	return name
}

// CommonPrefixLenWith returns how many of the prefix's bits the given name
// shares, capped at the prefix length. It measures how good an approximation
// of name the partition is.
func (p Prefix) CommonPrefixLenWith(name Name) uint {
	cpl := CommonPrefixLen(p.Bits, name)
	if cpl > p.BitCount {
		return p.BitCount
	}
	return cpl
}

// String returns the prefix's bits as a string of '0' and '1' characters. The
// empty string denotes the whole name space.
func (p Prefix) String() string {
	res := make([]byte, p.BitCount)
	for i := uint(0); i < p.BitCount; i++ {
		res[i] = '0' + p.Bits.Bit(i)
	}
	return string(res)
}

func truncate(name Name, bitCount uint) Name {
	fullBytes := bitCount / 8
	rem := bitCount % 8
	if rem != 0 {
		name[fullBytes] &= 0xFF << (8 - rem)
		fullBytes++
	}
	for i := fullBytes; i < NameLen; i++ {
		name[i] = 0
	}
	return name
}
