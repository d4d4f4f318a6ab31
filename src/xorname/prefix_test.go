package xorname

import "testing"

func parsePrefix(t *testing.T, s string) Prefix {
	t.Helper()
	p, err := ParsePrefix(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParsePrefix(t *testing.T) {
	p := parsePrefix(t, "101")

	if p.Len() != 3 {
		t.Fatalf("prefix length should be 3, not %d", p.Len())
	}
	if s := p.String(); s != "101" {
		t.Fatalf("prefix should round-trip to 101, not %s", s)
	}

	if _, err := ParsePrefix("10x"); err == nil {
		t.Fatal("ParsePrefix should reject non-binary characters")
	}
}

func TestEmptyPrefixMatchesEverything(t *testing.T) {
	root := parsePrefix(t, "")

	names := []Name{
		{},
		nameFromBytes(t, 0xFF, 0xFF),
		nameFromBytes(t, 0x55),
	}
	for _, n := range names {
		if !root.Matches(n) {
			t.Fatalf("empty prefix should match %v", n)
		}
	}
}

func TestPrefixMatches(t *testing.T) {
	p := parsePrefix(t, "10")

	if !p.Matches(nameFromBytes(t, 0x80)) {
		t.Fatal("prefix 10 should match 0x80")
	}
	if !p.Matches(nameFromBytes(t, 0xBF)) {
		t.Fatal("prefix 10 should match 0xBF")
	}
	if p.Matches(nameFromBytes(t, 0xC0)) {
		t.Fatal("prefix 10 should not match 0xC0")
	}
	if p.Matches(nameFromBytes(t, 0x40)) {
		t.Fatal("prefix 10 should not match 0x40")
	}
}

func TestPrefixNesting(t *testing.T) {
	root := parsePrefix(t, "")
	zero := parsePrefix(t, "0")
	zeroOne := parsePrefix(t, "01")
	one := parsePrefix(t, "1")

	if !root.IsAncestorOf(zeroOne) {
		t.Fatal("root should be an ancestor of 01")
	}
	if !zero.IsAncestorOf(zeroOne) {
		t.Fatal("0 should be an ancestor of 01")
	}
	if zeroOne.IsAncestorOf(zero) {
		t.Fatal("01 should not be an ancestor of 0")
	}
	if !zero.IsCompatibleWith(zeroOne) || !zeroOne.IsCompatibleWith(zero) {
		t.Fatal("nested prefixes should be compatible")
	}
	if !zero.IsDisjointFrom(one) {
		t.Fatal("0 and 1 should be disjoint")
	}
	if zero.IsDisjointFrom(zeroOne) {
		t.Fatal("0 and 01 should not be disjoint")
	}
}

func TestSplit(t *testing.T) {
	p := parsePrefix(t, "1")

	zero, one := p.Split()

	if zero.String() != "10" || one.String() != "11" {
		t.Fatalf("children should be 10 and 11, not %s and %s", zero, one)
	}
	if zero.Len() != p.Len()+1 || one.Len() != p.Len()+1 {
		t.Fatal("split should lengthen the prefix by exactly one bit")
	}
	if !zero.IsDisjointFrom(one) {
		t.Fatal("children should be disjoint")
	}
	if !p.IsAncestorOf(zero) || !p.IsAncestorOf(one) {
		t.Fatal("parent should be an ancestor of both children")
	}

	// Idempotence: same parent, same children.
	zero2, one2 := p.Split()
	if !zero.Equal(zero2) || !one.Equal(one2) {
		t.Fatal("Split should be deterministic")
	}
}

func TestPrefixBounds(t *testing.T) {
	p := parsePrefix(t, "10")

	lower := p.LowerBound()
	upper := p.UpperBound()

	if !p.Matches(lower) || !p.Matches(upper) {
		t.Fatal("bounds should match the prefix")
	}
	if lower.Cmp(upper) >= 0 {
		t.Fatal("lower bound should sort before upper bound")
	}
	if lower[0] != 0x80 || upper[0] != 0xBF {
		t.Fatalf("bounds should be 0x80.. and 0xBF.., not %X and %X", lower[0], upper[0])
	}
}

func TestCommonPrefixLenWith(t *testing.T) {
	p := parsePrefix(t, "10")

	if cpl := p.CommonPrefixLenWith(nameFromBytes(t, 0xFF)); cpl != 1 {
		t.Fatalf("0xFF shares 1 bit with prefix 10, not %d", cpl)
	}
	if cpl := p.CommonPrefixLenWith(nameFromBytes(t, 0xBF)); cpl != 2 {
		t.Fatalf("0xBF shares the full prefix, got %d", cpl)
	}
	if cpl := p.CommonPrefixLenWith(nameFromBytes(t, 0x00)); cpl != 0 {
		t.Fatalf("0x00 shares 0 bits with prefix 10, not %d", cpl)
	}
}

func TestNewPrefixCanonicalizesTrailingBits(t *testing.T) {
	noisy := nameFromBytes(t, 0xFF, 0xFF)

	p := NewPrefix(noisy, 4)
	q := NewPrefix(nameFromBytes(t, 0xF0), 4)

	if !p.Equal(q) {
		t.Fatal("prefixes with the same leading bits should be equal")
	}
}

func TestExtendedStopsAtFullLength(t *testing.T) {
	name := Name{}
	for i := range name {
		name[i] = 0xAA
	}
	p := NewPrefix(name, NameBits)

	if q := p.Extended(1); !q.Equal(p) {
		t.Fatal("a full-length prefix should not grow")
	}
	if q := p.Extended(0); q.Len() != NameBits {
		t.Fatalf("extension past %d bits should keep the length, got %d", NameBits, q.Len())
	}
}
