package members

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xornet-io/xornet/src/crypto/keys"
	"github.com/xornet-io/xornet/src/xorname"
)

func initMembers(n int, t *testing.T) []*Member {
	t.Helper()
	memberList := []*Member{}
	for i := 0; i < n; i++ {
		key, err := keys.GenerateECDSAKey()
		if err != nil {
			t.Fatal(err)
		}
		member := NewMember(keys.PublicKeyHex(&key.PublicKey), "addr", "member")
		memberList = append(memberList, member)
	}
	return memberList
}

func TestMemberNameDerivedFromPubKey(t *testing.T) {
	member := initMembers(1, t)[0]

	expected := xorname.FromPublicKey(member.PubKeyBytes())
	if member.Name != expected {
		t.Fatal("member name should be the hash of its public key")
	}

	if member.ID() == 0 {
		t.Fatal("member ID should be computed")
	}
}

func TestWithNameKeepsKeys(t *testing.T) {
	member := initMembers(1, t)[0]

	var relocated xorname.Name
	relocated[0] = 0xAB

	moved := member.WithName(relocated)

	if moved.Name != relocated {
		t.Fatal("WithName should place the member at the new name")
	}
	if moved.PubKeyHex != member.PubKeyHex || moved.NetAddr != member.NetAddr {
		t.Fatal("WithName should not change keys or address")
	}
	if member.Name == relocated {
		t.Fatal("WithName should not mutate the original member")
	}
}

func TestMemberSetIsSortedByName(t *testing.T) {
	memberList := initMembers(5, t)

	set := NewMemberSet(memberList)

	for i := 1; i < len(set.Members); i++ {
		if set.Members[i-1].Name.Cmp(set.Members[i].Name) >= 0 {
			t.Fatal("members should be sorted by name")
		}
	}
}

func TestWithNewAndRemovedMember(t *testing.T) {
	memberList := initMembers(3, t)

	set := NewMemberSet(memberList[:2])

	grown := set.WithNewMember(memberList[2])
	if grown.Len() != 3 {
		t.Fatalf("grown set should have 3 members, not %d", grown.Len())
	}
	if set.Len() != 2 {
		t.Fatal("WithNewMember should not mutate the original set")
	}

	// adding an existing member changes nothing
	same := grown.WithNewMember(memberList[0])
	if same.Len() != 3 {
		t.Fatal("adding an existing member should be a no-op")
	}

	shrunk := grown.WithRemovedMember(memberList[0])
	if shrunk.Len() != 2 {
		t.Fatalf("shrunk set should have 2 members, not %d", shrunk.Len())
	}
	if shrunk.Contains(memberList[0].Name) {
		t.Fatal("removed member should not be in the set")
	}
	if !grown.Contains(memberList[0].Name) {
		t.Fatal("WithRemovedMember should not mutate the original set")
	}
}

func TestQuorum(t *testing.T) {
	expected := map[int]int{1: 1, 3: 3, 4: 3, 6: 5, 7: 5}

	for n, q := range expected {
		set := NewMemberSet(initMembers(n, t))
		if set.Quorum() != q {
			t.Fatalf("quorum of %d members should be %d, not %d", n, q, set.Quorum())
		}
	}
}

func TestHashChangesWithMembership(t *testing.T) {
	memberList := initMembers(3, t)

	set := NewMemberSet(memberList)
	other := set.WithRemovedMember(memberList[1])

	if set.Hex() == other.Hex() {
		t.Fatal("different membership should hash differently")
	}

	// Hash only depends on contents, not construction order.
	reversed := []*Member{memberList[2], memberList[1], memberList[0]}
	if NewMemberSet(reversed).Hex() != set.Hex() {
		t.Fatal("hash should be independent of input order")
	}
}

func TestClosestTo(t *testing.T) {
	memberList := initMembers(7, t)
	set := NewMemberSet(memberList)

	var target xorname.Name

	closest := set.ClosestTo(target, 4)
	if len(closest) != 4 {
		t.Fatalf("should return 4 members, not %d", len(closest))
	}

	for i := 1; i < len(closest); i++ {
		if xorname.CloserTo(target, closest[i].Name, closest[i-1].Name) {
			t.Fatal("ClosestTo should order members by distance to the target")
		}
	}

	// Determinism.
	again := set.ClosestTo(target, 4)
	if !reflect.DeepEqual(closest, again) {
		t.Fatal("ClosestTo should be deterministic")
	}

	all := set.ClosestTo(target, 100)
	if len(all) != set.Len() {
		t.Fatal("count larger than the set should return the whole set")
	}
}

func TestJSONMemberSetRoundTrip(t *testing.T) {
	dir := filepath.Join("test_data", "members")
	os.RemoveAll(dir)
	os.MkdirAll(dir, 0777)
	defer os.RemoveAll("test_data")

	memberList := initMembers(3, t)

	store := NewJSONMemberSet(dir)
	if err := store.Write(memberList); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.MemberSet()
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Len() != 3 {
		t.Fatalf("loaded set should have 3 members, not %d", loaded.Len())
	}
	if loaded.Hex() != NewMemberSet(memberList).Hex() {
		t.Fatal("loaded set should hash like the original")
	}
}
