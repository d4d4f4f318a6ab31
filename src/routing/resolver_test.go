package routing

import (
	"reflect"
	"testing"

	"github.com/xornet-io/xornet/src/chain"
	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/crypto/keys"
	"github.com/xornet-io/xornet/src/members"
	"github.com/xornet-io/xornet/src/section"
	"github.com/xornet-io/xornet/src/xorname"
)

func parsePrefix(s string, t *testing.T) xorname.Prefix {
	t.Helper()
	p, err := xorname.ParsePrefix(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func memberIn(prefix xorname.Prefix, t *testing.T) *members.Member {
	t.Helper()
	for {
		key, err := keys.GenerateECDSAKey()
		if err != nil {
			t.Fatal(err)
		}
		member := members.NewMember(keys.PublicKeyHex(&key.PublicKey), "addr", "member")
		if prefix.Matches(member.Name) {
			return member
		}
	}
}

func sectionAt(prefixStr string, n int, t *testing.T) *section.Section {
	t.Helper()
	prefix := parsePrefix(prefixStr, t)

	memberList := []*members.Member{}
	for i := 0; i < n; i++ {
		memberList = append(memberList, memberIn(prefix, t))
	}

	return section.New(prefix, members.NewMemberSet(memberList),
		chain.NewProofChain(memberList[0].PubKeyBytes()))
}

func initResolver(local *section.Section, remotes []*section.Section, t *testing.T) *Resolver {
	t.Helper()
	m := section.NewMap(local)
	for _, s := range remotes {
		if err := m.Update(s); err != nil {
			t.Fatal(err)
		}
	}
	return NewResolver(m, 0, common.NewTestEntry(t))
}

func TestNextHopsLocalDelivery(t *testing.T) {
	local := sectionAt("0", 3, t)
	resolver := initResolver(local, []*section.Section{sectionAt("1", 3, t)}, t)

	// a name under the local prefix is never forwarded
	route, err := resolver.NextHops(NodeAt(local.Elders.Members[0].Name))
	if err != nil {
		t.Fatal(err)
	}
	if !route.Local || len(route.Hops) != 0 {
		t.Fatal("a destination under the local prefix should resolve locally")
	}

	route, err = resolver.NextHops(OwnSection())
	if err != nil {
		t.Fatal(err)
	}
	if !route.Local {
		t.Fatal("an own-section destination should resolve locally")
	}

	route, err = resolver.NextHops(SectionAt(local.Prefix))
	if err != nil {
		t.Fatal(err)
	}
	if !route.Local {
		t.Fatal("the local section addressed by prefix should resolve locally")
	}
}

func TestNextHopsStrictProgress(t *testing.T) {
	local := sectionAt("0", 3, t)
	ten := sectionAt("10", 3, t)
	eleven := sectionAt("11", 3, t)
	resolver := initResolver(local, []*section.Section{ten, eleven}, t)

	target := eleven.Elders.Members[0].Name

	route, err := resolver.NextHops(NodeAt(target))
	if err != nil {
		t.Fatal(err)
	}
	if route.Local {
		t.Fatal("a foreign destination should not resolve locally")
	}
	if len(route.Hops) != DefaultFanout {
		t.Fatalf("should return %d hops, not %d", DefaultFanout, len(route.Hops))
	}

	// Both remote sections make strict progress, but every member of "11" is
	// closer to the target than any member of "10".
	for _, hop := range route.Hops {
		if !eleven.Prefix.Matches(hop.Name) {
			t.Fatalf("hop %s should be in section %q", hop.Name, eleven.Prefix)
		}
	}

	// Determinism.
	again, err := resolver.NextHops(NodeAt(target))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(route, again) {
		t.Fatal("resolution should be deterministic")
	}
}

func TestNextHopsNoRoute(t *testing.T) {
	local := sectionAt("0", 3, t)
	resolver := initResolver(local, nil, t)

	target := memberIn(parsePrefix("1", t), t).Name

	_, err := resolver.NextHops(NodeAt(target))
	if !common.IsCore(err, common.NoRoute) {
		t.Fatalf("resolution without a strict-progress candidate should fail with NoRoute, got %v", err)
	}
}

func TestNextHopsSectionDestination(t *testing.T) {
	local := sectionAt("0", 3, t)
	one := sectionAt("1", 3, t)
	resolver := initResolver(local, []*section.Section{one}, t)

	route, err := resolver.NextHops(SectionAt(one.Prefix))
	if err != nil {
		t.Fatal(err)
	}
	if route.Local {
		t.Fatal("a foreign section destination should be forwarded")
	}
	for _, hop := range route.Hops {
		if !one.Prefix.Matches(hop.Name) {
			t.Fatal("hops for a section destination should be members of that section")
		}
	}
}

// TestRoutingTerminates simulates a fully partitioned network and checks that
// greedy forwarding reaches the owning section from every start within the
// strict-progress bound.
func TestRoutingTerminates(t *testing.T) {
	prefixes := []string{"000", "001", "010", "011", "100", "101", "110", "111"}

	sections := map[string]*section.Section{}
	for _, p := range prefixes {
		sections[p] = sectionAt(p, 3, t)
	}

	target := sections["110"].Elders.Members[0].Name
	owner := sections["110"]

	for _, start := range prefixes {
		current := sections[start]
		hops := 0

		for !current.Prefix.Matches(target) {
			if hops > xorname.NameBits {
				t.Fatalf("route from %q did not terminate", start)
			}

			remotes := []*section.Section{}
			for p, s := range sections {
				if p != current.Prefix.String() {
					remotes = append(remotes, s)
				}
			}

			route, err := initResolver(current, remotes, t).NextHops(NodeAt(target))
			if err != nil {
				t.Fatal(err)
			}

			next, ok := sections[xorname.NewPrefix(route.Hops[0].Name, 3).String()]
			if !ok {
				t.Fatal("hop should land in a known section")
			}

			if next.Prefix.CommonPrefixLenWith(target) <= current.Prefix.CommonPrefixLenWith(target) {
				t.Fatalf("hop from %q to %q made no progress", current.Prefix, next.Prefix)
			}

			current = next
			hops++
		}

		if current != owner && current.Prefix.String() != "110" {
			t.Fatalf("route from %q ended at %q", start, current.Prefix)
		}
	}
}
