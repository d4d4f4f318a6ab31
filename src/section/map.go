package section

import (
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/xorname"
)

// Map is a node's knowledge of the network: its own section plus the remote
// sections it has learned about. The local section pointer is the only
// mutable reference shared between the node's event loop and concurrent
// route computations, hence the exclusive-writer, many-reader lock; the
// Section values themselves are immutable.
type Map struct {
	sync.RWMutex
	local  *Section
	remote map[string]*Section
}

// NewMap creates a Map around the local section.
func NewMap(local *Section) *Map {
	return &Map{
		local:  local,
		remote: make(map[string]*Section),
	}
}

// Local returns the local section.
func (m *Map) Local() *Section {
	m.RLock()
	defer m.RUnlock()

	return m.local
}

// SetLocal replaces the local section after a membership transition. Remote
// knowledge made stale by a local split is dropped.
func (m *Map) SetLocal(s *Section) {
	m.Lock()
	defer m.Unlock()

	m.local = s

	for key, known := range m.remote {
		if !known.Prefix.IsDisjointFrom(s.Prefix) {
			delete(m.remote, key)
		}
	}
}

// Update records knowledge of a remote section. A remote section replaces any
// known ancestor of its prefix, since sections only ever split: the longer
// prefix is the newer knowledge. An incoming ancestor of already-known finer
// sections is ignored for the same reason. Updates overlapping the local
// prefix are rejected; the node is authoritative for its own partition.
func (m *Map) Update(s *Section) error {
	m.Lock()
	defer m.Unlock()

	if !s.Prefix.IsDisjointFrom(m.local.Prefix) {
		return common.NewCoreErr(common.WrongSection,
			fmt.Sprintf("prefix %q overlaps local section %q", s.Prefix, m.local.Prefix))
	}

	key := s.Prefix.String()

	if known, ok := m.remote[key]; ok && known.Epoch >= s.Epoch {
		return nil
	}

	for knownKey, known := range m.remote {
		if known.Prefix.IsAncestorOf(s.Prefix) && !known.Prefix.Equal(s.Prefix) {
			delete(m.remote, knownKey)
		} else if s.Prefix.IsAncestorOf(known.Prefix) && !known.Prefix.Equal(s.Prefix) {
			// already know finer partitions of this space
			return nil
		}
	}

	m.remote[key] = s

	return nil
}

// Remove forgets a remote section.
func (m *Map) Remove(prefix xorname.Prefix) {
	m.Lock()
	defer m.Unlock()

	delete(m.remote, prefix.String())
}

// Remotes returns the known remote sections, ordered by prefix.
func (m *Map) Remotes() []*Section {
	m.RLock()
	defer m.RUnlock()

	res := []*Section{}
	for _, s := range m.remote {
		res = append(res, s)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Prefix.String() < res[j].Prefix.String()
	})

	return res
}

// Sections returns every known section, local included, ordered by prefix.
func (m *Map) Sections() []*Section {
	res := append(m.Remotes(), m.Local())

	sort.Slice(res, func(i, j int) bool {
		return res[i].Prefix.String() < res[j].Prefix.String()
	})

	return res
}

// SectionFor returns the known section owning the given name.
func (m *Map) SectionFor(name xorname.Name) (*Section, bool) {
	for _, s := range m.Sections() {
		if s.Prefix.Matches(name) {
			return s, true
		}
	}
	return nil, false
}

// CheckInvariant verifies the core consistency property over the known
// sections: prefixes pairwise disjoint, and their union covering the whole
// name space with no gaps. Partial knowledge of a large network fails the
// coverage half; the property holds for a node that knows the full network,
// which is what tests and simulations assert.
func (m *Map) CheckInvariant() error {
	sections := m.Sections()

	for i := 0; i < len(sections); i++ {
		for j := i + 1; j < len(sections); j++ {
			if !sections[i].Prefix.IsDisjointFrom(sections[j].Prefix) {
				return fmt.Errorf("prefixes %q and %q overlap",
					sections[i].Prefix, sections[j].Prefix)
			}
		}
	}

	// Each prefix of length L covers 2^(NameBits-L) names; the partition is
	// complete when the shares sum to 2^NameBits exactly.
	total := new(big.Int)
	one := big.NewInt(1)
	for _, s := range sections {
		share := new(big.Int).Lsh(one, xorname.NameBits-s.Prefix.Len())
		total.Add(total, share)
	}

	full := new(big.Int).Lsh(one, xorname.NameBits)
	if total.Cmp(full) != 0 {
		return fmt.Errorf("prefixes cover %s of %s names", total, full)
	}

	return nil
}
