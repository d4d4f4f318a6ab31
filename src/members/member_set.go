package members

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/xornet-io/xornet/src/common"
	"github.com/xornet-io/xornet/src/crypto"
	"github.com/xornet-io/xornet/src/xorname"
)

// MemberSet is an ordered set of Members, sorted by Name. It is the form in
// which a section's elders are held.
type MemberSet struct {
	Members  []*Member                `json:"members"`
	ByName   map[xorname.Name]*Member `json:"-"`
	ByPubKey map[string]*Member       `json:"-"`

	//cached values
	hash   []byte
	hex    string
	quorum *int
}

/* Constructors */

// NewMemberSet creates a new MemberSet from a list of Members.
func NewMemberSet(memberList []*Member) *MemberSet {
	sorted := make([]*Member, len(memberList))
	copy(sorted, memberList)
	sort.Sort(ByName(sorted))

	memberSet := &MemberSet{
		ByName:   make(map[xorname.Name]*Member),
		ByPubKey: make(map[string]*Member),
	}

	for _, member := range sorted {
		memberSet.ByName[member.Name] = member
		memberSet.ByPubKey[member.PubKeyString()] = member
	}

	memberSet.Members = sorted

	return memberSet
}

// WithNewMember returns a new MemberSet with a list of members including the
// new one.
func (memberSet *MemberSet) WithNewMember(member *Member) *MemberSet {
	members := memberSet.Members

	//don't add it if it already exists
	if _, ok := memberSet.ByName[member.Name]; !ok {
		members = append(members, member)
	}

	return NewMemberSet(members)
}

// WithRemovedMember returns a new MemberSet with a list of members excluding
// the provided one.
func (memberSet *MemberSet) WithRemovedMember(member *Member) *MemberSet {
	members := []*Member{}
	for _, m := range memberSet.Members {
		if m.Name != member.Name {
			members = append(members, m)
		}
	}
	return NewMemberSet(members)
}

/* ToSlice Methods */

// Names returns the MemberSet's sorted slice of Names.
func (memberSet *MemberSet) Names() []xorname.Name {
	res := []xorname.Name{}

	for _, member := range memberSet.Members {
		res = append(res, member.Name)
	}

	return res
}

// PubKeys returns the MemberSet's slice of public keys.
func (memberSet *MemberSet) PubKeys() []string {
	res := []string{}

	for _, member := range memberSet.Members {
		res = append(res, member.PubKeyString())
	}

	return res
}

/* Utilities */

// Len returns the number of Members in the MemberSet.
func (memberSet *MemberSet) Len() int {
	return len(memberSet.ByName)
}

// Contains returns whether a member of that Name is in the set.
func (memberSet *MemberSet) Contains(name xorname.Name) bool {
	_, ok := memberSet.ByName[name]
	return ok
}

// ClosestTo returns up to count members ordered by XOR distance to the
// target, smaller Name first among equals.
func (memberSet *MemberSet) ClosestTo(target xorname.Name, count int) []*Member {
	sorted := make([]*Member, len(memberSet.Members))
	copy(sorted, memberSet.Members)

	sort.SliceStable(sorted, func(i, j int) bool {
		if xorname.CloserTo(target, sorted[i].Name, sorted[j].Name) {
			return true
		}
		if xorname.CloserTo(target, sorted[j].Name, sorted[i].Name) {
			return false
		}
		return sorted[i].Name.Cmp(sorted[j].Name) < 0
	})

	if count > len(sorted) {
		count = len(sorted)
	}

	return sorted[:count]
}

// Hash uniquely identifies a MemberSet. It is computed by hashing (SHA256)
// the members' public keys together, one by one, in Name order.
func (memberSet *MemberSet) Hash() ([]byte, error) {
	if len(memberSet.hash) == 0 {
		hash := []byte{}
		for _, m := range memberSet.Members {
			pk := m.PubKeyBytes()
			hash = crypto.SimpleHashFromTwoHashes(hash, pk)
		}
		memberSet.hash = hash
	}
	return memberSet.hash, nil
}

// Hex is the hexadecimal representation of Hash.
func (memberSet *MemberSet) Hex() string {
	if len(memberSet.hex) == 0 {
		hash, _ := memberSet.Hash()
		memberSet.hex = common.EncodeToString(hash)
	}
	return memberSet.hex
}

// Quorum returns the number of members that form a strong majority (+2/3) in
// the MemberSet.
func (memberSet *MemberSet) Quorum() int {
	if memberSet.quorum == nil {
		val := 2*memberSet.Len()/3 + 1
		memberSet.quorum = &val
	}
	return *memberSet.quorum
}

// Marshal marshals the member list.
func (memberSet *MemberSet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(memberSet.Members); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ByName implements sort.Interface for members based on the Name field.
type ByName []*Member

func (a ByName) Len() int      { return len(a) }
func (a ByName) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a ByName) Less(i, j int) bool {
	return a[i].Name.Cmp(a[j].Name) < 0
}
