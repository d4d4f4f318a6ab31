package members

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"
	"sync"
)

const jsonMemberSetPath = "members.json"

// JSONMemberSet provides membership persistence on disk in the form of a JSON
// file. It supplies a node's initial knowledge of its section's members.
type JSONMemberSet struct {
	l    sync.Mutex
	path string
}

// NewJSONMemberSet creates a new JSONMemberSet with reference to a base
// directory where the JSON file resides.
func NewJSONMemberSet(base string) *JSONMemberSet {
	return &JSONMemberSet{
		path: filepath.Join(base, jsonMemberSetPath),
	}
}

// MemberSet parses the underlying JSON file and returns the corresponding
// MemberSet.
func (j *JSONMemberSet) MemberSet() (*MemberSet, error) {
	j.l.Lock()
	defer j.l.Unlock()

	// Read the file
	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	// Check for no members
	if len(buf) == 0 {
		return nil, nil
	}

	// Decode the members
	var memberList []*Member
	dec := json.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&memberList); err != nil {
		return nil, err
	}

	cleanseMembers(memberList)

	return NewMemberSet(memberList), nil
}

// cleanseMembers standardises the public key strings to match the format
// derived from a private key, and recomputes the default pubkey-derived
// names.
func cleanseMembers(memberList []*Member) {
	for i, member := range memberList {
		pubKeyHex := "0X" + strings.TrimPrefix(strings.ToUpper(member.PubKeyHex), "0X")
		memberList[i] = NewMember(pubKeyHex, member.NetAddr, member.Moniker)
	}
}

// Write persists a member list to the JSON file.
func (j *JSONMemberSet) Write(memberList []*Member) error {
	j.l.Lock()
	defer j.l.Unlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(memberList); err != nil {
		return err
	}

	// Write out as JSON
	return ioutil.WriteFile(j.path, buf.Bytes(), 0755)
}
