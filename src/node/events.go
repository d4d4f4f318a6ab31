package node

import (
	"bytes"
	"fmt"

	"github.com/ugorji/go/codec"
	"github.com/xornet-io/xornet/src/members"
	"github.com/xornet-io/xornet/src/xorname"
)

// MembershipEventType tags the approved membership changes the node consumes.
// Approval itself happens in the section's elder quorum, outside this core;
// by the time an event reaches the node it only has to be applied.
type MembershipEventType int

const (
	// ElderAdded admits an approved candidate into the local section.
	ElderAdded MembershipEventType = iota

	// ElderRemoved drops an elder on churn.
	ElderRemoved

	// MemberRelocated reassigns a member to a new name, usually under another
	// section's prefix. It plays as a removal here and a candidacy there.
	MemberRelocated
)

// String ...
func (t MembershipEventType) String() string {
	switch t {
	case ElderAdded:
		return "ElderAdded"
	case ElderRemoved:
		return "ElderRemoved"
	case MemberRelocated:
		return "MemberRelocated"
	default:
		return "Unknown"
	}
}

// MembershipEvent is one approved membership change.
type MembershipEvent struct {
	Type MembershipEventType

	// Member is the subject of an ElderAdded or MemberRelocated event.
	Member *members.Member

	// Name identifies the subject of an ElderRemoved event.
	Name xorname.Name

	// DstName is the member's new name for a MemberRelocated event.
	DstName xorname.Name
}

func (e MembershipEvent) String() string {
	switch e.Type {
	case ElderRemoved:
		return fmt.Sprintf("%s(%s)", e.Type, e.Name)
	case MemberRelocated:
		if e.Member == nil {
			return fmt.Sprintf("%s(?)", e.Type)
		}
		return fmt.Sprintf("%s(%s -> %s)", e.Type, e.Member.Name, e.DstName)
	default:
		if e.Member == nil {
			return fmt.Sprintf("%s(?)", e.Type)
		}
		return fmt.Sprintf("%s(%s)", e.Type, e.Member.Name)
	}
}

// Valid checks that a decoded event carries the fields its type needs. Events
// straight off the wire are not trusted to be well formed.
func (e MembershipEvent) Valid() error {
	switch e.Type {
	case ElderAdded, MemberRelocated:
		if e.Member == nil {
			return fmt.Errorf("%s event without a member", e.Type)
		}
	case ElderRemoved:
	default:
		return fmt.Errorf("unknown membership event type %d", int(e.Type))
	}
	return nil
}

// Marshal returns the canonical JSON encoding of the event. Proposals hash
// this encoding, so it has to be deterministic.
func (e MembershipEvent) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(e); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalMembershipEvent decodes an event produced by Marshal.
func UnmarshalMembershipEvent(data []byte) (MembershipEvent, error) {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	e := MembershipEvent{}
	if err := dec.Decode(&e); err != nil {
		return MembershipEvent{}, err
	}

	return e, nil
}
