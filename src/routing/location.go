package routing

import (
	"fmt"

	"github.com/xornet-io/xornet/src/xorname"
)

// LocationKind tags the variants of a message location.
type LocationKind int

const (
	// NodeLocation addresses one specific name.
	NodeLocation LocationKind = iota
	// SectionLocation addresses the elders of the section owning a prefix.
	SectionLocation
	// OwnSectionLocation addresses the sender's or receiver's own section.
	OwnSectionLocation
)

// Location is a tagged descriptor of a message endpoint. It is built per
// message and never persisted. SrcLocation and DstLocation share the
// representation; the distinction is which side of the envelope they ride on.
type Location struct {
	Kind   LocationKind
	Name   xorname.Name
	Prefix xorname.Prefix
}

// SrcLocation describes where a message comes from.
type SrcLocation = Location

// DstLocation describes where a message is going.
type DstLocation = Location

// NodeAt addresses a single name.
func NodeAt(name xorname.Name) Location {
	return Location{Kind: NodeLocation, Name: name}
}

// SectionAt addresses the section owning a prefix.
func SectionAt(prefix xorname.Prefix) Location {
	return Location{Kind: SectionLocation, Prefix: prefix}
}

// OwnSection addresses the local section.
func OwnSection() Location {
	return Location{Kind: OwnSectionLocation}
}

// TargetName reduces the location to the name routing steers toward. An
// OwnSectionLocation resolves against the given local prefix.
func (l Location) TargetName(local xorname.Prefix) xorname.Name {
	switch l.Kind {
	case NodeLocation:
		return l.Name
	case SectionLocation:
		return l.Prefix.LowerBound()
	default:
		return local.LowerBound()
	}
}

func (l Location) String() string {
	switch l.Kind {
	case NodeLocation:
		return fmt.Sprintf("node(%s)", l.Name)
	case SectionLocation:
		return fmt.Sprintf("section(%s)", l.Prefix)
	default:
		return "own-section"
	}
}
