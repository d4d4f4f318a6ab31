// Package threshold is the signing collaborator of the routing core. A
// section's authority key is an opaque capability held here; elders
// contribute individual signature shares over a digest, and once a quorum of
// shares has accumulated the authority emits the single signature that goes
// into the proof chain. The core never touches raw secret key material.
package threshold
