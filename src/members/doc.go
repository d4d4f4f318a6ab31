// Package members defines network participants and immutable sets of them.
// A Member is placed in the name space by its Name, which is derived from its
// public key unless relocation has assigned it a different one. MemberSet
// follows a copy-on-write discipline: the With* methods return new sets and
// never mutate the receiver, so a set handed to a reader stays valid.
package members
