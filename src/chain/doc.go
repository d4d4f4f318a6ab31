// Package chain implements the proof chain: an append-only, linear chain of
// section authority public keys in which every entry is signed by the
// previous entry's key. Any party that trusts one entry can verify every
// later entry by walking forward signatures, without replaying the network's
// membership history.
//
// A ProofChain is a persistent structure: extending it allocates a new node
// pointing at the old chain, so references held by concurrent readers never
// observe a partial extension and need no locking.
package chain
