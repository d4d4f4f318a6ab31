// Package section maintains the authoritative elder set for one name-space
// prefix and decides when that prefix must split. Transitions are applied to
// membership changes that have already been approved by the section's elder
// quorum; the consensus mechanism that approves them lives outside this core.
// Every transition that changes the elder set extends the section's proof
// chain, signed by the outgoing authority.
package section
