// Package xornet glues the core together: configuration, key material,
// bootstrap members, snapshot store, transport and node. It is the public
// entry point for embedding a node in another Go program; the CLI in
// cmd/xornet is a thin wrapper around it.
package xornet
