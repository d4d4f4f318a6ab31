// Package config defines the configuration for a xornet node.
//
// Regardless of how xornet is started, directly from Go code or as a
// standalone process from the command line, it uses the Config object defined
// in this package to store and forward configuration options. On top of these
// configuration options, xornet relies on a data directory, defined by
// Config.DataDir, where it expects to find a few additional files:
//
//  priv_key // a plain text file containing the raw private key (cf. xornet keygen).
//  members.json // a JSON file containing the bootstrap list of members.
package config
