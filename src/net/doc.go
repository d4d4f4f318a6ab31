// Package net defines the transport boundary of the core. The core only ever
// sends encoded messages to member addresses and consumes connection and
// message events from a single channel; framing, dialing and timeouts belong
// to the transport implementation.
package net
