// Package xorname defines the 256-bit name space in which every node and
// every piece of data is placed, the XOR distance metric used for routing
// proximity, and the bit-prefixes that partition the space into sections.
package xorname
