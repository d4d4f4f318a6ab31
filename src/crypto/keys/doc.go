// Package keys provides wrappers around the standard library's ECDSA keys,
// fixing the elliptic curve to secp256k1. Both member identity keys and
// section authority keys are of this type.
package keys
