package common

import (
	"encoding/hex"
	"fmt"
)

// EncodeToString renders bytes as uppercase hex with a 0X prefix. Public keys
// appear in this form in members.json, genesis.pub and log fields.
func EncodeToString(hexBytes []byte) string {
	return fmt.Sprintf("0X%X", hexBytes)
}

// DecodeFromString converts a 0X-prefixed hex string back to bytes. Strings
// shorter than the prefix are an error, not a panic.
func DecodeFromString(hexString string) ([]byte, error) {
	if len(hexString) < 2 {
		return nil, fmt.Errorf("hex string too short: %q", hexString)
	}
	return hex.DecodeString(hexString[2:])
}
