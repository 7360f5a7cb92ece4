package wallet

import (
	"crypto/rand"
	"encoding/hex"
)

// NewNonce mints a single-use random challenge value.
func NewNonce() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
