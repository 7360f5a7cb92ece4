package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/openlancer/lancer/internal/application/ports"
)

// Verifier recovers signer addresses from EIP-191 personal_sign
// signatures, the scheme browser wallets use for plain-text challenges.
type Verifier struct{}

func NewVerifier() *Verifier { return &Verifier{} }

// RecoverAddress returns the checksummed address that produced the
// signature over message.
func (v *Verifier) RecoverAddress(message, signature string) (string, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", errors.New("signature must be 65 bytes")
	}
	// Wallets emit V as 27/28; go-ethereum expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(personalSignDigest(message), sig)
	if err != nil {
		return "", fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// personalSignDigest hashes message with the EIP-191 prefix, matching
// what eth_sign/personal_sign actually signs.
func personalSignDigest(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

// IsValidAddress reports whether s is a well-formed hex address.
func IsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// Ensure Verifier implements ports.SignatureVerifier.
var _ ports.SignatureVerifier = (*Verifier)(nil)
