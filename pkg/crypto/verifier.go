package crypto

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/evidentsys/evident/pkg/contracts"
)

// Verify verifies a hex-encoded signature against a hex-encoded public key.
func Verify(pubKeyHex, sigHex string, data []byte) (bool, error) {
	pubKey, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return false, fmt.Errorf("invalid public key hex: %w", err)
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return false, fmt.Errorf("invalid public key size")
	}
	return ed25519.Verify(ed25519.PublicKey(pubKey), data, sig), nil
}

// VerifyReceipt validates a receipt's signature against the given
// public key. A missing or malformed signature is an error distinct
// from a clean false (valid encoding, wrong signature).
func VerifyReceipt(pubKey ed25519.PublicKey, r *contracts.Receipt) (bool, error) {
	if r.Signature == "" {
		return false, fmt.Errorf("missing signature")
	}
	sig, err := hex.DecodeString(r.Signature)
	if err != nil {
		return false, fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return false, fmt.Errorf("invalid signature size: %d", len(sig))
	}
	payload := CanonicalizeReceipt(r)
	return ed25519.Verify(pubKey, []byte(payload), sig), nil
}
