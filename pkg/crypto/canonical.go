package crypto

import (
	"fmt"

	"github.com/evidentsys/evident/pkg/canonicalize"
	"github.com/evidentsys/evident/pkg/contracts"
)

// Signature component separators and prefixes.
const (
	SigSeparator     = ":"
	SigPrefixEd25519 = "ed25519"
)

// HashedPayload returns the subset of receipt fields covered by
// blob_hash. Excluded: blob_hash and signature (derived from this
// payload), prev_hash (chained after it), and timestamp (advisory
// wall-clock time, never an integrity input).
func HashedPayload(r *contracts.Receipt) map[string]any {
	return map[string]any{
		"receipt_id":    r.ReceiptID,
		"decision_id":   r.DecisionID,
		"effect_id":     r.EffectID,
		"status":        r.Status,
		"reason_code":   r.ReasonCode,
		"output_hash":   r.OutputHash,
		"principal":     r.Principal,
		"lamport_clock": r.LamportClock,
	}
}

// ComputeBlobHash recomputes the receipt's content hash over the JCS
// canonicalized hashed payload, in tagged "sha256:<hex>" form.
// Comparison against a stored blob_hash is exact string equality.
func ComputeBlobHash(r *contracts.Receipt) (string, error) {
	hash, err := canonicalize.CanonicalHash(HashedPayload(r))
	if err != nil {
		return "", fmt.Errorf("receipt %s: %w", r.ReceiptID, err)
	}
	return hash, nil
}

// CanonicalizeReceipt creates the canonical string representation of a
// receipt for signing. The signing payload includes prev_hash and
// lamport_clock: a receipt signature attests to the receipt's position
// in its session chain, not only to its decision content.
func CanonicalizeReceipt(r *contracts.Receipt) string {
	return fmt.Sprintf("%s%s%s%s%s%s%s%s%s%s%s%s%s%s%d",
		r.ReceiptID, SigSeparator,
		r.DecisionID, SigSeparator,
		r.EffectID, SigSeparator,
		r.Status, SigSeparator,
		r.ReasonCode, SigSeparator,
		r.OutputHash, SigSeparator,
		r.PrevHash, SigSeparator,
		r.LamportClock)
}
