// Package contracts defines the wire-level data model shared by the
// verification engine, the evidence pack format, and the kernel client.
package contracts

// GenesisPrevHash is the sentinel prev_hash carried by the first receipt
// of every session chain.
const GenesisPrevHash = "GENESIS"

// Receipt is an immutable record of one governed decision outcome,
// hash-chained to its predecessor within a session.
//
// blob_hash covers the JCS-canonicalized hashed payload (see
// crypto.HashedPayload); prev_hash is the blob_hash of the preceding
// receipt in the same session, or GenesisPrevHash for the first one.
// Every field here is a claim made by the issuing kernel — the verifier
// recomputes and cross-checks rather than trusting any of them.
type Receipt struct {
	ReceiptID    string `json:"receipt_id"`
	DecisionID   string `json:"decision_id"`
	EffectID     string `json:"effect_id"`
	Status       string `json:"status"`
	ReasonCode   string `json:"reason_code"`
	OutputHash   string `json:"output_hash"`
	BlobHash     string `json:"blob_hash"`
	PrevHash     string `json:"prev_hash"`
	LamportClock uint64 `json:"lamport_clock"`
	Signature    string `json:"signature"`
	Principal    string `json:"principal"`
	Timestamp    string `json:"timestamp"`
}

// Session groups receipts causally. ReceiptCount and LastLamportClock
// are claims that must match the actual chain observed in the receipt
// sequence for the session.
type Session struct {
	SessionID        string `json:"session_id"`
	CreatedAt        string `json:"created_at"`
	ReceiptCount     int    `json:"receipt_count"`
	LastLamportClock uint64 `json:"last_lamport_clock"`
}

// VerificationResult is the wire form of a verification report, shared
// by the local engine and the kernel's verify-bundle endpoint so both
// produce comparable verdicts for the same bundle.
type VerificationResult struct {
	Verdict          string            `json:"verdict"`
	Checks           map[string]string `json:"checks"`
	ReceiptsExamined int               `json:"receipts_examined"`
	Errors           []string          `json:"errors"`
}

// ErrorDetail is the structured error body returned by the kernel API.
type ErrorDetail struct {
	Message    string         `json:"message"`
	Type       string         `json:"type"`
	Code       string         `json:"code"`
	ReasonCode ReasonCode     `json:"reason_code"`
	Details    map[string]any `json:"details,omitempty"`
}

// ErrorEnvelope wraps ErrorDetail the way the kernel serializes it.
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}
