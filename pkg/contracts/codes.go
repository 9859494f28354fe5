package contracts

import "fmt"

// Status is the closed set of receipt outcomes.
type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusDenied   Status = "DENIED"
	StatusError    Status = "ERROR"
)

// ReasonCode is the closed enumeration explaining a receipt's status.
// ALLOW is the only non-denial, non-error code.
type ReasonCode string

const (
	ReasonAllow                ReasonCode = "ALLOW"
	ReasonDenyToolNotFound     ReasonCode = "DENY_TOOL_NOT_FOUND"
	ReasonDenySchemaMismatch   ReasonCode = "DENY_SCHEMA_MISMATCH"
	ReasonDenyOutputDrift      ReasonCode = "DENY_OUTPUT_DRIFT"
	ReasonDenyBudgetExceeded   ReasonCode = "DENY_BUDGET_EXCEEDED"
	ReasonDenyApprovalRequired ReasonCode = "DENY_APPROVAL_REQUIRED"
	ReasonDenyApprovalTimeout  ReasonCode = "DENY_APPROVAL_TIMEOUT"
	ReasonDenySandboxTrap      ReasonCode = "DENY_SANDBOX_TRAP"
	ReasonDenyGasExhaustion    ReasonCode = "DENY_GAS_EXHAUSTION"
	ReasonDenyTimeLimit        ReasonCode = "DENY_TIME_LIMIT"
	ReasonDenyMemoryLimit      ReasonCode = "DENY_MEMORY_LIMIT"
	ReasonDenyPolicyViolation  ReasonCode = "DENY_POLICY_VIOLATION"
	ReasonDenyTrustKeyRevoked  ReasonCode = "DENY_TRUST_KEY_REVOKED"
	ReasonDenyIdempotencyDup   ReasonCode = "DENY_IDEMPOTENCY_DUPLICATE"
	ReasonErrorInternal        ReasonCode = "ERROR_INTERNAL"
)

var statuses = map[Status]bool{
	StatusApproved: true,
	StatusDenied:   true,
	StatusError:    true,
}

var reasonCodes = map[ReasonCode]bool{
	ReasonAllow:                true,
	ReasonDenyToolNotFound:     true,
	ReasonDenySchemaMismatch:   true,
	ReasonDenyOutputDrift:      true,
	ReasonDenyBudgetExceeded:   true,
	ReasonDenyApprovalRequired: true,
	ReasonDenyApprovalTimeout:  true,
	ReasonDenySandboxTrap:      true,
	ReasonDenyGasExhaustion:    true,
	ReasonDenyTimeLimit:        true,
	ReasonDenyMemoryLimit:      true,
	ReasonDenyPolicyViolation:  true,
	ReasonDenyTrustKeyRevoked:  true,
	ReasonDenyIdempotencyDup:   true,
	ReasonErrorInternal:        true,
}

// ParseStatus maps a raw string to the closed Status set. An
// unrecognized value is an explicit error, never a silently accepted
// string.
func ParseStatus(s string) (Status, error) {
	if statuses[Status(s)] {
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// ParseReasonCode maps a raw string to the closed ReasonCode set.
func ParseReasonCode(s string) (ReasonCode, error) {
	if reasonCodes[ReasonCode(s)] {
		return ReasonCode(s), nil
	}
	return "", fmt.Errorf("unknown reason code %q", s)
}

// IsDenial reports whether the code marks a denied decision.
func (rc ReasonCode) IsDenial() bool {
	return len(rc) > 5 && rc[:5] == "DENY_"
}

// IsError reports whether the code marks a kernel-side error.
func (rc ReasonCode) IsError() bool {
	return len(rc) > 6 && rc[:6] == "ERROR_"
}
