// Package verify aggregates chain, signature, and completeness checks
// over an evidence pack into a single verification report.
//
// Verification is a pure, read-only computation over the unpacked
// bundle. Every failure is expressed as data in the report, never as a
// process abort: the engine exists to characterize untrusted input
// safely.
package verify

import (
	"fmt"
	"sync"

	"github.com/evidentsys/evident/pkg/chain"
	"github.com/evidentsys/evident/pkg/contracts"
	"github.com/evidentsys/evident/pkg/crypto"
	"github.com/evidentsys/evident/pkg/pack"
	"github.com/evidentsys/evident/pkg/trust"
)

// Verdicts and per-check statuses.
const (
	VerdictPass = "PASS"
	VerdictFail = "FAIL"
)

// Named checks in the report.
const (
	CheckCompleteness = "completeness"
	CheckCausalChain  = "causal_chain"
	CheckSignatures   = "signatures"
)

// sessionResult holds one session's partial results. Sessions are
// independent, so each is verified on its own goroutine and partials
// are concatenated in manifest order afterwards — the report is never
// mutated by concurrent writers.
type sessionResult struct {
	receipts     int
	completeness []string
	causalChain  []string
	signatures   []string
}

// Pack verifies every session in a pack against the trust registry and
// folds the outcomes into one report. The verdict is PASS if and only
// if every check across every session passes; all failures found are
// enumerated, not just the first.
func Pack(p *pack.Pack, registry *trust.Registry) *contracts.VerificationResult {
	results := make([]sessionResult, len(p.SessionIDs))

	var wg sync.WaitGroup
	for i, sessionID := range p.SessionIDs {
		wg.Add(1)
		go func(slot int, id string, declared contracts.Session) {
			defer wg.Done()
			results[slot] = verifySession(id, declared, p.Receipts[id], registry)
		}(i, sessionID, p.Manifest.Sessions[i])
	}
	wg.Wait()

	report := &contracts.VerificationResult{
		Verdict: VerdictPass,
		Checks: map[string]string{
			CheckCompleteness: VerdictPass,
			CheckCausalChain:  VerdictPass,
			CheckSignatures:   VerdictPass,
		},
	}

	if len(p.SessionIDs) == 0 {
		report.Checks[CheckCompleteness] = VerdictFail
		report.Errors = append(report.Errors, "empty pack: manifest declares no sessions")
	}

	for _, res := range results {
		report.ReceiptsExamined += res.receipts
		fold(report, CheckCompleteness, res.completeness)
		fold(report, CheckCausalChain, res.causalChain)
		fold(report, CheckSignatures, res.signatures)
	}

	for _, status := range report.Checks {
		if status != VerdictPass {
			report.Verdict = VerdictFail
			break
		}
	}
	return report
}

func fold(report *contracts.VerificationResult, check string, errs []string) {
	if len(errs) == 0 {
		return
	}
	report.Checks[check] = VerdictFail
	report.Errors = append(report.Errors, errs...)
}

func verifySession(sessionID string, declared contracts.Session, receipts []*contracts.Receipt, registry *trust.Registry) sessionResult {
	res := sessionResult{receipts: len(receipts)}

	// Completeness: the manifest's counts and final clock are claims
	// that must match the chain actually present. A short or empty
	// session is a completeness failure, not tampering.
	if declared.ReceiptCount != len(receipts) {
		res.completeness = append(res.completeness, fmt.Sprintf(
			"session %s: manifest declares %d receipts, pack contains %d",
			sessionID, declared.ReceiptCount, len(receipts)))
	}
	if len(receipts) == 0 {
		res.completeness = append(res.completeness, fmt.Sprintf(
			"session %s: referenced with zero receipts", sessionID))
		return res
	}
	if last := receipts[len(receipts)-1].LamportClock; declared.LastLamportClock != last {
		res.completeness = append(res.completeness, fmt.Sprintf(
			"session %s: manifest declares last_lamport_clock %d, chain ends at %d",
			sessionID, declared.LastLamportClock, last))
	}

	chainReport := chain.VerifySession(sessionID, receipts)
	for _, issue := range chainReport.Issues {
		res.causalChain = append(res.causalChain, fmt.Sprintf("session %s: %s", sessionID, issue))
	}

	for i, r := range receipts {
		if msg := verifySignature(i, r, registry); msg != "" {
			res.signatures = append(res.signatures, fmt.Sprintf("session %s: %s", sessionID, msg))
		}
	}
	return res
}

// verifySignature checks one receipt's signature against its
// principal's registered key. A revoked or unknown principal is a
// distinct failure cause (surfaced with the DENY_TRUST_KEY_REVOKED
// reason code) from a cryptographically invalid signature, which
// indicates tampering.
func verifySignature(index int, r *contracts.Receipt, registry *trust.Registry) string {
	key, status := registry.Lookup(r.Principal)
	switch status {
	case trust.KeyRevoked:
		return fmt.Sprintf("receipt[%d] %s: principal %s key revoked (%s)",
			index, r.ReceiptID, r.Principal, contracts.ReasonDenyTrustKeyRevoked)
	case trust.KeyUnknown:
		return fmt.Sprintf("receipt[%d] %s: principal %s not in trust registry (%s)",
			index, r.ReceiptID, r.Principal, contracts.ReasonDenyTrustKeyRevoked)
	}

	ok, err := crypto.VerifyReceipt(key, r)
	if err != nil {
		return fmt.Sprintf("receipt[%d] %s: %v", index, r.ReceiptID, err)
	}
	if !ok {
		return fmt.Sprintf("receipt[%d] %s: signature invalid for principal %s",
			index, r.ReceiptID, r.Principal)
	}
	return ""
}
