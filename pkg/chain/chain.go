// Package chain validates ordering and linkage across a session's
// receipt sequence: per-session Lamport clock continuity and the
// prev_hash → blob_hash causal links.
package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evidentsys/evident/pkg/contracts"
	"github.com/evidentsys/evident/pkg/crypto"
)

// IssueKind classifies a chain finding. Continuity kinds stop further
// continuity reporting once the chain is broken; duplicate clocks are
// a structurally distinct class and are always reported in full.
type IssueKind string

const (
	IssueHashMismatch   IssueKind = "hash_mismatch"
	IssueGenesisClock   IssueKind = "genesis_clock"
	IssueGenesisPrev    IssueKind = "genesis_prev_hash"
	IssueClockGap       IssueKind = "clock_gap"
	IssueLinkMismatch   IssueKind = "link_mismatch"
	IssueDuplicateClock IssueKind = "duplicate_clock"
)

// Issue is a single chain finding at a receipt index.
type Issue struct {
	Index     int
	ReceiptID string
	Kind      IssueKind
	Detail    string
}

func (i Issue) String() string {
	return fmt.Sprintf("receipt[%d] %s: %s: %s", i.Index, i.ReceiptID, i.Kind, i.Detail)
}

// Report is the outcome of verifying one session's chain.
type Report struct {
	SessionID string
	Receipts  int
	// FirstBreak is the index of the first continuity failure, -1 if
	// the chain is unbroken.
	FirstBreak int
	Issues     []Issue
}

// OK reports whether the chain verified cleanly.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// VerifySession walks an ordered receipt sequence claimed to belong to
// one session.
//
// For receipt i > 0 it checks lamport_clock[i] == lamport_clock[i-1]+1
// and prev_hash[i] == the RECOMPUTED blob_hash of receipt i-1 — stored
// hashes are claims, and a tampered link must not hide behind its own
// claimed hash. Receipt 0 must carry lamport_clock 0 and the genesis
// sentinel. After the first continuity break, scanning continues but
// only structurally distinct issues (duplicate clocks) are added, so
// the report stays as informative as possible without cascading noise.
func VerifySession(sessionID string, receipts []*contracts.Receipt) *Report {
	report := &Report{
		SessionID:  sessionID,
		Receipts:   len(receipts),
		FirstBreak: -1,
	}

	broken := false
	addContinuity := func(i int, kind IssueKind, detail string) {
		if broken {
			return
		}
		broken = true
		report.FirstBreak = i
		report.Issues = append(report.Issues, Issue{
			Index:     i,
			ReceiptID: receipts[i].ReceiptID,
			Kind:      kind,
			Detail:    detail,
		})
	}

	prevComputed := ""
	for i, r := range receipts {
		computed, err := crypto.ComputeBlobHash(r)
		if err != nil {
			addContinuity(i, IssueHashMismatch, fmt.Sprintf("cannot recompute hash: %v", err))
			continue
		}

		// Exact string comparison, algorithm tag included.
		if r.BlobHash != computed {
			addContinuity(i, IssueHashMismatch,
				fmt.Sprintf("stored blob_hash %s != recomputed %s", r.BlobHash, computed))
		}

		if i == 0 {
			if r.LamportClock != 0 {
				addContinuity(i, IssueGenesisClock,
					fmt.Sprintf("first receipt has lamport_clock %d, want 0", r.LamportClock))
			}
			if r.PrevHash != contracts.GenesisPrevHash {
				addContinuity(i, IssueGenesisPrev,
					fmt.Sprintf("first receipt has prev_hash %q, want %q", r.PrevHash, contracts.GenesisPrevHash))
			}
		} else {
			if r.LamportClock != receipts[i-1].LamportClock+1 {
				addContinuity(i, IssueClockGap,
					fmt.Sprintf("lamport_clock %d does not follow %d", r.LamportClock, receipts[i-1].LamportClock))
			}
			if r.PrevHash != prevComputed {
				addContinuity(i, IssueLinkMismatch,
					fmt.Sprintf("prev_hash %s != recomputed hash of receipt[%d] %s", r.PrevHash, i-1, prevComputed))
			}
		}

		prevComputed = computed
	}

	report.Issues = append(report.Issues, duplicateClocks(receipts)...)
	return report
}

// duplicateClocks reports every Lamport clock value claimed by more
// than one receipt, naming all claimants. No attempt is made to guess
// which receipt is legitimate.
func duplicateClocks(receipts []*contracts.Receipt) []Issue {
	byClock := make(map[uint64][]int)
	for i, r := range receipts {
		byClock[r.LamportClock] = append(byClock[r.LamportClock], i)
	}

	clocks := make([]uint64, 0, len(byClock))
	for c, idxs := range byClock {
		if len(idxs) > 1 {
			clocks = append(clocks, c)
		}
	}
	sort.Slice(clocks, func(i, j int) bool { return clocks[i] < clocks[j] })

	var issues []Issue
	for _, c := range clocks {
		idxs := byClock[c]
		ids := make([]string, 0, len(idxs))
		for _, i := range idxs {
			ids = append(ids, receipts[i].ReceiptID)
		}
		issues = append(issues, Issue{
			Index:     idxs[0],
			ReceiptID: receipts[idxs[0]].ReceiptID,
			Kind:      IssueDuplicateClock,
			Detail:    fmt.Sprintf("lamport_clock %d claimed by receipts %s", c, strings.Join(ids, ", ")),
		})
	}
	return issues
}
