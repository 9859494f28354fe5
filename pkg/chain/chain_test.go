package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evidentsys/evident/pkg/chain"
	"github.com/evidentsys/evident/pkg/contracts"
	"github.com/evidentsys/evident/pkg/crypto"
	"github.com/evidentsys/evident/pkg/ledger"
)

// mintChain produces a well-formed n-receipt session chain.
func mintChain(t *testing.T, n int) []*contracts.Receipt {
	t.Helper()
	signer, err := crypto.NewEd25519Signer("test-key")
	require.NoError(t, err)

	l := ledger.New("sess-1", "kernel-primary", signer)
	for i := 0; i < n; i++ {
		_, err := l.Append("dec", "eff", contracts.StatusApproved, contracts.ReasonAllow, "sha256:00")
		require.NoError(t, err)
	}
	return l.Receipts()
}

func TestVerifySession_ValidChain(t *testing.T) {
	receipts := mintChain(t, 3)

	report := chain.VerifySession("sess-1", receipts)
	assert.True(t, report.OK())
	assert.Equal(t, -1, report.FirstBreak)
	assert.Equal(t, 3, report.Receipts)
	assert.Empty(t, report.Issues)
}

func TestVerifySession_Empty(t *testing.T) {
	report := chain.VerifySession("sess-1", nil)
	assert.True(t, report.OK())
	assert.Equal(t, 0, report.Receipts)
}

func TestVerifySession_SingleGenesis(t *testing.T) {
	receipts := mintChain(t, 1)
	report := chain.VerifySession("sess-1", receipts)
	assert.True(t, report.OK())
}

func TestVerifySession_TamperedContent(t *testing.T) {
	receipts := mintChain(t, 3)
	receipts[1].Status = string(contracts.StatusDenied)

	report := chain.VerifySession("sess-1", receipts)
	require.False(t, report.OK())
	assert.Equal(t, 1, report.FirstBreak)

	// Exactly one continuity finding: the hash mismatch at the
	// tampered receipt. The downstream link break at receipt 2 is the
	// same root cause and must not cascade into a second finding.
	require.Len(t, report.Issues, 1)
	issue := report.Issues[0]
	assert.Equal(t, chain.IssueHashMismatch, issue.Kind)
	assert.Equal(t, 1, issue.Index)
	assert.Equal(t, receipts[1].ReceiptID, issue.ReceiptID)
}

func TestVerifySession_GenesisViolations(t *testing.T) {
	receipts := mintChain(t, 2)

	// Drop the genesis receipt: the chain now starts mid-sequence.
	report := chain.VerifySession("sess-1", receipts[1:])
	require.False(t, report.OK())
	assert.Equal(t, 0, report.FirstBreak)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, chain.IssueGenesisClock, report.Issues[0].Kind)
}

func TestVerifySession_GenesisPrevHash(t *testing.T) {
	receipts := mintChain(t, 1)
	receipts[0].PrevHash = "sha256:0000"
	// Keep the blob hash consistent so only the genesis link fails.
	h, err := crypto.ComputeBlobHash(receipts[0])
	require.NoError(t, err)
	receipts[0].BlobHash = h

	report := chain.VerifySession("sess-1", receipts)
	require.False(t, report.OK())
	require.Len(t, report.Issues, 1)
	assert.Equal(t, chain.IssueGenesisPrev, report.Issues[0].Kind)
}

func TestVerifySession_ClockGap(t *testing.T) {
	receipts := mintChain(t, 3)
	// A receipt removed from the middle leaves a clock gap and a
	// broken link at the splice point.
	spliced := []*contracts.Receipt{receipts[0], receipts[2]}

	report := chain.VerifySession("sess-1", spliced)
	require.False(t, report.OK())
	assert.Equal(t, 1, report.FirstBreak)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, chain.IssueClockGap, report.Issues[0].Kind)
}

func TestVerifySession_LinkMismatch(t *testing.T) {
	receipts := mintChain(t, 2)
	receipts[1].PrevHash = "sha256:1111"
	h, err := crypto.ComputeBlobHash(receipts[1])
	require.NoError(t, err)
	receipts[1].BlobHash = h

	report := chain.VerifySession("sess-1", receipts)
	require.False(t, report.OK())
	require.Len(t, report.Issues, 1)
	assert.Equal(t, chain.IssueLinkMismatch, report.Issues[0].Kind)
	assert.Equal(t, 1, report.Issues[0].Index)
}

func TestVerifySession_DuplicateClock(t *testing.T) {
	receipts := mintChain(t, 3)
	// Rewind the last receipt's clock onto an already-claimed value,
	// recomputing its blob hash so the duplicate is the visible fault.
	receipts[2].LamportClock = 1
	h, err := crypto.ComputeBlobHash(receipts[2])
	require.NoError(t, err)
	receipts[2].BlobHash = h

	report := chain.VerifySession("sess-1", receipts)
	require.False(t, report.OK())

	var dup *chain.Issue
	for i := range report.Issues {
		if report.Issues[i].Kind == chain.IssueDuplicateClock {
			dup = &report.Issues[i]
		}
	}
	require.NotNil(t, dup, "duplicate clock must be reported")

	// Both claimants are named; no winner is picked.
	assert.Contains(t, dup.Detail, receipts[1].ReceiptID)
	assert.Contains(t, dup.Detail, receipts[2].ReceiptID)
	assert.Contains(t, dup.Detail, "lamport_clock 1")
}

func TestVerifySession_DuplicateClockReportedAfterBreak(t *testing.T) {
	// Duplicates are a distinct issue class: they are reported even
	// when the chain already broke earlier for another reason.
	receipts := mintChain(t, 3)
	receipts[0].Status = string(contracts.StatusError)
	receipts[2].LamportClock = 1

	report := chain.VerifySession("sess-1", receipts)
	require.False(t, report.OK())
	assert.Equal(t, 0, report.FirstBreak)

	kinds := make(map[chain.IssueKind]int)
	for _, issue := range report.Issues {
		kinds[issue.Kind]++
	}
	assert.Equal(t, 1, kinds[chain.IssueHashMismatch])
	assert.Equal(t, 1, kinds[chain.IssueDuplicateClock])
}

func TestIssue_String(t *testing.T) {
	issue := chain.Issue{Index: 2, ReceiptID: "rcpt-9", Kind: chain.IssueClockGap, Detail: "lamport_clock 5 does not follow 1"}
	s := issue.String()
	assert.Contains(t, s, "receipt[2]")
	assert.Contains(t, s, "rcpt-9")
	assert.Contains(t, s, "clock_gap")
}
