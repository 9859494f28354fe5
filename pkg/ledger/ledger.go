// Package ledger builds per-session receipt chains: it assigns Lamport
// clocks, links prev_hash to the predecessor's recomputed blob_hash,
// and signs each receipt. This is the producing side of the chain the
// verification engine checks, used by the export path and by tests
// that need freshly minted evidence.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evidentsys/evident/pkg/contracts"
	"github.com/evidentsys/evident/pkg/crypto"
)

// Ledger is an append-only receipt chain for one session.
type Ledger struct {
	mu        sync.Mutex
	sessionID string
	signer    crypto.Signer
	principal string
	receipts  []*contracts.Receipt
	lastHash  string
	createdAt string
}

// New creates a ledger for a session. An empty sessionID gets a fresh
// UUID.
func New(sessionID, principal string, signer crypto.Signer) *Ledger {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	return &Ledger{
		sessionID: sessionID,
		signer:    signer,
		principal: principal,
		lastHash:  contracts.GenesisPrevHash,
	}
}

// SessionID returns the ledger's session id.
func (l *Ledger) SessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionID
}

// Append mints the next receipt in the chain: clock is the previous
// clock plus one (zero for the first receipt), prev_hash links to the
// predecessor's blob_hash, and the signature covers the chain-linking
// fields.
func (l *Ledger) Append(decisionID, effectID string, status contracts.Status, reason contracts.ReasonCode, outputHash string) (*contracts.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	r := &contracts.Receipt{
		ReceiptID:    uuid.New().String(),
		DecisionID:   decisionID,
		EffectID:     effectID,
		Status:       string(status),
		ReasonCode:   string(reason),
		OutputHash:   outputHash,
		PrevHash:     l.lastHash,
		LamportClock: uint64(len(l.receipts)),
		Principal:    l.principal,
		Timestamp:    now,
	}

	blobHash, err := crypto.ComputeBlobHash(r)
	if err != nil {
		return nil, fmt.Errorf("mint receipt: %w", err)
	}
	r.BlobHash = blobHash

	if err := l.signer.SignReceipt(r); err != nil {
		return nil, fmt.Errorf("sign receipt: %w", err)
	}

	if len(l.receipts) == 0 {
		l.createdAt = now
	}
	l.receipts = append(l.receipts, r)
	l.lastHash = blobHash
	return r, nil
}

// Receipts returns the ordered chain.
func (l *Ledger) Receipts() []*contracts.Receipt {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*contracts.Receipt, len(l.receipts))
	copy(out, l.receipts)
	return out
}

// Session returns the session summary matching the current chain.
func (l *Ledger) Session() contracts.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := contracts.Session{
		SessionID:    l.sessionID,
		CreatedAt:    l.createdAt,
		ReceiptCount: len(l.receipts),
	}
	if n := len(l.receipts); n > 0 {
		s.LastLamportClock = l.receipts[n-1].LamportClock
	}
	return s
}
